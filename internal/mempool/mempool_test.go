package mempool

import (
	"testing"

	"github.com/mosaicnetworks/auditledger/internal/ledger"
)

func auditWithID(id string) ledger.Audit {
	return ledger.Audit{ReqID: id, Timestamp: 1, AccessType: "read"}
}

// TestAppendIdempotent covers spec.md §8 law 3.
func TestAppendIdempotent(t *testing.T) {
	m := New()
	a := auditWithID("r1")

	m.Append(a)
	m.Append(a)

	if m.Size() != 1 {
		t.Fatalf("expected size 1 after duplicate append, got %d", m.Size())
	}
}

func TestAppendMultiple(t *testing.T) {
	m := New()
	m.Append(auditWithID("r1"))
	m.Append(auditWithID("r2"))
	m.Append(auditWithID("r3"))

	if m.Size() != 3 {
		t.Fatalf("expected size 3, got %d", m.Size())
	}
}

// TestRemoveBatch covers spec.md §8 law 4 (the mempool half of the
// duality: audits in a committed batch are gone).
func TestRemoveBatch(t *testing.T) {
	m := New()
	m.Append(auditWithID("r1"))
	m.Append(auditWithID("r2"))
	m.Append(auditWithID("r3"))

	m.RemoveBatch([]string{"r1", "r3"})

	if m.Size() != 1 {
		t.Fatalf("expected size 1 after removing 2 of 3, got %d", m.Size())
	}
	if m.Contains("r1") || m.Contains("r3") {
		t.Fatal("removed req_ids still present")
	}
	if !m.Contains("r2") {
		t.Fatal("surviving req_id missing")
	}
}

func TestLoadAllPreservesInsertionOrder(t *testing.T) {
	m := New()
	m.Append(auditWithID("r1"))
	m.Append(auditWithID("r2"))
	m.Append(auditWithID("r3"))

	m.RemoveBatch([]string{"r2"})
	m.Append(auditWithID("r4"))

	got := m.LoadAll()
	want := []string{"r1", "r3", "r4"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].ReqID != w {
			t.Fatalf("position %d: got %s, want %s", i, got[i].ReqID, w)
		}
	}
}

func TestRemoveBatchEmptyIsNoop(t *testing.T) {
	m := New()
	m.Append(auditWithID("r1"))
	m.RemoveBatch(nil)
	if m.Size() != 1 {
		t.Fatalf("expected size unchanged, got %d", m.Size())
	}
}
