package heartbeat

import (
	"testing"
	"time"
)

func TestUpdateAndGet(t *testing.T) {
	tbl := New()
	tbl.Update("peer-1", "peer-1", 3, 2)

	e, ok := tbl.Get("peer-1")
	if !ok {
		t.Fatal("expected entry to exist")
	}
	if e.LatestBlockID != 3 || e.MemPoolSize != 2 || e.CurrentLeaderAddr != "peer-1" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestUpdateOverwrites(t *testing.T) {
	tbl := New()
	tbl.Update("peer-1", "peer-1", 3, 2)
	tbl.Update("peer-1", "peer-2", 5, 0)

	e, _ := tbl.Get("peer-1")
	if e.LatestBlockID != 5 || e.CurrentLeaderAddr != "peer-2" {
		t.Fatalf("expected overwritten entry, got %+v", e)
	}
}

func TestAll(t *testing.T) {
	tbl := New()
	tbl.Update("peer-1", "", 0, 0)
	tbl.Update("peer-2", "", 0, 0)

	all := tbl.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
}

func TestExpired(t *testing.T) {
	tbl := New()
	tbl.Update("stale", "", 0, 0)

	now := time.Now().Add(5 * time.Second)
	expired := tbl.Expired(now, 2*time.Second)

	if len(expired) != 1 || expired[0] != "stale" {
		t.Fatalf("expected [stale] expired, got %v", expired)
	}
}

func TestNotExpired(t *testing.T) {
	tbl := New()
	tbl.Update("fresh", "", 0, 0)

	expired := tbl.Expired(time.Now(), 2*time.Second)
	if len(expired) != 0 {
		t.Fatalf("expected no expired entries, got %v", expired)
	}
}
