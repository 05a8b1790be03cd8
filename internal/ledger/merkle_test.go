package ledger

import "testing"

func TestMerkleRootEmpty(t *testing.T) {
	got := MerkleRoot(nil)
	want := SHA256Hex([]byte{})
	if got != want {
		t.Fatalf("empty merkle root = %s, want %s", got, want)
	}
}

func TestMerkleRootSingle(t *testing.T) {
	leaf := SHA256Hex([]byte("leaf"))
	if got := MerkleRoot([]string{leaf}); got != leaf {
		t.Fatalf("single-leaf root = %s, want %s", got, leaf)
	}
}

func TestMerkleRootOddDuplicatesLast(t *testing.T) {
	l1 := SHA256Hex([]byte("a"))
	l2 := SHA256Hex([]byte("b"))
	l3 := SHA256Hex([]byte("c"))

	got := MerkleRoot([]string{l1, l2, l3})

	// level 1: hash(l1+l2), hash(l3+l3); level 2: hash of those two concatenated
	top := hashHexPair(l1, l2)
	bottom := hashHexPair(l3, l3)
	want := hashHexPair(top, bottom)

	if got != want {
		t.Fatalf("odd-length merkle root = %s, want %s", got, want)
	}
}

// TestMerkleRootDeterministic covers spec.md §8 law 6: two computations
// over the same ordered leaf list agree.
func TestMerkleRootDeterministic(t *testing.T) {
	leaves := []string{
		SHA256Hex([]byte("a")),
		SHA256Hex([]byte("b")),
		SHA256Hex([]byte("c")),
		SHA256Hex([]byte("d")),
	}
	if MerkleRoot(leaves) != MerkleRoot(leaves) {
		t.Fatal("merkle root not deterministic")
	}
}

func TestMerkleRootOrderSensitive(t *testing.T) {
	a := SHA256Hex([]byte("a"))
	b := SHA256Hex([]byte("b"))

	if MerkleRoot([]string{a, b}) == MerkleRoot([]string{b, a}) {
		t.Fatal("merkle root should depend on leaf order")
	}
}

func TestBlockLeaves(t *testing.T) {
	audits := []Audit{sampleAudit()}
	leaves, err := BlockLeaves(audits)
	if err != nil {
		t.Fatalf("BlockLeaves: %v", err)
	}
	if len(leaves) != 1 {
		t.Fatalf("expected 1 leaf, got %d", len(leaves))
	}
	want, err := LeafHash(audits[0])
	if err != nil {
		t.Fatalf("LeafHash: %v", err)
	}
	if leaves[0] != want {
		t.Fatalf("leaf = %s, want %s", leaves[0], want)
	}
}
