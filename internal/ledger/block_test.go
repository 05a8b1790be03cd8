package ledger

import "testing"

func TestComputeHashDeterministic(t *testing.T) {
	h1, err := ComputeHash(0, GenesisHash, "deadbeef")
	if err != nil {
		t.Fatalf("ComputeHash: %v", err)
	}
	h2, err := ComputeHash(0, GenesisHash, "deadbeef")
	if err != nil {
		t.Fatalf("ComputeHash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("ComputeHash not deterministic: %s != %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64-char hex digest, got %d chars", len(h1))
	}
}

func TestComputeHashSensitiveToFields(t *testing.T) {
	h1, _ := ComputeHash(0, GenesisHash, "root-a")
	h2, _ := ComputeHash(0, GenesisHash, "root-b")
	h3, _ := ComputeHash(1, GenesisHash, "root-a")

	if h1 == h2 {
		t.Fatal("hash should change with merkle_root")
	}
	if h1 == h3 {
		t.Fatal("hash should change with id")
	}
}

func TestGenesisHashLength(t *testing.T) {
	if len(GenesisHash) != 64 {
		t.Fatalf("genesis hash must be 64 hex chars, got %d", len(GenesisHash))
	}
}

func TestBlockFileName(t *testing.T) {
	if got := BlockFileName(0); got != "block_0.json" {
		t.Fatalf("BlockFileName(0) = %s", got)
	}
	if got := BlockFileName(42); got != "block_42.json" {
		t.Fatalf("BlockFileName(42) = %s", got)
	}
}

func TestBlockToMeta(t *testing.T) {
	b := Block{ID: 3, PreviousHash: "ph", MerkleRoot: "mr", Hash: "h"}
	meta := b.ToMeta()
	if meta.ID != 3 || meta.PreviousHash != "ph" || meta.MerkleRoot != "mr" || meta.Hash != "h" {
		t.Fatalf("ToMeta mismatch: %+v", meta)
	}
}

func TestBlockCanonicalJSONDeterministic(t *testing.T) {
	b := Block{ID: 0, PreviousHash: GenesisHash, MerkleRoot: "mr", Hash: "h", Audits: []Audit{sampleAudit()}}

	j1, err := b.CanonicalJSON()
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	j2, err := b.CanonicalJSON()
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	if string(j1) != string(j2) {
		t.Fatalf("CanonicalJSON not deterministic")
	}
}
