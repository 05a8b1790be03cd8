package ledger

import "testing"

func sampleAudit() Audit {
	return Audit{
		ReqID:      "r1",
		Timestamp:  1,
		AccessType: "read",
		FileInfo:   FileInfo{FileID: "f1", FileName: "a.txt"},
		UserInfo:   UserInfo{UserID: "u1", UserName: "alice"},
	}
}

// TestCanonicalizeDeterministic covers spec.md §8 law 1: encoding the same
// audit twice produces byte-identical output.
func TestCanonicalizeDeterministic(t *testing.T) {
	a := sampleAudit()

	b1, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	b2, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if string(b1) != string(b2) {
		t.Fatalf("encoding not deterministic: %q != %q", b1, b2)
	}
}

// TestCanonicalizeKeyOrder checks the top-level key order required by
// spec.md §4.1 and that signature/public_key never leak into the payload.
func TestCanonicalizeKeyOrder(t *testing.T) {
	a := sampleAudit()
	a.Signature = "sig"
	a.PublicKey = "pub"

	b, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}

	want := `{"access_type":"read","file_info":{"file_id":"f1","file_name":"a.txt"},"req_id":"r1","timestamp":1,"user_info":{"user_id":"u1","user_name":"alice"}}`
	if string(b) != want {
		t.Fatalf("canonical bytes mismatch:\n got: %s\nwant: %s", b, want)
	}
}

// TestCanonicalizeIgnoresGoFieldOrder verifies that two Audit values
// assembled with struct literals in a different field order still
// canonicalize identically, since the canonical form is driven by the
// signablePayload's own declared (already-alphabetical) field order, not
// by Go struct literal syntax.
func TestCanonicalizeIgnoresGoFieldOrder(t *testing.T) {
	a1 := Audit{ReqID: "r2", Timestamp: 5, AccessType: "write",
		FileInfo: FileInfo{FileID: "f2", FileName: "b.txt"},
		UserInfo: UserInfo{UserID: "u2", UserName: "bob"}}

	a2 := Audit{
		UserInfo:   UserInfo{UserID: "u2", UserName: "bob"},
		FileInfo:   FileInfo{FileID: "f2", FileName: "b.txt"},
		AccessType: "write",
		Timestamp:  5,
		ReqID:      "r2",
	}

	b1, err := Canonicalize(a1)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	b2, err := Canonicalize(a2)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if string(b1) != string(b2) {
		t.Fatalf("expected identical canonical bytes, got %q and %q", b1, b2)
	}
}
