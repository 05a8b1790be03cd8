package ledger

import (
	"bytes"

	"github.com/ugorji/go/codec"
)

// signablePayload is the exact five-key subset of Audit that is signed and
// hashed. Keeping it as its own struct (rather than reusing Audit with
// excluded fields) makes it structurally impossible for Signature or
// PublicKey to leak into the canonical bytes.
type signablePayload struct {
	AccessType string   `codec:"access_type"`
	FileInfo   FileInfo `codec:"file_info"`
	ReqID      string   `codec:"req_id"`
	Timestamp  int64    `codec:"timestamp"`
	UserInfo   UserInfo `codec:"user_info"`
}

// Canonicalize produces the byte-exact canonical JSON encoding of an
// Audit's signable fields: lexicographically-sorted keys, no insignificant
// whitespace, nested objects sorted the same way. Every node and client
// MUST produce bit-identical output for identical field values.
func Canonicalize(a Audit) ([]byte, error) {
	payload := signablePayload{
		AccessType: a.AccessType,
		FileInfo:   a.FileInfo,
		ReqID:      a.ReqID,
		Timestamp:  a.Timestamp,
		UserInfo:   a.UserInfo,
	}

	buf := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	jh.MapKeyAsString = true

	enc := codec.NewEncoder(buf, jh)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
