package ledger

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the lowercase hex SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// LeafHash returns the Merkle-leaf digest of an audit: the hex SHA-256 of
// its canonical encoding.
func LeafHash(a Audit) (string, error) {
	b, err := Canonicalize(a)
	if err != nil {
		return "", err
	}
	return SHA256Hex(b), nil
}
