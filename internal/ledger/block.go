package ledger

import (
	"bytes"
	"strconv"

	"github.com/ugorji/go/codec"
)

// header is the portion of a Block over which its Hash is computed: the
// audits themselves are already summarised by MerkleRoot, so they are not
// re-hashed into the block hash.
type header struct {
	ID           int64  `codec:"id"`
	MerkleRoot   string `codec:"merkle_root"`
	PreviousHash string `codec:"previous_hash"`
}

// ComputeHash derives a block's hash from its header fields. Both the
// proposer and every validator call this: the proposer to fill in
// Block.Hash, and validators (per spec.md §4.9(b)/(3)) to reject a block
// whose declared hash doesn't match.
func ComputeHash(id int64, previousHash, merkleRoot string) (string, error) {
	buf := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true

	enc := codec.NewEncoder(buf, jh)
	if err := enc.Encode(header{ID: id, MerkleRoot: merkleRoot, PreviousHash: previousHash}); err != nil {
		return "", err
	}
	return SHA256Hex(buf.Bytes()), nil
}

// ToMeta extracts the four-field chain-index summary of a Block.
func (b Block) ToMeta() Meta {
	return Meta{ID: b.ID, Hash: b.Hash, PreviousHash: b.PreviousHash, MerkleRoot: b.MerkleRoot}
}

// CanonicalJSON encodes the full Block (including audits) the way it is
// persisted to a block_<id>.json file: sorted keys, no whitespace.
func (b Block) CanonicalJSON() ([]byte, error) {
	buf := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true

	enc := codec.NewEncoder(buf, jh)
	if err := enc.Encode(b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BlockFileName returns the file name a block body is persisted under.
func BlockFileName(id int64) string {
	return "block_" + strconv.FormatInt(id, 10) + ".json"
}
