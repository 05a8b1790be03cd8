// Package ledger holds the wire data model shared by every node and by
// client tooling: audits, blocks, and the canonical encoding and Merkle
// reduction that make the chain tamper-evident.
package ledger

// FileInfo identifies the file an Audit describes.
type FileInfo struct {
	FileID   string `json:"file_id" codec:"file_id"`
	FileName string `json:"file_name" codec:"file_name"`
}

// UserInfo identifies the user an Audit describes.
type UserInfo struct {
	UserID   string `json:"user_id" codec:"user_id"`
	UserName string `json:"user_name" codec:"user_name"`
}

// Audit is an immutable, client-signed record of one file access. The
// first five fields are the signable/hashable payload; Signature and
// PublicKey are excluded from the canonical encoding (§4.1).
type Audit struct {
	ReqID      string   `json:"req_id" codec:"req_id"`
	Timestamp  int64    `json:"timestamp" codec:"timestamp"`
	AccessType string   `json:"access_type" codec:"access_type"`
	FileInfo   FileInfo `json:"file_info" codec:"file_info"`
	UserInfo   UserInfo `json:"user_info" codec:"user_info"`
	Signature  string   `json:"signature" codec:"signature"`
	PublicKey  string   `json:"public_key" codec:"public_key"`
}

// Block is an ordered, Merkle-summarised batch of audits linked to its
// predecessor by hash.
type Block struct {
	ID           int64   `json:"id" codec:"id"`
	PreviousHash string  `json:"previous_hash" codec:"previous_hash"`
	MerkleRoot   string  `json:"merkle_root" codec:"merkle_root"`
	Hash         string  `json:"hash" codec:"hash"`
	Audits       []Audit `json:"audits" codec:"audits"`
}

// Meta is the four-field summary persisted to the chain index.
type Meta struct {
	ID           int64  `json:"id"`
	Hash         string `json:"hash"`
	PreviousHash string `json:"previous_hash"`
	MerkleRoot   string `json:"merkle_root"`
}

// GenesisHash is the well-known previous_hash of block 0, agreed by all
// nodes (spec.md §9 Open Question 5).
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"
