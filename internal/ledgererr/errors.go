// Package ledgererr defines the typed failures the protocol engine can
// raise, so that RPC handlers can translate them into wire status/
// error_message pairs without string-matching.
package ledgererr

import "fmt"

// Kind enumerates the validation/storage failures named in the spec.
type Kind uint32

const (
	// BadMerkleRoot: a proposed block's recomputed merkle root does not
	// match the block's declared merkle_root.
	BadMerkleRoot Kind = iota
	// BadPreviousHash: a proposed block's previous_hash does not match
	// the local chain's last hash.
	BadPreviousHash
	// BadBlockHash: a proposed block's declared hash does not match the
	// recomputed header hash.
	BadBlockHash
	// InvalidSignature: an audit's signature failed verification.
	InvalidSignature
	// ChainBroken: a chain index append was rejected because id/prev_hash
	// did not extend the current head.
	ChainBroken
	// NotFound: an index lookup found no entry for the given key.
	NotFound
	// OutOfRange: a requested block id exceeds the chain's last id.
	OutOfRange
	// IOFailure: a body file could not be written.
	IOFailure
	// ReadFailure: a body file could not be opened for reading.
	ReadFailure
	// ParseFailure: a persisted block body failed to decode.
	ParseFailure
)

var messages = map[Kind]string{
	BadMerkleRoot:     "bad merkle_root",
	BadPreviousHash:   "bad previous_hash",
	BadBlockHash:      "bad block hash",
	InvalidSignature:  "Invalid client signature",
	ChainBroken:       "chain broken",
	NotFound:          "not found",
	OutOfRange:        "block id out of range",
	IOFailure:         "could not write block file",
	ReadFailure:       "could not open block file",
	ParseFailure:      "JSON parse error",
}

// Error is a typed ledger failure carrying a Kind for programmatic
// dispatch and a human-readable message for the wire error_message field.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return messages[e.Kind]
}

// New builds an Error of the given Kind. A non-empty detail is appended
// to the Kind's default message as "<default>: <detail>".
func New(k Kind, detail string) *Error {
	msg := messages[k]
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	return &Error{Kind: k, Msg: msg}
}

// Is reports whether err is a *Error of kind k.
func Is(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}
