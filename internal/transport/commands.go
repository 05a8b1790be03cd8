package transport

import "github.com/mosaicnetworks/auditledger/internal/ledger"

// SubmitAuditRequest is issued by an external Client to a node's Audit
// Service (spec.md §4.8).
type SubmitAuditRequest struct {
	Audit ledger.Audit
}

// SubmitAuditResponse answers a SubmitAuditRequest.
type SubmitAuditResponse struct {
	ReqID        string
	Status       string
	ErrorMessage string
}

// WhisperAuditRequest is the one-hop gossip forward of an admitted audit
// (spec.md §4.9(a)). Recipients never re-gossip it.
type WhisperAuditRequest struct {
	Audit ledger.Audit
}

// WhisperAuditResponse answers a WhisperAuditRequest.
type WhisperAuditResponse struct {
	Status       string
	ErrorMessage string
}

// ProposeBlockRequest carries a leader-proposed block to a follower for a
// vote (spec.md §4.9(b)).
type ProposeBlockRequest struct {
	Block ledger.Block
}

// ProposeBlockResponse is a follower's vote on a proposed block.
type ProposeBlockResponse struct {
	Vote         bool
	Status       string
	ErrorMessage string
}

// CommitBlockRequest instructs a node to durably commit a block that won
// quorum (spec.md §4.9(c)).
type CommitBlockRequest struct {
	Block ledger.Block
}

// CommitBlockResponse answers a CommitBlockRequest.
type CommitBlockResponse struct {
	Status       string
	ErrorMessage string
}

// GetBlockRequest asks a node to return a committed block by id
// (spec.md §4.9(d)).
type GetBlockRequest struct {
	ID int64
}

// GetBlockResponse answers a GetBlockRequest.
type GetBlockResponse struct {
	Block        ledger.Block
	Status       string
	ErrorMessage string
}

// HeartbeatRequest is a periodic liveness/progress message (spec.md
// §4.9(e)).
type HeartbeatRequest struct {
	FromAddress         string
	CurrentLeaderAddr   string
	LatestBlockID       int64
	MemPoolSize         int64
}

// HeartbeatResponse answers a HeartbeatRequest.
type HeartbeatResponse struct {
	Status string
}

// TriggerElectionRequest nominates Address as a leader candidate
// (spec.md §4.9(f)).
type TriggerElectionRequest struct {
	Address string
}

// TriggerElectionResponse is a voter's response to a candidacy. Term is
// reserved for a future term-based variant and is always 0 in this
// protocol (spec.md §9 Open Question 3).
type TriggerElectionResponse struct {
	Vote   bool
	Term   int64
	Status string
}

// NotifyLeadershipRequest unconditionally announces the new leader
// (spec.md §4.9(g)).
type NotifyLeadershipRequest struct {
	Address string
}

// NotifyLeadershipResponse answers a NotifyLeadershipRequest.
type NotifyLeadershipResponse struct {
	Status string
}
