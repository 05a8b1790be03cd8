package transport

import "context"

// Transport lets a node communicate with other nodes (and accept client
// submissions) over the wire shapes defined in commands.go. Every
// outbound call takes a context whose deadline bounds that call, per
// spec.md §5 ("every outbound RPC carries a deadline").
type Transport interface {
	// Listen starts accepting inbound connections/RPCs.
	Listen()

	// Consumer returns the channel of inbound RPCs to process and
	// respond to.
	Consumer() <-chan RPC

	// LocalAddr returns this node's own address.
	LocalAddr() string

	SubmitAudit(ctx context.Context, target string, args *SubmitAuditRequest, resp *SubmitAuditResponse) error
	WhisperAudit(ctx context.Context, target string, args *WhisperAuditRequest, resp *WhisperAuditResponse) error
	ProposeBlock(ctx context.Context, target string, args *ProposeBlockRequest, resp *ProposeBlockResponse) error
	CommitBlock(ctx context.Context, target string, args *CommitBlockRequest, resp *CommitBlockResponse) error
	GetBlock(ctx context.Context, target string, args *GetBlockRequest, resp *GetBlockResponse) error
	SendHeartbeat(ctx context.Context, target string, args *HeartbeatRequest, resp *HeartbeatResponse) error
	TriggerElection(ctx context.Context, target string, args *TriggerElectionRequest, resp *TriggerElectionResponse) error
	NotifyLeadership(ctx context.Context, target string, args *NotifyLeadershipRequest, resp *NotifyLeadershipResponse) error

	// Close permanently closes the transport, stopping any associated
	// goroutines and freeing other resources.
	Close() error
}
