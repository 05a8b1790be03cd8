package transport

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
)

// NewInmemAddr returns a new in-memory address with a randomly generated
// id, for tests that don't want to bind real sockets.
func NewInmemAddr() string {
	return generateUUID()
}

func generateUUID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("transport: failed to read random bytes: %v", err))
	}
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%12x",
		buf[0:4], buf[4:6], buf[6:8], buf[8:10], buf[10:16])
}

// InmemTransport implements Transport in-process, routing calls directly
// between peer InmemTransport instances without going over a real network.
// It is used by multi-node protocol tests.
type InmemTransport struct {
	mu         sync.RWMutex
	consumerCh chan RPC
	localAddr  string
	peers      map[string]*InmemTransport
}

// NewInmemTransport initialises a new in-memory transport, generating a
// random local address if addr is empty.
func NewInmemTransport(addr string) (string, *InmemTransport) {
	if addr == "" {
		addr = NewInmemAddr()
	}
	return addr, &InmemTransport{
		consumerCh: make(chan RPC, 16),
		localAddr:  addr,
		peers:      make(map[string]*InmemTransport),
	}
}

// Connect wires this transport to another transport under a peer name.
func (i *InmemTransport) Connect(peer string, t *InmemTransport) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.peers[peer] = t
}

// Disconnect removes the route to a peer.
func (i *InmemTransport) Disconnect(peer string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.peers, peer)
}

func (i *InmemTransport) Listen()                 {}
func (i *InmemTransport) Consumer() <-chan RPC     { return i.consumerCh }
func (i *InmemTransport) LocalAddr() string        { return i.localAddr }

func (i *InmemTransport) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.peers = make(map[string]*InmemTransport)
	return nil
}

func (i *InmemTransport) makeRPC(ctx context.Context, target string, args interface{}) (RPCResponse, error) {
	i.mu.RLock()
	peer, ok := i.peers[target]
	i.mu.RUnlock()

	if !ok {
		return RPCResponse{}, fmt.Errorf("transport: no route to peer %q", target)
	}

	respCh := make(chan RPCResponse, 1)
	peer.consumerCh <- RPC{Command: args, RespChan: respCh}

	select {
	case resp := <-respCh:
		return resp, resp.Error
	case <-ctx.Done():
		return RPCResponse{}, ctx.Err()
	}
}

func (i *InmemTransport) SubmitAudit(ctx context.Context, target string, args *SubmitAuditRequest, resp *SubmitAuditResponse) error {
	r, err := i.makeRPC(ctx, target, args)
	if err != nil {
		return err
	}
	*resp = *r.Response.(*SubmitAuditResponse)
	return nil
}

func (i *InmemTransport) WhisperAudit(ctx context.Context, target string, args *WhisperAuditRequest, resp *WhisperAuditResponse) error {
	r, err := i.makeRPC(ctx, target, args)
	if err != nil {
		return err
	}
	*resp = *r.Response.(*WhisperAuditResponse)
	return nil
}

func (i *InmemTransport) ProposeBlock(ctx context.Context, target string, args *ProposeBlockRequest, resp *ProposeBlockResponse) error {
	r, err := i.makeRPC(ctx, target, args)
	if err != nil {
		return err
	}
	*resp = *r.Response.(*ProposeBlockResponse)
	return nil
}

func (i *InmemTransport) CommitBlock(ctx context.Context, target string, args *CommitBlockRequest, resp *CommitBlockResponse) error {
	r, err := i.makeRPC(ctx, target, args)
	if err != nil {
		return err
	}
	*resp = *r.Response.(*CommitBlockResponse)
	return nil
}

func (i *InmemTransport) GetBlock(ctx context.Context, target string, args *GetBlockRequest, resp *GetBlockResponse) error {
	r, err := i.makeRPC(ctx, target, args)
	if err != nil {
		return err
	}
	*resp = *r.Response.(*GetBlockResponse)
	return nil
}

func (i *InmemTransport) SendHeartbeat(ctx context.Context, target string, args *HeartbeatRequest, resp *HeartbeatResponse) error {
	r, err := i.makeRPC(ctx, target, args)
	if err != nil {
		return err
	}
	*resp = *r.Response.(*HeartbeatResponse)
	return nil
}

func (i *InmemTransport) TriggerElection(ctx context.Context, target string, args *TriggerElectionRequest, resp *TriggerElectionResponse) error {
	r, err := i.makeRPC(ctx, target, args)
	if err != nil {
		return err
	}
	*resp = *r.Response.(*TriggerElectionResponse)
	return nil
}

func (i *InmemTransport) NotifyLeadership(ctx context.Context, target string, args *NotifyLeadershipRequest, resp *NotifyLeadershipResponse) error {
	r, err := i.makeRPC(ctx, target, args)
	if err != nil {
		return err
	}
	*resp = *r.Response.(*NotifyLeadershipResponse)
	return nil
}
