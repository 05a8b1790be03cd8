package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

// command bytes frame each request over the wire, mirroring the teacher's
// NetworkTransport ("Each RPC request is framed by sending a byte that
// indicates the message type, followed by the json encoded request").
const (
	cmdSubmitAudit uint8 = iota
	cmdWhisperAudit
	cmdProposeBlock
	cmdCommitBlock
	cmdGetBlock
	cmdSendHeartbeat
	cmdTriggerElection
	cmdNotifyLeadership
)

// ErrTransportShutdown is returned when operations are invoked on a
// transport after it has been closed.
var ErrTransportShutdown = errors.New("transport shutdown")

// NetTransport is a TCP-based Transport: each RPC is a command byte
// followed by a JSON request, and the response is a JSON response,
// grounded on the teacher's net.NetworkTransport.
type NetTransport struct {
	logger *logrus.Entry

	bindAddr  string
	listener  net.Listener
	consumeCh chan RPC

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex
}

// NewNetTransport binds a TCP listener at bindAddr.
func NewNetTransport(bindAddr string, logger *logrus.Entry) (*NetTransport, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}

	t := &NetTransport{
		logger:     logger,
		bindAddr:   ln.Addr().String(),
		listener:   ln,
		consumeCh:  make(chan RPC, 64),
		shutdownCh: make(chan struct{}),
	}
	return t, nil
}

// Listen starts accepting connections in the background.
func (t *NetTransport) Listen() {
	go t.acceptLoop()
}

func (t *NetTransport) acceptLoop() {
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.shutdownCh:
				return
			default:
			}
			t.logger.WithError(err).Error("net_transport: accept failed")
			continue
		}
		go t.handleConn(conn)
	}
}

func (t *NetTransport) handleConn(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	dec := json.NewDecoder(r)
	enc := json.NewEncoder(conn)

	for {
		cmdByte, err := r.ReadByte()
		if err != nil {
			return
		}

		req, zero := newRequest(cmdByte)
		if req == nil {
			t.logger.WithField("cmd", cmdByte).Error("net_transport: unknown command byte")
			return
		}
		if err := dec.Decode(req); err != nil {
			t.logger.WithError(err).Error("net_transport: decode request failed")
			return
		}

		respCh := make(chan RPCResponse, 1)
		t.consumeCh <- RPC{Command: req, RespChan: respCh}

		rpcResp := <-respCh
		if rpcResp.Error != nil {
			rpcResp.Response = zero
		}
		if err := enc.Encode(rpcResp.Response); err != nil {
			t.logger.WithError(err).Error("net_transport: encode response failed")
			return
		}
	}
}

func newRequest(cmd uint8) (req interface{}, zeroResp interface{}) {
	switch cmd {
	case cmdSubmitAudit:
		return &SubmitAuditRequest{}, &SubmitAuditResponse{}
	case cmdWhisperAudit:
		return &WhisperAuditRequest{}, &WhisperAuditResponse{}
	case cmdProposeBlock:
		return &ProposeBlockRequest{}, &ProposeBlockResponse{}
	case cmdCommitBlock:
		return &CommitBlockRequest{}, &CommitBlockResponse{}
	case cmdGetBlock:
		return &GetBlockRequest{}, &GetBlockResponse{}
	case cmdSendHeartbeat:
		return &HeartbeatRequest{}, &HeartbeatResponse{}
	case cmdTriggerElection:
		return &TriggerElectionRequest{}, &TriggerElectionResponse{}
	case cmdNotifyLeadership:
		return &NotifyLeadershipRequest{}, &NotifyLeadershipResponse{}
	default:
		return nil, nil
	}
}

// Consumer implements Transport.
func (t *NetTransport) Consumer() <-chan RPC { return t.consumeCh }

// LocalAddr implements Transport.
func (t *NetTransport) LocalAddr() string { return t.bindAddr }

// Close implements Transport.
func (t *NetTransport) Close() error {
	t.shutdownLock.Lock()
	defer t.shutdownLock.Unlock()
	if !t.shutdown {
		close(t.shutdownCh)
		t.shutdown = true
	}
	return t.listener.Close()
}

func (t *NetTransport) call(ctx context.Context, target string, cmd uint8, args interface{}, resp interface{}) error {
	dialer := net.Dialer{}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}

	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte{cmd}); err != nil {
		return err
	}
	if err := json.NewEncoder(conn).Encode(args); err != nil {
		return err
	}
	return json.NewDecoder(conn).Decode(resp)
}

func (t *NetTransport) SubmitAudit(ctx context.Context, target string, args *SubmitAuditRequest, resp *SubmitAuditResponse) error {
	return t.call(ctx, target, cmdSubmitAudit, args, resp)
}

func (t *NetTransport) WhisperAudit(ctx context.Context, target string, args *WhisperAuditRequest, resp *WhisperAuditResponse) error {
	return t.call(ctx, target, cmdWhisperAudit, args, resp)
}

func (t *NetTransport) ProposeBlock(ctx context.Context, target string, args *ProposeBlockRequest, resp *ProposeBlockResponse) error {
	return t.call(ctx, target, cmdProposeBlock, args, resp)
}

func (t *NetTransport) CommitBlock(ctx context.Context, target string, args *CommitBlockRequest, resp *CommitBlockResponse) error {
	return t.call(ctx, target, cmdCommitBlock, args, resp)
}

func (t *NetTransport) GetBlock(ctx context.Context, target string, args *GetBlockRequest, resp *GetBlockResponse) error {
	return t.call(ctx, target, cmdGetBlock, args, resp)
}

func (t *NetTransport) SendHeartbeat(ctx context.Context, target string, args *HeartbeatRequest, resp *HeartbeatResponse) error {
	return t.call(ctx, target, cmdSendHeartbeat, args, resp)
}

func (t *NetTransport) TriggerElection(ctx context.Context, target string, args *TriggerElectionRequest, resp *TriggerElectionResponse) error {
	return t.call(ctx, target, cmdTriggerElection, args, resp)
}

func (t *NetTransport) NotifyLeadership(ctx context.Context, target string, args *NotifyLeadershipRequest, resp *NotifyLeadershipResponse) error {
	return t.call(ctx, target, cmdNotifyLeadership, args, resp)
}
