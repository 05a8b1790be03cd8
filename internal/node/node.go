// Package node wires the four owned state machines (mempool, chain store,
// heartbeat table, election state) to the two RPC-facing services spec.md
// names: the Audit Service (C8, client-facing admission+gossip) and the
// Blockchain Service (C9, peer-facing propose/commit/heartbeat/election).
// It also runs the leader's three background duties. Grounded on the
// teacher's node.Node (state machine + RPC dispatch loop) and
// node.ControlTimer (cancellable periodic ticks).
package node

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/auditledger/internal/config"
	"github.com/mosaicnetworks/auditledger/internal/election"
	"github.com/mosaicnetworks/auditledger/internal/heartbeat"
	"github.com/mosaicnetworks/auditledger/internal/mempool"
	"github.com/mosaicnetworks/auditledger/internal/peers"
	"github.com/mosaicnetworks/auditledger/internal/store"
	"github.com/mosaicnetworks/auditledger/internal/transport"
)

// Node is one participant of the audit ledger cluster.
type Node struct {
	conf   *config.Config
	logger *logrus.Entry

	self  string
	peers *peers.PeerSet

	mempool  *mempool.Mempool
	chain    *store.ChainStore
	hbTable  *heartbeat.Table
	election *election.State

	trans transport.Transport

	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// New wires the given state machines and transport into a Node.
func New(
	conf *config.Config,
	peerSet *peers.PeerSet,
	mp *mempool.Mempool,
	chain *store.ChainStore,
	hbTable *heartbeat.Table,
	el *election.State,
	trans transport.Transport,
) *Node {
	return &Node{
		conf:       conf,
		logger:     conf.Logger(),
		self:       trans.LocalAddr(),
		peers:      peerSet,
		mempool:    mp,
		chain:      chain,
		hbTable:    hbTable,
		election:   el,
		trans:      trans,
		shutdownCh: make(chan struct{}),
	}
}

// Run starts the transport, the RPC dispatch loop, and the three leader
// background duties (heartbeat, proposal, election-watch). It blocks until
// Shutdown is called.
func (n *Node) Run() {
	n.trans.Listen()

	n.wg.Add(4)
	go n.dispatchLoop()
	go n.heartbeatLoop()
	go n.proposalLoop()
	go n.electionWatchLoop()

	<-n.shutdownCh
	n.wg.Wait()
}

// RunAsync runs Run in a background goroutine.
func (n *Node) RunAsync() {
	go n.Run()
}

// Shutdown cancels the background loops and closes the transport.
func (n *Node) Shutdown() {
	close(n.shutdownCh)
	n.trans.Close()
}

// dispatchLoop consumes inbound RPCs from the transport and routes each to
// its handler, mirroring the teacher's node.processRPC switch.
func (n *Node) dispatchLoop() {
	defer n.wg.Done()

	for {
		select {
		case rpc := <-n.trans.Consumer():
			n.processRPC(rpc)
		case <-n.shutdownCh:
			return
		}
	}
}

func (n *Node) processRPC(rpc transport.RPC) {
	switch cmd := rpc.Command.(type) {
	case *transport.SubmitAuditRequest:
		rpc.Respond(n.handleSubmitAudit(cmd), nil)
	case *transport.WhisperAuditRequest:
		rpc.Respond(n.handleWhisperAudit(cmd), nil)
	case *transport.ProposeBlockRequest:
		rpc.Respond(n.handleProposeBlock(cmd), nil)
	case *transport.CommitBlockRequest:
		rpc.Respond(n.handleCommitBlock(cmd), nil)
	case *transport.GetBlockRequest:
		rpc.Respond(n.handleGetBlock(cmd), nil)
	case *transport.HeartbeatRequest:
		rpc.Respond(n.handleSendHeartbeat(cmd), nil)
	case *transport.TriggerElectionRequest:
		rpc.Respond(n.handleTriggerElection(cmd), nil)
	case *transport.NotifyLeadershipRequest:
		rpc.Respond(n.handleNotifyLeadership(cmd), nil)
	default:
		n.logger.WithField("cmd", rpc.Command).Error("unexpected RPC command")
	}
}
