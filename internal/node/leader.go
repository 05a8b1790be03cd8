package node

import (
	"context"
	"sync"
	"time"

	"github.com/mosaicnetworks/auditledger/internal/ledger"
	"github.com/mosaicnetworks/auditledger/internal/transport"
)

// isLeader reports whether this node currently believes itself to be the
// leader.
func (n *Node) isLeader() bool {
	return n.election.GetLeader() == n.self
}

// heartbeatLoop is the leader's periodic liveness announcement
// (spec.md §4.9 "Leader duties"). Non-leaders are silent; they rely on
// the leader's heartbeats and detect absence via electionWatchLoop.
func (n *Node) heartbeatLoop() {
	defer n.wg.Done()

	ticker := time.NewTicker(n.conf.HeartbeatPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n.isLeader() {
				n.broadcastHeartbeat()
			}
		case <-n.shutdownCh:
			return
		}
	}
}

func (n *Node) broadcastHeartbeat() {
	req := &transport.HeartbeatRequest{
		FromAddress:       n.self,
		CurrentLeaderAddr: n.self,
		LatestBlockID:     n.chain.GetLastID(),
		MemPoolSize:       int64(n.mempool.Size()),
	}

	for _, addr := range n.peers.Addresses {
		addr := addr
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), n.conf.GossipDeadline)
			defer cancel()
			var resp transport.HeartbeatResponse
			if err := n.trans.SendHeartbeat(ctx, addr, req, &resp); err != nil {
				n.logger.WithField("peer", addr).WithError(err).Debug("heartbeat_failed")
			}
		}()
	}
}

// proposalLoop is the leader's block-proposal cadence: once per tick, or
// sooner once the mempool reaches the configured batch size, drain the
// mempool into a new block and run propose/commit against the cluster.
func (n *Node) proposalLoop() {
	defer n.wg.Done()

	ticker := time.NewTicker(n.conf.ProposeTick)
	defer ticker.Stop()

	checkTicker := time.NewTicker(50 * time.Millisecond)
	defer checkTicker.Stop()

	for {
		select {
		case <-ticker.C:
			n.maybePropose()
		case <-checkTicker.C:
			if n.isLeader() && n.mempool.Size() >= n.conf.ProposeBatch {
				n.maybePropose()
			}
		case <-n.shutdownCh:
			return
		}
	}
}

func (n *Node) maybePropose() {
	if !n.isLeader() {
		return
	}

	audits := n.mempool.LoadAll()
	if len(audits) == 0 {
		return
	}

	block, err := n.buildBlock(audits)
	if err != nil {
		n.logger.WithError(err).Error("build_block_failed")
		return
	}

	if n.runProposeCommit(block) {
		n.logger.WithField("block_id", block.ID).Info("block_proposed")
	}
}

// buildBlock assembles a new Block from a mempool snapshot, computing its
// Merkle root, previous_hash linkage, and header hash.
func (n *Node) buildBlock(audits []ledger.Audit) (ledger.Block, error) {
	var b ledger.Block

	leaves, err := ledger.BlockLeaves(audits)
	if err != nil {
		return b, err
	}

	b.ID = n.chain.GetLastID() + 1
	b.PreviousHash = n.chain.GetLastHash()
	b.MerkleRoot = ledger.MerkleRoot(leaves)
	b.Audits = audits

	hash, err := ledger.ComputeHash(b.ID, b.PreviousHash, b.MerkleRoot)
	if err != nil {
		return b, err
	}
	b.Hash = hash

	return b, nil
}

// runProposeCommit broadcasts ProposeBlock to every peer, tallies votes
// (self counted as yes), and on strict majority broadcasts CommitBlock and
// commits locally. Returns whether the block was committed.
func (n *Node) runProposeCommit(block ledger.Block) bool {
	yesVotes := 1 // self

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, addr := range n.peers.Addresses {
		addr := addr
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), n.conf.ProposeDeadline)
			defer cancel()

			var resp transport.ProposeBlockResponse
			if err := n.trans.ProposeBlock(ctx, addr, &transport.ProposeBlockRequest{Block: block}, &resp); err != nil {
				n.logger.WithField("peer", addr).WithError(err).Debug("propose_failed")
				return
			}
			if resp.Vote {
				mu.Lock()
				yesVotes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	quorum := n.peers.Quorum()
	if yesVotes <= quorum-1 {
		n.logger.WithField("block_id", block.ID).WithField("yes_votes", yesVotes).Debug("quorum_not_reached")
		return false
	}

	return n.commitEverywhere(block)
}

func (n *Node) commitEverywhere(block ledger.Block) bool {
	resp := n.handleCommitBlock(&transport.CommitBlockRequest{Block: block})
	if resp.Status != "success" {
		n.logger.WithField("block_id", block.ID).WithField("error", resp.ErrorMessage).Error("local_commit_failed")
		return false
	}

	var wg sync.WaitGroup
	for _, addr := range n.peers.Addresses {
		addr := addr
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), n.conf.CommitDeadline)
			defer cancel()

			var resp transport.CommitBlockResponse
			if err := n.trans.CommitBlock(ctx, addr, &transport.CommitBlockRequest{Block: block}, &resp); err != nil {
				n.logger.WithField("peer", addr).WithError(err).Debug("commit_failed")
			}
		}()
	}
	wg.Wait()

	return true
}

// electionWatchLoop detects leader absence via heartbeat expiry and runs a
// self-candidacy TriggerElection round, winning on strict majority.
func (n *Node) electionWatchLoop() {
	defer n.wg.Done()

	ticker := time.NewTicker(n.conf.ElectionCheck)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n.maybeTriggerElection()
		case <-n.shutdownCh:
			return
		}
	}
}

func (n *Node) maybeTriggerElection() {
	if n.isLeader() {
		return
	}

	leader := n.election.GetLeader()
	if leader != "" {
		if entry, ok := n.hbTable.Get(leader); ok {
			if time.Since(entry.LastSeen) <= n.conf.HeartbeatTau {
				return // leader still alive
			}
		}
	}

	n.election.ResetVote()

	yesVotes := 1 // self votes for itself implicitly by candidacy
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, addr := range n.peers.Addresses {
		addr := addr
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), n.conf.ProposeDeadline)
			defer cancel()

			var resp transport.TriggerElectionResponse
			req := &transport.TriggerElectionRequest{Address: n.self}
			if err := n.trans.TriggerElection(ctx, addr, req, &resp); err != nil {
				n.logger.WithField("peer", addr).WithError(err).Debug("election_request_failed")
				return
			}
			if resp.Vote {
				mu.Lock()
				yesVotes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if yesVotes <= n.peers.Quorum()-1 {
		n.logger.WithField("yes_votes", yesVotes).Debug("election_lost")
		return
	}

	n.logger.WithField("candidate", n.self).Info("leader_elected")
	n.election.SetLeader(n.self)
	n.notifyLeadershipEverywhere()
}

func (n *Node) notifyLeadershipEverywhere() {
	for _, addr := range n.peers.Addresses {
		addr := addr
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), n.conf.GossipDeadline)
			defer cancel()
			var resp transport.NotifyLeadershipResponse
			req := &transport.NotifyLeadershipRequest{Address: n.self}
			if err := n.trans.NotifyLeadership(ctx, addr, req, &resp); err != nil {
				n.logger.WithField("peer", addr).WithError(err).Debug("notify_leadership_failed")
			}
		}()
	}
}
