package node

import (
	"github.com/mosaicnetworks/auditledger/internal/ledger"
	"github.com/mosaicnetworks/auditledger/internal/ledgererr"
	"github.com/mosaicnetworks/auditledger/internal/security"
	"github.com/mosaicnetworks/auditledger/internal/transport"
)

// handleProposeBlock implements spec.md §4.9(b). Per the Open Question 1
// decision (SPEC_FULL.md §8), it performs the full validation: Merkle
// root, previous_hash, the block's own declared hash, and every audit's
// signature — the safer superset of the distilled protocol.
func (n *Node) handleProposeBlock(req *transport.ProposeBlockRequest) *transport.ProposeBlockResponse {
	b := req.Block

	leaves, err := ledger.BlockLeaves(b.Audits)
	if err != nil {
		return &transport.ProposeBlockResponse{Vote: false, Status: "failure", ErrorMessage: "bad merkle_root"}
	}
	if ledger.MerkleRoot(leaves) != b.MerkleRoot {
		return &transport.ProposeBlockResponse{Vote: false, Status: "failure", ErrorMessage: ledgererr.New(ledgererr.BadMerkleRoot, "").Error()}
	}

	if b.PreviousHash != n.chain.GetLastHash() {
		return &transport.ProposeBlockResponse{Vote: false, Status: "failure", ErrorMessage: ledgererr.New(ledgererr.BadPreviousHash, "").Error()}
	}

	wantHash, err := ledger.ComputeHash(b.ID, b.PreviousHash, b.MerkleRoot)
	if err != nil || wantHash != b.Hash {
		return &transport.ProposeBlockResponse{Vote: false, Status: "failure", ErrorMessage: ledgererr.New(ledgererr.BadBlockHash, "").Error()}
	}

	for _, a := range b.Audits {
		payload, err := ledger.Canonicalize(a)
		if err != nil || !security.Verify(payload, a.Signature, a.PublicKey) {
			return &transport.ProposeBlockResponse{Vote: false, Status: "failure", ErrorMessage: ledgererr.New(ledgererr.InvalidSignature, a.ReqID).Error()}
		}
	}

	return &transport.ProposeBlockResponse{Vote: true, Status: "success"}
}

// handleCommitBlock implements spec.md §4.9(c), with the Open Question 2
// redesign adopted: the block body is written before the chain index is
// appended, so the index can never point at a missing body file.
func (n *Node) handleCommitBlock(req *transport.CommitBlockRequest) *transport.CommitBlockResponse {
	b := req.Block

	if err := n.chain.PutBlockBody(b); err != nil {
		return &transport.CommitBlockResponse{Status: "failure", ErrorMessage: "could not write block file"}
	}

	if err := n.chain.Append(b.ToMeta()); err != nil {
		return &transport.CommitBlockResponse{Status: "failure", ErrorMessage: err.Error()}
	}

	reqIDs := make([]string, len(b.Audits))
	for i, a := range b.Audits {
		reqIDs[i] = a.ReqID
	}
	n.mempool.RemoveBatch(reqIDs)

	n.logger.WithField("block_id", b.ID).Info("block_committed")

	return &transport.CommitBlockResponse{Status: "success"}
}

// handleGetBlock implements spec.md §4.9(d).
func (n *Node) handleGetBlock(req *transport.GetBlockRequest) *transport.GetBlockResponse {
	b, err := n.chain.GetBlockBody(req.ID)
	if err != nil {
		return &transport.GetBlockResponse{Status: "failure", ErrorMessage: err.Error()}
	}
	return &transport.GetBlockResponse{Block: b, Status: "success"}
}

// handleSendHeartbeat implements spec.md §4.9(e): overwrite the heartbeat
// table entry, then passively adopt the reported leader if this node
// doesn't already know one.
func (n *Node) handleSendHeartbeat(req *transport.HeartbeatRequest) *transport.HeartbeatResponse {
	n.hbTable.Update(req.FromAddress, req.CurrentLeaderAddr, req.LatestBlockID, req.MemPoolSize)
	n.election.AdoptIfEmpty(req.CurrentLeaderAddr)
	return &transport.HeartbeatResponse{Status: "success"}
}

// handleTriggerElection implements spec.md §4.9(f): vote yes iff, in
// strict priority order, the candidate has more committed blocks, or tied
// blocks and a larger mempool, or all tied and a lexicographically larger
// address (deterministic tie-break).
func (n *Node) handleTriggerElection(req *transport.TriggerElectionRequest) *transport.TriggerElectionResponse {
	cand, ok := n.hbTable.Get(req.Address)

	myBlocks := n.chain.GetLastID()
	myPool := int64(n.mempool.Size())

	var candBlocks, candPool int64
	if ok {
		candBlocks, candPool = cand.LatestBlockID, cand.MemPoolSize
	}

	vote := candBlocks > myBlocks ||
		(candBlocks == myBlocks && candPool > myPool) ||
		(candBlocks == myBlocks && candPool == myPool && req.Address > n.self)

	if vote {
		n.election.SetVotedFor(req.Address)
	}

	return &transport.TriggerElectionResponse{Vote: vote, Term: 0, Status: "success"}
}

// handleNotifyLeadership implements spec.md §4.9(g): unconditional
// assignment, no negotiation.
func (n *Node) handleNotifyLeadership(req *transport.NotifyLeadershipRequest) *transport.NotifyLeadershipResponse {
	n.election.SetLeader(req.Address)
	return &transport.NotifyLeadershipResponse{Status: "success"}
}
