package node

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/auditledger/internal/ledger"
	"github.com/mosaicnetworks/auditledger/internal/security"
	"github.com/mosaicnetworks/auditledger/internal/transport"
)

// admit verifies an audit's signature and appends it to the mempool,
// shared by SubmitAudit and WhisperAudit (spec.md §4.8 steps 1-2,
// §4.9(a)). It returns false when the signature fails verification.
func (n *Node) admit(a ledger.Audit) bool {
	payload, err := ledger.Canonicalize(a)
	if err != nil {
		n.logger.WithError(err).Error("canonicalize failed")
		return false
	}

	if !security.Verify(payload, a.Signature, a.PublicKey) {
		n.logger.WithField("req_id", a.ReqID).Warn("invalid client signature")
		return false
	}

	n.mempool.Append(a)
	return true
}

// SubmitAudit implements the Audit Service (C8): verify, admit, gossip
// with a bounded per-peer deadline, then respond. Gossip is best-effort —
// peer failures are logged, never surfaced to the client, and the client
// response waits for every gossip call to settle or time out.
func (n *Node) SubmitAudit(ctx context.Context, a ledger.Audit) *transport.SubmitAuditResponse {
	if !n.admit(a) {
		return &transport.SubmitAuditResponse{
			ReqID:        a.ReqID,
			Status:       "failure",
			ErrorMessage: "Invalid client signature",
		}
	}

	n.gossip(a)

	return &transport.SubmitAuditResponse{ReqID: a.ReqID, Status: "success"}
}

func (n *Node) handleSubmitAudit(req *transport.SubmitAuditRequest) *transport.SubmitAuditResponse {
	return n.SubmitAudit(context.Background(), req.Audit)
}

// gossip fans an admitted audit out to every peer concurrently, each call
// bounded by the configured gossip deadline, and waits for all of them to
// settle before returning (spec.md §4.8 step 3).
func (n *Node) gossip(a ledger.Audit) {
	var wg sync.WaitGroup
	for _, addr := range n.peers.Addresses {
		addr := addr
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), n.conf.GossipDeadline)
			defer cancel()

			var resp transport.WhisperAuditResponse
			err := n.trans.WhisperAudit(ctx, addr, &transport.WhisperAuditRequest{Audit: a}, &resp)
			if err != nil {
				n.logger.WithFields(logrus.Fields{
					"peer":   addr,
					"req_id": a.ReqID,
					"error":  err,
				}).Debug("gossip_failed")
				return
			}
			if resp.Status != "success" {
				n.logger.WithFields(logrus.Fields{
					"peer":   addr,
					"req_id": a.ReqID,
					"error":  resp.ErrorMessage,
				}).Debug("gossip_rejected")
			}
		}()
	}
	wg.Wait()
}

// handleWhisperAudit implements spec.md §4.9(a): admit only, no further
// gossip. Loop prevention is by caller-role distinction — this handler
// never calls n.gossip.
func (n *Node) handleWhisperAudit(req *transport.WhisperAuditRequest) *transport.WhisperAuditResponse {
	if !n.admit(req.Audit) {
		return &transport.WhisperAuditResponse{
			Status:       "failure",
			ErrorMessage: "Invalid client signature",
		}
	}
	return &transport.WhisperAuditResponse{Status: "success"}
}
