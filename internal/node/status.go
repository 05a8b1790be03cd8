package node

import "github.com/mosaicnetworks/auditledger/internal/ledger"

// The methods below satisfy service.Backend, letting the status API query
// a running Node without importing the node package's internals.

// Stats returns a snapshot of node-level counters for the status API.
func (n *Node) Stats() map[string]interface{} {
	return map[string]interface{}{
		"address":       n.self,
		"leader":        n.election.GetLeader(),
		"last_block_id": n.chain.GetLastID(),
		"last_hash":     n.chain.GetLastHash(),
		"mempool_size":  n.mempool.Size(),
		"peers":         len(n.peers.Addresses),
	}
}

// GetBlockByID returns a committed block by id.
func (n *Node) GetBlockByID(id int64) (ledger.Block, error) {
	return n.chain.GetBlockBody(id)
}

// PeerAddresses returns the configured cluster peer addresses.
func (n *Node) PeerAddresses() []string {
	return n.peers.Addresses
}

// MempoolSnapshot returns the current mempool contents in insertion order.
func (n *Node) MempoolSnapshot() []ledger.Audit {
	return n.mempool.LoadAll()
}
