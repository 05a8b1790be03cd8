// Package mempool implements the in-memory, deduplicated set of admitted
// but not-yet-committed audits (spec.md §4.4, C4). It exclusively owns
// pending audit records; the blockchain/audit services hold a shared,
// read-only-in-spirit reference to it.
package mempool

import (
	"sync"

	"github.com/mosaicnetworks/auditledger/internal/ledger"
)

// Mempool is a thread-safe, insertion-ordered set of audits keyed by
// req_id.
type Mempool struct {
	mu     sync.Mutex
	byID   map[string]ledger.Audit
	order  []string // first-appended order, survives removals by compaction
}

// New returns an empty Mempool.
func New() *Mempool {
	return &Mempool{
		byID: make(map[string]ledger.Audit),
	}
}

// Append inserts an audit by req_id. A second append with the same req_id
// is a no-op: the mempool guarantees at-most-one copy of each req_id.
func (m *Mempool) Append(a ledger.Audit) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[a.ReqID]; exists {
		return
	}
	m.byID[a.ReqID] = a
	m.order = append(m.order, a.ReqID)
}

// RemoveBatch atomically removes every audit whose req_id is in ids.
func (m *Mempool) RemoveBatch(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(ids) == 0 {
		return
	}
	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}

	for _, id := range ids {
		delete(m.byID, id)
	}

	compacted := m.order[:0]
	for _, id := range m.order {
		if _, gone := remove[id]; gone {
			continue
		}
		compacted = append(compacted, id)
	}
	m.order = compacted
}

// LoadAll returns a stable snapshot of the mempool's contents in the order
// surviving entries were first appended, so a leader's proposed block
// orders audits deterministically from a given mempool state.
func (m *Mempool) LoadAll() []ledger.Audit {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ledger.Audit, 0, len(m.order))
	for _, id := range m.order {
		if a, ok := m.byID[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Size returns the number of pending audits.
func (m *Mempool) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// Contains reports whether req_id is currently pending. Used by tests
// asserting the mempool/commit duality invariant (spec.md §8 law 4).
func (m *Mempool) Contains(reqID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byID[reqID]
	return ok
}
