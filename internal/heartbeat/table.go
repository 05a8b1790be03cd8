// Package heartbeat implements the Heartbeat Table (spec.md §4.6, C6): the
// latest-seen liveness/progress stats per peer, shared by the blockchain
// service's RPC handler and the leader/election background loops.
package heartbeat

import (
	"sync"
	"time"
)

// Entry is a peer's most recently reported liveness/progress snapshot.
type Entry struct {
	FromAddress        string
	CurrentLeaderAddr  string
	LatestBlockID      int64
	MemPoolSize        int64
	LastSeen           time.Time
}

// Table is an atomic-per-operation map of peer address to Entry.
type Table struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// New returns an empty Table.
func New() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// Update overwrites the entry for from with the given stats and the
// current wall-clock time.
func (t *Table) Update(from, leader string, latestBlockID, poolSize int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[from] = Entry{
		FromAddress:       from,
		CurrentLeaderAddr: leader,
		LatestBlockID:     latestBlockID,
		MemPoolSize:       poolSize,
		LastSeen:          time.Now(),
	}
}

// Get returns the entry for from, if any.
func (t *Table) Get(from string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[from]
	return e, ok
}

// All returns a snapshot of every known entry.
func (t *Table) All() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	return out
}

// Expired returns the from-addresses whose last_seen is older than tau,
// relative to now.
func (t *Table) Expired(now time.Time, tau time.Duration) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for addr, e := range t.entries {
		if now.Sub(e.LastSeen) > tau {
			out = append(out, addr)
		}
	}
	return out
}
