// Package election implements the Election State (spec.md §4.7, C7):
// node-local, process-local (not persisted) notion of the current leader
// and who this node voted for in the current round.
package election

import "sync"

// State holds a node's view of leadership. All transitions are atomic.
type State struct {
	mu       sync.Mutex
	leader   string
	votedFor string
}

// New returns an empty election State.
func New() *State {
	return &State{}
}

// SetLeader unconditionally records addr as the current leader.
func (s *State) SetLeader(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leader = addr
}

// GetLeader returns the current leader address, possibly empty.
func (s *State) GetLeader() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leader
}

// SetVotedFor records which candidate this node voted for in the current
// round.
func (s *State) SetVotedFor(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votedFor = addr
}

// GetVotedFor returns the candidate this node most recently voted for.
func (s *State) GetVotedFor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.votedFor
}

// ResetVote clears voted_for at the start of a new election round
// (spec.md §4.7 policy).
func (s *State) ResetVote() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votedFor = ""
}

// AdoptIfEmpty sets leader to addr only if no leader is currently known,
// implementing the passive leader-discovery behaviour of SendHeartbeat
// (spec.md §4.9(e)).
func (s *State) AdoptIfEmpty(addr string) {
	if addr == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leader == "" {
		s.leader = addr
	}
}
