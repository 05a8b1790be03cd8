// Package service exposes a read-only HTTP status API over a Node: stats,
// block lookup, peer list, and mempool contents (SPEC_FULL.md §7
// supplemented feature). Grounded on the teacher's src/service/service.go
// (DefaultServeMux registration, CORS header, per-request Mutex lock).
package service

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/auditledger/internal/ledger"
)

// StatsProvider, BlockProvider, PeerProvider and MempoolProvider are the
// slices of Node that the status API needs, kept narrow so the service
// package never has to import node (which already imports everything
// else) and tests can supply fakes.
type StatsProvider interface {
	Stats() map[string]interface{}
}

type BlockProvider interface {
	GetBlockByID(id int64) (ledger.Block, error)
}

type PeerProvider interface {
	PeerAddresses() []string
}

type MempoolProvider interface {
	MempoolSnapshot() []ledger.Audit
}

// Backend is the union of capabilities the status API serves.
type Backend interface {
	StatsProvider
	BlockProvider
	PeerProvider
	MempoolProvider
}

// Service is a read-only HTTP status API over a Backend.
type Service struct {
	sync.Mutex

	bindAddress string
	backend     Backend
	logger      *logrus.Entry
	mux         *http.ServeMux
}

// NewService constructs a Service and registers its handlers on a private
// ServeMux, so multiple Services in the same process (tests) never
// collide on http.DefaultServeMux.
func NewService(bindAddress string, backend Backend, logger *logrus.Entry) *Service {
	s := &Service{
		bindAddress: bindAddress,
		backend:     backend,
		logger:      logger,
		mux:         http.NewServeMux(),
	}
	s.registerHandlers()
	return s
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering status API handlers")
	s.mux.HandleFunc("/stats", s.makeHandler(s.GetStats))
	s.mux.HandleFunc("/block/", s.makeHandler(s.GetBlock))
	s.mux.HandleFunc("/peers", s.makeHandler(s.GetPeers))
	s.mux.HandleFunc("/mempool", s.makeHandler(s.GetMempool))
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Serve blocks, listening on bindAddress.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving status API")

	if err := http.ListenAndServe(s.bindAddress, s.mux); err != nil {
		s.logger.WithError(err).Error("status API stopped")
	}
}

// GetStats returns node-level counters: chain height, mempool size, and
// the current leader.
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.backend.Stats())
}

// GetBlock returns a single committed block by id, given as the path
// suffix of /block/.
func (s *Service) GetBlock(w http.ResponseWriter, r *http.Request) {
	param := strings.TrimPrefix(r.URL.Path, "/block/")

	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		s.logger.WithError(err).Errorf("parsing block id %q", param)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	block, err := s.backend.GetBlockByID(id)
	if err != nil {
		s.logger.WithError(err).Errorf("retrieving block %d", id)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(block)
}

// GetPeers returns the configured cluster peer addresses.
func (s *Service) GetPeers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.backend.PeerAddresses())
}

// GetMempool returns the current mempool snapshot.
func (s *Service) GetMempool(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.backend.MempoolSnapshot())
}
