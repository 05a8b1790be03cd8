// Package store implements the Chain Store (spec.md §4.5, C5): a durable,
// append-only index of block metadata backed by badger (grounded on the
// teacher's hashgraph.BadgerStore), plus one canonical JSON file per
// committed block body under a blocks/ subdirectory, per spec.md §6.
package store

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger"

	"github.com/mosaicnetworks/auditledger/internal/ledger"
	"github.com/mosaicnetworks/auditledger/internal/ledgererr"
)

const (
	metaPrefix  = "meta"
	lastIDKey   = "meta_last_id"
	lastHashKey = "meta_last_hash"
)

// ChainStore is the durable chain index plus per-block body files.
type ChainStore struct {
	mu        sync.Mutex
	db        *badger.DB
	blocksDir string
}

// Open opens (or creates) a ChainStore rooted at dataDir, with the badger
// index under dataDir/chain_index and bodies under dataDir/blocks.
func Open(dataDir string) (*ChainStore, error) {
	indexDir := filepath.Join(dataDir, "chain_index")
	blocksDir := filepath.Join(dataDir, "blocks")

	if err := os.MkdirAll(blocksDir, 0755); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(indexDir)
	opts.Dir = indexDir
	opts.ValueDir = indexDir
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &ChainStore{db: db, blocksDir: blocksDir}, nil
}

// Close releases the underlying badger handle.
func (s *ChainStore) Close() error {
	return s.db.Close()
}

func metaKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s_%09d", metaPrefix, id))
}

// GetLastHash returns the hash of the entry with the greatest id, or the
// genesis constant when the index is empty.
func (s *ChainStore) GetLastHash() string {
	hash, _ := s.lastPointer()
	if hash == "" {
		return ledger.GenesisHash
	}
	return hash
}

// GetLastID returns the id of the entry with the greatest id, or -1 when
// the index is empty.
func (s *ChainStore) GetLastID() int64 {
	_, id := s.lastPointer()
	return id
}

func (s *ChainStore) lastPointer() (hash string, id int64) {
	id = -1
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(lastHashKey))
		if err != nil {
			return nil // not found => zero values
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return nil
		}
		hash = string(v)

		item, err = txn.Get([]byte(lastIDKey))
		if err != nil {
			return nil
		}
		v, err = item.ValueCopy(nil)
		if err != nil {
			return nil
		}
		var parsed int64
		_, scanErr := fmt.Sscanf(string(v), "%d", &parsed)
		if scanErr == nil {
			id = parsed
		}
		return nil
	})
	return hash, id
}

// Append adds a Meta entry to the index. It fails with a ChainBroken error
// if meta.PreviousHash does not equal the current GetLastHash(), or
// meta.ID does not equal GetLastID()+1.
func (s *ChainStore) Append(meta ledger.Meta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lastHash, lastID := s.lastPointer()
	if lastHash == "" {
		lastHash = ledger.GenesisHash
	}

	wantID := lastID + 1
	if meta.ID != wantID || meta.PreviousHash != lastHash {
		return ledgererr.New(ledgererr.ChainBroken, fmt.Sprintf(
			"expected id=%d previous_hash=%s, got id=%d previous_hash=%s",
			wantID, lastHash, meta.ID, meta.PreviousHash))
	}

	return s.db.Update(func(txn *badger.Txn) error {
		body, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		if err := txn.Set(metaKey(meta.ID), body); err != nil {
			return err
		}
		if err := txn.Set([]byte(lastHashKey), []byte(meta.Hash)); err != nil {
			return err
		}
		return txn.Set([]byte(lastIDKey), []byte(fmt.Sprintf("%d", meta.ID)))
	})
}

// GetMeta returns the Meta entry for id, or a NotFound error.
func (s *ChainStore) GetMeta(id int64) (ledger.Meta, error) {
	var meta ledger.Meta
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(id))
		if err != nil {
			return ledgererr.New(ledgererr.NotFound, "")
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(v, &meta)
	})
	return meta, err
}

func (s *ChainStore) blockPath(id int64) string {
	return filepath.Join(s.blocksDir, ledger.BlockFileName(id))
}

// PutBlockBody writes the full block (including audits) to its per-block
// file as the canonical JSON encoding of the block message.
func (s *ChainStore) PutBlockBody(b ledger.Block) error {
	body, err := b.CanonicalJSON()
	if err != nil {
		return ledgererr.New(ledgererr.IOFailure, err.Error())
	}
	if err := ioutil.WriteFile(s.blockPath(b.ID), body, 0644); err != nil {
		return ledgererr.New(ledgererr.IOFailure, err.Error())
	}
	return nil
}

// GetBlockBody reads and parses a committed block's body file.
func (s *ChainStore) GetBlockBody(id int64) (ledger.Block, error) {
	var b ledger.Block

	if id > s.GetLastID() || id < 0 {
		return b, ledgererr.New(ledgererr.OutOfRange, "")
	}

	buf, err := ioutil.ReadFile(s.blockPath(id))
	if err != nil {
		return b, ledgererr.New(ledgererr.ReadFailure, "")
	}

	if err := json.Unmarshal(buf, &b); err != nil {
		return b, ledgererr.New(ledgererr.ParseFailure, err.Error())
	}
	return b, nil
}
