// Package store persists classification/retention records for transactions
// a view-layer process has already classified (classify.Classification) so
// repeat pruning queries don't need to re-run classification. It is a
// non-consensus, purely local cache: losing it costs a host nothing but
// some recomputation.
package store

import (
	"encoding/json"
	"time"

	"github.com/go-errors/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/defenwycke/segregated-op-return/classify"
)

var recordsBucket = []byte("tx_classification")

// Record is the persisted classification of one transaction, keyed by its
// full extended id (hex-encoded).
type Record struct {
	Tier        classify.Tier `json:"tier"`
	Type        string        `json:"type"`
	Labels      []string      `json:"labels"`
	Ambiguous   bool          `json:"ambiguous"`
	BlockHeight int64         `json:"block_height"`
}

// Store wraps a bbolt database holding the classification index.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bbolt database at path and ensures
// the classification bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Errorf("open classification store %q: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recordsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Errorf("create classification bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put persists the classification record for the transaction identified by
// extendedIDHex, overwriting any existing record for the same id.
func (s *Store) Put(extendedIDHex string, rec Record) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return errors.Errorf("encode classification record: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(recordsBucket)
		return b.Put([]byte(extendedIDHex), encoded)
	})
}

// Get retrieves the classification record for extendedIDHex. found is false
// when no record has been stored for that id.
func (s *Store) Get(extendedIDHex string) (rec Record, found bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(recordsBucket)
		raw := b.Get([]byte(extendedIDHex))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &rec)
	})
	if err != nil {
		return Record{}, false, errors.Errorf("decode classification record: %w", err)
	}
	return rec, found, nil
}

// Delete removes the classification record for extendedIDHex, if any.
func (s *Store) Delete(extendedIDHex string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(recordsBucket)
		return b.Delete([]byte(extendedIDHex))
	})
}

// ForEachBelowHeight calls fn for every stored record whose BlockHeight is
// strictly below cutoff, in key order. It is used by the retention sweep
// to find records eligible for pruning.
func (s *Store) ForEachBelowHeight(cutoff int64, fn func(extendedIDHex string, rec Record) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(recordsBucket)
		return b.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return errors.Errorf("decode classification record %q: %w", string(k), err)
			}
			if rec.BlockHeight >= cutoff {
				return nil
			}
			return fn(string(k), rec)
		})
	})
}
