// Package cache persists generated documentation keyed by unit content hash.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"seppy/internal/domain"
)

var (
	bucketDocs = []byte("docs")
	bucketMeta = []byte("meta")
)

// ContentHash returns the cache key for a unit's exact source text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Store is a bbolt-backed documentation cache. Entries present when the
// store was opened are served from memory; new entries are staged until
// Commit so an aborted run leaves the database untouched.
type Store struct {
	db   *bbolt.DB
	path string

	mu       sync.RWMutex
	snapshot map[string]domain.CacheEntry
	pending  map[string]domain.CacheEntry
	hits     int
	misses   int
	reset    string // why entries were dropped at open, if they were
}

// Open opens or creates the cache database. Entries written under a
// different schema version or stamp are discarded.
func Open(path, stamp string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, &domain.CacheError{Op: "open", Err: fmt.Errorf("failed to open bolt db: %w", err)}
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocs, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, &domain.CacheError{Op: "open", Err: err}
	}

	s := &Store{
		db:       db,
		path:     path,
		snapshot: make(map[string]domain.CacheEntry),
		pending:  make(map[string]domain.CacheEntry),
	}

	if err := s.checkSchema(stamp); err != nil {
		db.Close()
		return nil, &domain.CacheError{Op: "open", Err: err}
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, &domain.CacheError{Op: "load", Err: err}
	}
	return s, nil
}

func (s *Store) load() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			var entry domain.CacheEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				// unreadable entries are treated as misses
				return nil
			}
			s.snapshot[string(k)] = entry
			return nil
		})
	})
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Lookup returns cached documentation for a content hash.
func (s *Store) Lookup(hash string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.snapshot[hash]; ok {
		s.hits++
		return e.Docs, true
	}
	if e, ok := s.pending[hash]; ok {
		s.hits++
		return e.Docs, true
	}
	s.misses++
	return "", false
}

// Store stages documentation for a content hash until Commit.
func (s *Store) Store(hash, docs string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[hash] = domain.CacheEntry{Hash: hash, Docs: docs, CreatedAt: time.Now().UTC()}
}

// Commit writes all staged entries in one transaction.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocs)
		for hash, entry := range s.pending {
			data, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(hash), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &domain.CacheError{Op: "commit", Err: err}
	}

	for hash, entry := range s.pending {
		s.snapshot[hash] = entry
	}
	s.pending = make(map[string]domain.CacheEntry)
	return nil
}

// Discard drops staged entries.
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[string]domain.CacheEntry)
}

// Len returns the number of committed entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshot)
}

// Stats describes the cache for reporting.
type Stats struct {
	Path          string `json:"path"`
	Entries       int    `json:"entries"`
	Pending       int    `json:"pending"`
	Hits          int    `json:"hits"`
	Misses        int    `json:"misses"`
	SchemaVersion int    `json:"schema_version"`
	Stamp         string `json:"stamp"`
	SizeBytes     int64  `json:"size_bytes"`
	Reset         string `json:"reset,omitempty"`
}

// Stats returns a snapshot of cache counters.
func (s *Store) Stats() (Stats, error) {
	info, err := s.schemaInfo()
	if err != nil {
		return Stats{}, &domain.CacheError{Op: "stats", Err: err}
	}

	var size int64
	err = s.db.View(func(tx *bbolt.Tx) error {
		size = tx.Size()
		return nil
	})
	if err != nil {
		return Stats{}, &domain.CacheError{Op: "stats", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Path:          s.path,
		Entries:       len(s.snapshot),
		Pending:       len(s.pending),
		Hits:          s.hits,
		Misses:        s.misses,
		SchemaVersion: info.Version,
		Stamp:         info.Stamp,
		SizeBytes:     size,
		Reset:         s.reset,
	}, nil
}

// Clear removes every cached entry, keeping schema metadata.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Update(clearDocs); err != nil {
		return &domain.CacheError{Op: "clear", Err: err}
	}
	s.snapshot = make(map[string]domain.CacheEntry)
	s.pending = make(map[string]domain.CacheEntry)
	return nil
}

func clearDocs(tx *bbolt.Tx) error {
	b := tx.Bucket(bucketDocs)
	if b == nil {
		return nil
	}
	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database. Staged entries are not written.
func (s *Store) Close() error {
	return s.db.Close()
}
