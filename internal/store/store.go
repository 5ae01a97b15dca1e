// Package store is the embedded badger database behind the response cache
// and per-client state.
package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Options tunes how the database is opened.
type Options struct {
	// ReadOnly opens the database without taking the write lock.
	ReadOnly bool
	// InMemory ignores the path and keeps everything in memory.
	InMemory bool
}

// New opens (or creates) the badger database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	return Open(path, logger, Options{})
}

// Open is New with explicit options.
func Open(path string, logger *slog.Logger, o Options) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Disable Badger's internal logging
	opts.ReadOnly = o.ReadOnly
	opts.CompactL0OnClose = !o.ReadOnly

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened", "path", path, "read_only", o.ReadOnly, "in_memory", o.InMemory)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing badger database")
	}
	return s.db.Close()
}

// Get returns the raw value stored under key. The boolean is false on a
// miss, including entries whose TTL has elapsed.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	k := buildKey(cachePrefix, key)
	defer releaseKey(k)

	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key. A positive ttl makes badger expire the entry.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Entries are retained by the transaction, so the key is not pooled.
	entry := badger.NewEntry([]byte(cachePrefix+key), value)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(cachePrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Idempotent
		}
		return err
	})
}

// CacheEntry describes one cached key without its value.
type CacheEntry struct {
	Key       string
	Size      int64
	ExpiresAt time.Time
}

// Entries iterates over cached keys starting with prefix. Expired entries
// are not returned.
func (s *Store) Entries(ctx context.Context, prefix string) iter.Seq2[CacheEntry, error] {
	return func(yield func(CacheEntry, error) bool) {
		full := []byte(cachePrefix + prefix)
		_ = s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = full
			opts.PrefetchValues = false

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(full); it.ValidForPrefix(full); it.Next() {
				if err := ctx.Err(); err != nil {
					yield(CacheEntry{}, err)
					return err
				}
				item := it.Item()
				entry := CacheEntry{
					Key:  string(item.Key()[len(cachePrefix):]),
					Size: item.ValueSize(),
				}
				if exp := item.ExpiresAt(); exp > 0 {
					entry.ExpiresAt = time.Unix(int64(exp), 0)
				}
				if !yield(entry, nil) {
					return nil // Consumer stopped early
				}
			}
			return nil
		})
	}
}

// RunGC reclaims space in the value log. It is safe to call periodically.
func (s *Store) RunGC() {
	for {
		if err := s.db.RunValueLogGC(0.5); err != nil {
			return
		}
	}
}
