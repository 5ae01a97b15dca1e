package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides keyed JSON persistence for one record type.
type Entity[T any] struct {
	store  *Store
	prefix string
	ttl    time.Duration
}

// NewEntity creates an Entity whose keys live under prefix.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{store: s, prefix: prefix}
}

// WithTTL makes every Put expire after ttl. Zero keeps records forever.
func (e *Entity[T]) WithTTL(ttl time.Duration) *Entity[T] {
	e.ttl = ttl
	return e
}

// Get retrieves a record by ID.
// Returns ErrNotFound if the record does not exist or has expired.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrInvalidID
	}

	key := buildKey(e.prefix, id)
	defer releaseKey(key)

	var entity T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entity); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &entity, nil
}

// Put creates or replaces the record stored under id.
func (e *Entity[T]) Put(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return ErrInvalidID
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	entry := badger.NewEntry([]byte(e.prefix+id), data)
	if e.ttl > 0 {
		entry = entry.WithTTL(e.ttl)
	}
	return e.store.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

// Delete removes the record. Deleting a missing record is not an error.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(e.prefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// List returns an iterator over all records, keyed by ID.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[string, *T] {
	return func(yield func(string, *T) bool) {
		prefix := []byte(e.prefix)
		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					// Skip records written by an incompatible version.
					continue
				}

				id := string(it.Item().Key()[len(prefix):])
				if !yield(id, &entity) {
					return nil // Consumer stopped early
				}
			}
			return nil
		})
	}
}
