package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic CRUD operations for any domain type.
type Entity[T any] struct {
	store   *Store
	prefix  string
	indexes []Index[T]
}

// Index defines a secondary index on an entity. Index entries live
// under "<prefix>idx:<name>:<key>" and hold the entity ID.
type Index[T any] struct {
	name   string
	keyGen func(*T) []string
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{
		store:   s,
		prefix:  prefix,
		indexes: make([]Index[T], 0),
	}
}

// WithIndex adds a secondary index to the entity. keyGen may return
// multiple keys, or none to leave an entity out of the index.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:   name,
		keyGen: keyGen,
	})
	return e
}

// Prefix returns the key prefix for this entity.
func (e *Entity[T]) Prefix() string {
	return e.prefix
}

// Create creates a new entity with the given ID.
// Returns ErrAlreadyExists if an entity with this ID already exists.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := e.prefix + id

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		if err := txn.Set([]byte(key), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}

		for _, idx := range e.indexes {
			for _, indexKey := range idx.keyGen(entity) {
				idxKey := e.prefix + "idx:" + idx.name + ":" + indexKey
				if err := txn.Set([]byte(idxKey), []byte(id)); err != nil {
					return fmt.Errorf("failed to set index key: %w", err)
				}
			}
		}

		return nil
	})
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := e.prefix + id
	var entity T

	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
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

// GetByIndex retrieves an entity by secondary index.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	indexKey := []byte(e.prefix + "idx:" + indexName + ":" + value)

	var id string
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return e.Get(ctx, id)
}

// Update updates an existing entity, rewriting its index entries.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := e.prefix + id

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		var oldEntity T
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get existing key: %w", err)
		}

		err = item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &oldEntity); err != nil {
				return fmt.Errorf("failed to unmarshal old entity: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, idx := range e.indexes {
			for _, indexKey := range idx.keyGen(&oldEntity) {
				idxKey := e.prefix + "idx:" + idx.name + ":" + indexKey
				if err := txn.Delete([]byte(idxKey)); err != nil {
					return fmt.Errorf("failed to delete old index key: %w", err)
				}
			}
		}

		if err := txn.Set([]byte(key), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}

		for _, idx := range e.indexes {
			for _, indexKey := range idx.keyGen(entity) {
				idxKey := e.prefix + "idx:" + idx.name + ":" + indexKey
				if err := txn.Set([]byte(idxKey), []byte(id)); err != nil {
					return fmt.Errorf("failed to set index key: %w", err)
				}
			}
		}

		return nil
	})
}

// Delete deletes an entity by ID.
// This operation is idempotent, deleting a missing entity is not an error.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := e.prefix + id

	return e.store.db.Update(func(txn *badger.Txn) error {
		var entity T
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}

		err = item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entity); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, idx := range e.indexes {
			for _, indexKey := range idx.keyGen(&entity) {
				idxKey := e.prefix + "idx:" + idx.name + ":" + indexKey
				if err := txn.Delete([]byte(idxKey)); err != nil {
					return fmt.Errorf("failed to delete index key: %w", err)
				}
			}
		}

		if err := txn.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}

		return nil
	})
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				// Skip index keys
				key := string(it.Item().Key())
				if strings.HasPrefix(key[len(e.prefix):], "idx:") {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})

				if err != nil {
					yield(nil, err)
					return err
				}

				if !yield(&entity, nil) {
					return nil // Consumer stopped early
				}
			}

			return nil
		})
	}
}
