package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// Reading states are keyed by book ID directly; there is exactly one
// per book and it is always looked up by its owner.

// GetReadingState retrieves the cached reading state for a book.
// Returns ErrNotFound when no session activity has created one yet.
func (s *Store) GetReadingState(ctx context.Context, bookID string) (*domain.BookReadingState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var state domain.BookReadingState
	err := s.get([]byte(statePrefix+bookID), &state)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("reading state for book %s: %w", bookID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting reading state for book %s: %w", bookID, err)
	}
	return &state, nil
}

// SetReadingState overwrites the cached reading state for a book.
func (s *Store) SetReadingState(ctx context.Context, state *domain.BookReadingState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if state.BookID == "" {
		return ErrInvalidInput.WithMessage("reading state requires a book id")
	}

	if err := s.set([]byte(statePrefix+state.BookID), state); err != nil {
		return fmt.Errorf("setting reading state for book %s: %w", state.BookID, err)
	}
	return nil
}

// DeleteReadingState removes a book's cached reading state. Idempotent.
func (s *Store) DeleteReadingState(ctx context.Context, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.delete([]byte(statePrefix + bookID)); err != nil {
		return fmt.Errorf("deleting reading state for book %s: %w", bookID, err)
	}
	return nil
}

// ListReadingStates returns every cached reading state. Used by export.
func (s *Store) ListReadingStates(ctx context.Context) ([]*domain.BookReadingState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(statePrefix)
	var states []*domain.BookReadingState

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var state domain.BookReadingState
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &state)
			})
			if err != nil {
				return err
			}
			states = append(states, &state)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing reading states: %w", err)
	}

	return states, nil
}
