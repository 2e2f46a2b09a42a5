// Package store persists all PageTurn state in an embedded Badger
// database. Values are JSON encoded; secondary indexes map lookup keys
// to entity IDs under an idx: sub-prefix.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// Key prefixes for each entity family.
const (
	bookPrefix    = "book:"
	sessionPrefix = "session:"
	notePrefix    = "note:"
	statePrefix   = "rstate:"
	rollupPrefix  = "rollup:"
)

// SearchIndexer keeps the local search index in sync with store
// changes without the store depending on the search implementation.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
	IndexNote(ctx context.Context, note *domain.BookNote) error
	DeleteNote(ctx context.Context, noteID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error     { return nil }
func (NoopSearchIndexer) DeleteBook(context.Context, string) error          { return nil }
func (NoopSearchIndexer) IndexNote(context.Context, *domain.BookNote) error { return nil }
func (NoopSearchIndexer) DeleteNote(context.Context, string) error          { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular
	// dependencies.
	searchIndexer SearchIndexer

	// Generic entities
	Books    *Entity[domain.Book]
	Sessions *Entity[domain.ReadingSession]
	Notes    *Entity[domain.BookNote]
}

// New creates a file-backed Store at the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	store, err := open(opts, logger)
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}
	return store, nil
}

// NewInMemory creates a Store with no backing files. Data is lost on
// close. This is the second repository implementation; tests and the
// memory storage backend both use it.
func NewInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.initBooks()
	store.initSessions()
	store.initNotes()

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// Set after store creation because the search service needs a store to
// be built against first.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
