package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// initNotes initializes the Notes entity on the store, indexed by book.
func (s *Store) initNotes() {
	s.Notes = NewEntity[domain.BookNote](s, notePrefix).
		WithIndex("book", func(note *domain.BookNote) []string {
			return []string{note.BookID + ":" + note.ID}
		})
}

// CreateNote creates a new note.
func (s *Store) CreateNote(ctx context.Context, note *domain.BookNote) error {
	if err := s.Notes.Create(ctx, note.ID, note); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return fmt.Errorf("note %s: %w", note.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("creating note %s: %w", note.ID, err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.IndexNote(ctx, note); err != nil && s.logger != nil {
			s.logger.Warn("failed to index note", "note_id", note.ID, "error", err)
		}
	}
	return nil
}

// GetNote retrieves a note by ID.
// Returns ErrNotFound if the note does not exist.
func (s *Store) GetNote(ctx context.Context, id string) (*domain.BookNote, error) {
	note, err := s.Notes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting note %s: %w", id, err)
	}
	return note, nil
}

// UpdateNote updates an existing note.
func (s *Store) UpdateNote(ctx context.Context, note *domain.BookNote) error {
	if err := s.Notes.Update(ctx, note.ID, note); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("note %s: %w", note.ID, ErrNotFound)
		}
		return fmt.Errorf("updating note %s: %w", note.ID, err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.IndexNote(ctx, note); err != nil && s.logger != nil {
			s.logger.Warn("failed to reindex note", "note_id", note.ID, "error", err)
		}
	}
	return nil
}

// DeleteNote deletes a note by ID.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	exists, err := s.exists([]byte(notePrefix + id))
	if err != nil {
		return fmt.Errorf("checking note %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}

	if err := s.Notes.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting note %s: %w", id, err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteNote(ctx, id); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove note from index", "note_id", id, "error", err)
		}
	}
	return nil
}

// GetBookNotes returns all notes for a book, newest first.
func (s *Store) GetBookNotes(ctx context.Context, bookID string) ([]*domain.BookNote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	indexPrefix := []byte(notePrefix + "idx:book:" + bookID + ":")
	var notes []*domain.BookNote

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = indexPrefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			var noteID string
			err := it.Item().Value(func(val []byte) error {
				noteID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			note, err := s.Notes.Get(ctx, noteID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					continue
				}
				return err
			}

			notes = append(notes, note)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("finding notes for book %s: %w", bookID, err)
	}

	slices.SortFunc(notes, func(a, b *domain.BookNote) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return notes, nil
}
