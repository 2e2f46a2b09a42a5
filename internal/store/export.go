package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// ExportDocument is the full-library snapshot format: one JSON
// document of dictionaries keyed by entity ID.
type ExportDocument struct {
	Version       int                                  `json:"version"`
	ExportedAt    time.Time                            `json:"exportedAt"`
	Books         map[string]*domain.Book              `json:"books"`
	Sessions      map[string]*domain.ReadingSession    `json:"sessions"`
	Notes         map[string]*domain.BookNote          `json:"notes"`
	ReadingStates map[string]*domain.BookReadingState  `json:"readingStates"`
	DailyRollups  map[string]*domain.DailyRollup       `json:"dailyRollups"`
}

// exportVersion guards against importing documents from a future
// incompatible format.
const exportVersion = 1

// Snapshot collects the whole library into an export document.
func (s *Store) Snapshot(ctx context.Context) (*ExportDocument, error) {
	doc := &ExportDocument{
		Version:       exportVersion,
		ExportedAt:    time.Now().UTC(),
		Books:         make(map[string]*domain.Book),
		Sessions:      make(map[string]*domain.ReadingSession),
		Notes:         make(map[string]*domain.BookNote),
		ReadingStates: make(map[string]*domain.BookReadingState),
		DailyRollups:  make(map[string]*domain.DailyRollup),
	}

	for book, err := range s.Books.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("exporting books: %w", err)
		}
		doc.Books[book.ID] = book
	}

	for session, err := range s.Sessions.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("exporting sessions: %w", err)
		}
		doc.Sessions[session.ID] = session
	}

	for note, err := range s.Notes.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("exporting notes: %w", err)
		}
		doc.Notes[note.ID] = note
	}

	states, err := s.ListReadingStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting reading states: %w", err)
	}
	for _, state := range states {
		doc.ReadingStates[state.BookID] = state
	}

	rollups, err := s.ListRollups(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("exporting rollups: %w", err)
	}
	for _, rollup := range rollups {
		doc.DailyRollups[rollup.Date] = rollup
	}

	return doc, nil
}

// Import merges an export document into the store. Existing entities
// with matching IDs are overwritten; everything else is left alone.
func (s *Store) Import(ctx context.Context, doc *ExportDocument) error {
	if doc.Version > exportVersion {
		return ErrInvalidInput.WithMessage(fmt.Sprintf("unsupported export version %d", doc.Version))
	}

	for id, book := range doc.Books {
		book.ID = id
		if err := importEntity(ctx, s.Books, id, book); err != nil {
			return fmt.Errorf("importing book %s: %w", id, err)
		}
		if s.searchIndexer != nil {
			if err := s.searchIndexer.IndexBook(ctx, book); err != nil && s.logger != nil {
				s.logger.Warn("failed to index imported book", "book_id", id, "error", err)
			}
		}
	}

	for id, session := range doc.Sessions {
		session.ID = id
		if err := importEntity(ctx, s.Sessions, id, session); err != nil {
			return fmt.Errorf("importing session %s: %w", id, err)
		}
	}

	for id, note := range doc.Notes {
		note.ID = id
		if err := importEntity(ctx, s.Notes, id, note); err != nil {
			return fmt.Errorf("importing note %s: %w", id, err)
		}
	}

	for bookID, state := range doc.ReadingStates {
		state.BookID = bookID
		if err := s.SetReadingState(ctx, state); err != nil {
			return err
		}
	}

	for date, rollup := range doc.DailyRollups {
		rollup.Date = date
		if err := s.SetRollup(ctx, rollup); err != nil {
			return err
		}
	}

	return nil
}

// importEntity upserts: update when present, create otherwise.
func importEntity[T any](ctx context.Context, entity *Entity[T], id string, value *T) error {
	err := entity.Update(ctx, id, value)
	if err == nil {
		return nil
	}
	return entity.Create(ctx, id, value)
}
