package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// initSessions initializes the Sessions entity on the store.
// Indexed by book; index keys include the session ID so a book can
// hold many sessions.
func (s *Store) initSessions() {
	s.Sessions = NewEntity[domain.ReadingSession](s, sessionPrefix).
		WithIndex("book", func(session *domain.ReadingSession) []string {
			return []string{session.BookID + ":" + session.ID}
		})
}

// GetSession retrieves a reading session by ID.
// Returns ErrNotFound if the session does not exist.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.ReadingSession, error) {
	session, err := s.Sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	return session, nil
}

// CreateSession creates a new reading session.
// Returns ErrAlreadyExists if a session with this ID already exists.
func (s *Store) CreateSession(ctx context.Context, session *domain.ReadingSession) error {
	if err := s.Sessions.Create(ctx, session.ID, session); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return fmt.Errorf("session %s: %w", session.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("creating session %s: %w", session.ID, err)
	}
	return nil
}

// UpdateSession updates an existing reading session.
// Returns ErrNotFound if the session does not exist.
func (s *Store) UpdateSession(ctx context.Context, session *domain.ReadingSession) error {
	if err := s.Sessions.Update(ctx, session.ID, session); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("session %s: %w", session.ID, ErrNotFound)
		}
		return fmt.Errorf("updating session %s: %w", session.ID, err)
	}
	return nil
}

// DeleteSession deletes a reading session by ID.
// This operation is idempotent.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := s.Sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// GetBookSessions returns all sessions for a book, most recent first.
func (s *Store) GetBookSessions(ctx context.Context, bookID string) ([]*domain.ReadingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sessions, err := s.getSessionsWithIndexPrefix(ctx, bookID+":")
	if err != nil {
		return nil, fmt.Errorf("finding sessions for book %s: %w", bookID, err)
	}

	slices.SortFunc(sessions, func(a, b *domain.ReadingSession) int {
		return b.StartedAt.Compare(a.StartedAt)
	})

	return sessions, nil
}

// GetOpenSession returns the book's session in state active or paused,
// or nil when there is none. Multiple open sessions indicate a data
// integrity problem; the most recently updated one wins.
func (s *Store) GetOpenSession(ctx context.Context, bookID string) (*domain.ReadingSession, error) {
	sessions, err := s.GetBookSessions(ctx, bookID)
	if err != nil {
		return nil, err
	}

	var open []*domain.ReadingSession
	for _, session := range sessions {
		if session.IsOpen() {
			open = append(open, session)
		}
	}

	if len(open) == 0 {
		return nil, nil
	}

	if len(open) > 1 {
		if s.logger != nil {
			s.logger.Warn("multiple open sessions found for book",
				"book_id", bookID,
				"count", len(open))
		}

		mostRecent := open[0]
		for _, session := range open[1:] {
			if session.UpdatedAt.After(mostRecent.UpdatedAt) {
				mostRecent = session
			}
		}
		return mostRecent, nil
	}

	return open[0], nil
}

// GetRecentSessions returns sessions across all books sorted by
// StartedAt descending. Limit 0 returns everything.
func (s *Store) GetRecentSessions(ctx context.Context, limit int) ([]*domain.ReadingSession, error) {
	var sessions []*domain.ReadingSession
	for session, err := range s.Sessions.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("listing sessions: %w", err)
		}
		sessions = append(sessions, session)
	}

	slices.SortFunc(sessions, func(a, b *domain.ReadingSession) int {
		return b.StartedAt.Compare(a.StartedAt)
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	return sessions, nil
}

// getSessionsWithIndexPrefix retrieves all sessions whose book index
// entry starts with the given prefix.
func (s *Store) getSessionsWithIndexPrefix(ctx context.Context, prefix string) ([]*domain.ReadingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	indexPrefix := []byte(sessionPrefix + "idx:book:" + prefix)
	var sessions []*domain.ReadingSession

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = indexPrefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			var sessionID string
			err := it.Item().Value(func(val []byte) error {
				sessionID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			session, err := s.Sessions.Get(ctx, sessionID)
			if err != nil {
				// Skip if the session vanished (index cleanup issue)
				if errors.Is(err, ErrNotFound) {
					continue
				}
				return err
			}

			sessions = append(sessions, session)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return sessions, nil
}
