package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/store"
	"github.com/pageturnapp/pageturn-server/internal/validation"
)

// SessionService drives the reading session state machine:
// start → pause ⇄ resume → stop, plus one-shot quick page logs.
type SessionService struct {
	store    *store.Store
	forecast *ForecastService
	validate *validation.Validator
	logger   *slog.Logger

	// bookLocks serializes the check-then-act around the one
	// open-session-per-book invariant.
	mu        sync.Mutex
	bookLocks map[string]*sync.Mutex
}

// NewSessionService creates a new session service.
func NewSessionService(store *store.Store, forecast *ForecastService, validate *validation.Validator, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:     store,
		forecast:  forecast,
		validate:  validate,
		logger:    logger,
		bookLocks: make(map[string]*sync.Mutex),
	}
}

// lockBook acquires the per-book mutex and returns its unlock func.
func (s *SessionService) lockBook(bookID string) func() {
	s.mu.Lock()
	lock, ok := s.bookLocks[bookID]
	if !ok {
		lock = &sync.Mutex{}
		s.bookLocks[bookID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// StartSessionInput describes a request to start a timed session.
type StartSessionInput struct {
	BookID          string `json:"bookId" validate:"required"`
	StartPage       *int   `json:"startPage,omitempty" validate:"omitempty,min=0"`
	PomodoroMinutes int    `json:"pomodoroMinutes,omitempty" validate:"omitempty,min=1,max=480"`
}

// Start begins a timed session for a book. At most one session per book
// may be open at a time; starting while one exists is a conflict.
func (s *SessionService) Start(ctx context.Context, input StartSessionInput) (*domain.ReadingSession, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	unlock := s.lockBook(input.BookID)
	defer unlock()

	book, err := s.store.GetBook(ctx, input.BookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", input.BookID)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	open, err := s.store.GetOpenSession(ctx, input.BookID)
	if err != nil {
		return nil, fmt.Errorf("get open session: %w", err)
	}
	if open != nil {
		return nil, domainerrors.Conflictf("book %s already has an active reading session", input.BookID)
	}

	now := time.Now()

	startPage, err := s.resolveStartPage(ctx, book, input.StartPage)
	if err != nil {
		return nil, err
	}

	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	session := &domain.ReadingSession{
		BookID:         input.BookID,
		State:          domain.SessionActive,
		Type:           domain.SessionTimed,
		StartedAt:      now,
		StartPage:      startPage,
		PlannedMinutes: input.PomodoroMinutes,
	}
	session.ID = sessionID
	session.InitTimestamps()

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	book.MarkReading(now)
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	state := s.loadOrNewState(ctx, input.BookID)
	state.ActiveSessionID = sessionID
	state.LastSessionAt = &now
	state.UpdatedAt = now
	if err := s.store.SetReadingState(ctx, state); err != nil {
		return nil, fmt.Errorf("update reading state: %w", err)
	}

	s.logger.Info("started reading session",
		"session_id", sessionID,
		"book_id", input.BookID,
		"start_page", startPage)

	return session, nil
}

// resolveStartPage picks the starting page for a new session: explicit
// value, then the end page of the most recent session, then the book's
// current page, then 0.
func (s *SessionService) resolveStartPage(ctx context.Context, book *domain.Book, explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}

	sessions, err := s.store.GetBookSessions(ctx, book.ID)
	if err != nil {
		return 0, fmt.Errorf("get book sessions: %w", err)
	}
	if len(sessions) > 0 && sessions[0].EndPage != nil {
		return *sessions[0].EndPage, nil
	}

	if book.CurrentPage > 0 {
		return book.CurrentPage, nil
	}
	return 0, nil
}

// Pause suspends an active session. A missing session and a session in
// the wrong state fail the same way; callers cannot tell them apart.
func (s *SessionService) Pause(ctx context.Context, sessionID string) (*domain.ReadingSession, error) {
	session, err := s.getOpenForTransition(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.MarkPaused(time.Now()) {
		return nil, errSessionNotTransitionable(sessionID)
	}
	session.Touch()

	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.logger.Debug("paused reading session", "session_id", sessionID, "book_id", session.BookID)
	return session, nil
}

// Resume reactivates a paused session. Only one pause interval is
// tracked per session; a second pause after resuming overwrites the
// timestamps and the first interval is lost.
func (s *SessionService) Resume(ctx context.Context, sessionID string) (*domain.ReadingSession, error) {
	session, err := s.getOpenForTransition(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.MarkResumed(time.Now()) {
		return nil, errSessionNotTransitionable(sessionID)
	}
	session.Touch()

	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.logger.Debug("resumed reading session", "session_id", sessionID, "book_id", session.BookID)
	return session, nil
}

// StopSessionInput describes a request to complete an open session.
type StopSessionInput struct {
	EndPage      *int   `json:"endPage,omitempty" validate:"omitempty,min=0"`
	SessionNotes string `json:"sessionNotes,omitempty" validate:"omitempty,max=2000"`
}

// Stop completes an open session. The end page is optional; stopping
// without one records zero pages but still completes the session. Book
// progress, the reading state cache, the pace forecast, and the daily
// rollup are all updated before returning.
func (s *SessionService) Stop(ctx context.Context, sessionID string, input StopSessionInput) (*domain.ReadingSession, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	// The book id is needed to pick the lock, so the session is loaded
	// once before locking and again after, in case a concurrent stop
	// completed it in between.
	session, err := s.getOpenForTransition(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockBook(session.BookID)
	defer unlock()

	session, err = s.getOpenForTransition(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !session.Complete(now, input.EndPage, input.SessionNotes) {
		return nil, errSessionNotTransitionable(sessionID)
	}
	session.Touch()

	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	book, err := s.store.GetBook(ctx, session.BookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if session.EndPage != nil {
		book.ApplyPage(*session.EndPage, now)
	} else {
		book.LastReadAt = &now
	}
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	state := s.loadOrNewState(ctx, session.BookID)
	state.ActiveSessionID = ""
	state.LastSessionAt = &now
	state.UpdatedAt = now
	if err := s.store.SetReadingState(ctx, state); err != nil {
		return nil, fmt.Errorf("update reading state: %w", err)
	}

	if _, err := s.forecast.CalculateProgress(ctx, session.BookID); err != nil {
		s.logger.Warn("forecast recompute failed",
			"book_id", session.BookID,
			"error", err)
	}

	if err := s.store.RecordSessionRollup(ctx, session, now); err != nil {
		s.logger.Warn("daily rollup update failed",
			"session_id", sessionID,
			"error", err)
	}

	s.logger.Info("stopped reading session",
		"session_id", sessionID,
		"book_id", session.BookID,
		"pages_read", session.PagesRead,
		"duration_minutes", *session.DurationMinutes)

	return session, nil
}

// QuickAddInput describes a one-shot page log without timing.
type QuickAddInput struct {
	BookID       string `json:"bookId" validate:"required"`
	PagesRead    int    `json:"pagesRead" minimum:"1" maximum:"100" validate:"required,min=1,max=100"`
	SessionNotes string `json:"sessionNotes,omitempty" validate:"omitempty,max=2000"`
}

// QuickAdd records pages read without a timed session. The session is
// created already completed with no duration. Quick adds do not check
// for an open timed session, so the two can overlap.
func (s *SessionService) QuickAdd(ctx context.Context, input QuickAddInput) (*domain.ReadingSession, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	unlock := s.lockBook(input.BookID)
	defer unlock()

	book, err := s.store.GetBook(ctx, input.BookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", input.BookID)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	now := time.Now()
	startPage := book.CurrentPage
	endPage := startPage + input.PagesRead

	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	session := &domain.ReadingSession{
		BookID:    input.BookID,
		State:     domain.SessionCompleted,
		Type:      domain.SessionQuick,
		StartedAt: now,
		EndedAt:   &now,
		StartPage: startPage,
		EndPage:   &endPage,
		PagesRead: input.PagesRead,
		Notes:     input.SessionNotes,
	}
	session.ID = sessionID
	session.InitTimestamps()

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	book.ApplyPage(endPage, now)
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	state := s.loadOrNewState(ctx, input.BookID)
	state.LastSessionAt = &now
	state.UpdatedAt = now
	if err := s.store.SetReadingState(ctx, state); err != nil {
		return nil, fmt.Errorf("update reading state: %w", err)
	}

	if err := s.store.RecordSessionRollup(ctx, session, now); err != nil {
		s.logger.Warn("daily rollup update failed",
			"session_id", sessionID,
			"error", err)
	}

	s.logger.Info("quick-added pages",
		"session_id", sessionID,
		"book_id", input.BookID,
		"pages_read", input.PagesRead)

	return session, nil
}

// GetSession retrieves a session by ID.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*domain.ReadingSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("session %s not found", sessionID)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// ListBookSessions returns a book's sessions, most recent first.
func (s *SessionService) ListBookSessions(ctx context.Context, bookID string) ([]*domain.ReadingSession, error) {
	exists, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	return s.store.GetBookSessions(ctx, bookID)
}

// ListRecentSessions returns sessions across all books, most recent
// first. Limit 0 returns everything.
func (s *SessionService) ListRecentSessions(ctx context.Context, limit int) ([]*domain.ReadingSession, error) {
	return s.store.GetRecentSessions(ctx, limit)
}

// DeleteSession removes a session record. Completed sessions already
// folded into book progress and rollups stay folded in; deletion is
// bookkeeping only. Deleting an open session clears the book's active
// session marker.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("session %s not found", sessionID)
		}
		return fmt.Errorf("get session: %w", err)
	}

	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if session.IsOpen() {
		state := s.loadOrNewState(ctx, session.BookID)
		if state.ActiveSessionID == sessionID {
			state.ActiveSessionID = ""
			state.UpdatedAt = time.Now()
			if err := s.store.SetReadingState(ctx, state); err != nil {
				s.logger.Warn("failed to clear active session marker",
					"session_id", sessionID,
					"book_id", session.BookID,
					"error", err)
			}
		}
	}

	return nil
}

// getOpenForTransition loads a session for a state transition. Missing
// sessions and sessions in a non-transitionable state produce the same
// error on purpose; the API does not distinguish them.
func (s *SessionService) getOpenForTransition(ctx context.Context, sessionID string) (*domain.ReadingSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errSessionNotTransitionable(sessionID)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !session.IsOpen() {
		return nil, errSessionNotTransitionable(sessionID)
	}
	return session, nil
}

func errSessionNotTransitionable(sessionID string) error {
	return domainerrors.NotFoundf("session %s not found or not in a valid state", sessionID)
}

// loadOrNewState returns the book's cached reading state, creating a
// fresh one on first session activity.
func (s *SessionService) loadOrNewState(ctx context.Context, bookID string) *domain.BookReadingState {
	state, err := s.store.GetReadingState(ctx, bookID)
	if err != nil {
		return &domain.BookReadingState{BookID: bookID}
	}
	return state
}
