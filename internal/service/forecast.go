package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// ForecastService derives reading pace estimates from recent session
// history and keeps the per-book reading state cache current.
type ForecastService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewForecastService creates a new forecast service.
func NewForecastService(store *store.Store, logger *slog.Logger) *ForecastService {
	return &ForecastService{
		store:  store,
		logger: logger,
	}
}

// CalculateProgress recomputes the book's pace forecast from its most
// recent sessions, writes it into the reading state cache, and returns
// it. Runs after every completed timed session and on demand.
func (f *ForecastService) CalculateProgress(ctx context.Context, bookID string) (domain.Forecast, error) {
	book, err := f.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Forecast{}, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return domain.Forecast{}, fmt.Errorf("get book: %w", err)
	}

	sessions, err := f.store.GetBookSessions(ctx, bookID)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("get book sessions: %w", err)
	}

	now := time.Now()
	forecast := domain.CalculateForecast(sessions, book, now)

	state, err := f.store.GetReadingState(ctx, bookID)
	if err != nil {
		state = &domain.BookReadingState{BookID: bookID}
	}
	state.ApplyForecast(forecast, now)
	if err := f.store.SetReadingState(ctx, state); err != nil {
		return domain.Forecast{}, fmt.Errorf("update reading state: %w", err)
	}

	f.logger.Debug("recomputed reading forecast",
		"book_id", bookID,
		"pages_per_hour", forecast.AveragePagesPerHour,
		"valid_sessions", forecast.ValidSessions)

	return forecast, nil
}

// GetReadingState returns the book's cached reading state. Books with
// no session activity yet get an empty, unpersisted state.
func (f *ForecastService) GetReadingState(ctx context.Context, bookID string) (*domain.BookReadingState, error) {
	exists, err := f.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}

	state, err := f.store.GetReadingState(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &domain.BookReadingState{BookID: bookID}, nil
		}
		return nil, fmt.Errorf("get reading state: %w", err)
	}
	return state, nil
}
