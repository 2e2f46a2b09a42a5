package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/genre"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// StatsService aggregates daily rollups into period views with streaks
// and genre breakdowns.
type StatsService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(store *store.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		logger: logger,
	}
}

// GetStats returns aggregate reading stats for a period. Streaks are
// always computed over the full history regardless of the period, so
// the current streak survives switching the dashboard to a day view.
func (s *StatsService) GetStats(ctx context.Context, period domain.StatsPeriod) (*domain.ReadingStats, error) {
	if period == "" {
		period = domain.PeriodWeek
	}
	if !period.Valid() {
		return nil, domainerrors.Validationf("invalid stats period %q", period)
	}

	now := time.Now()
	from, to := period.Bounds(now)

	rollups, err := s.store.ListRollups(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list rollups: %w", err)
	}

	stats := &domain.ReadingStats{
		Period: period,
		Daily:  make([]domain.DailyRollup, 0, len(rollups)),
	}

	bookIDs := make(map[string]bool)
	for _, rollup := range rollups {
		stats.TotalMinutes += rollup.Minutes
		stats.TotalPages += rollup.Pages
		stats.TotalSessions += rollup.Sessions
		for _, id := range rollup.BookIDs {
			bookIDs[id] = true
		}
		stats.Daily = append(stats.Daily, *rollup)
	}
	stats.BooksTouched = len(bookIDs)

	stats.Genres, err = s.genreBreakdown(ctx, bookIDs)
	if err != nil {
		return nil, err
	}

	allRollups := rollups
	if period != domain.PeriodAll {
		allRollups, err = s.store.ListRollups(ctx, time.Time{}, to)
		if err != nil {
			return nil, fmt.Errorf("list rollups for streaks: %w", err)
		}
	}
	dates := make([]string, 0, len(allRollups))
	for _, rollup := range allRollups {
		dates = append(dates, rollup.Date)
	}
	stats.CurrentStreak, stats.LongestStreak = domain.ComputeStreaks(dates, now)

	return stats, nil
}

// genreBreakdown counts sessions-touched books per genre slug. Books
// deleted since their sessions ran are skipped; their rollup totals
// still count.
func (s *StatsService) genreBreakdown(ctx context.Context, bookIDs map[string]bool) (map[string]int, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}

	genres := make(map[string]int)
	for bookID := range bookIDs {
		book, err := s.store.GetBook(ctx, bookID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get book %s: %w", bookID, err)
		}
		if book.Genre == "" {
			continue
		}
		genres[genre.Slugify(book.Genre)]++
	}

	if len(genres) == 0 {
		return nil, nil
	}
	return genres, nil
}
