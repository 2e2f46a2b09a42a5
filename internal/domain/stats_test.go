package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailyRollup_RecordSession(t *testing.T) {
	now := time.Now().UTC()
	minutes := 40

	rollup := &DailyRollup{Date: now.Format(RollupDateLayout)}
	rollup.RecordSession(&ReadingSession{BookID: "book-1", PagesRead: 25, DurationMinutes: &minutes}, now)
	rollup.RecordSession(&ReadingSession{BookID: "book-1", PagesRead: 10, Type: SessionQuick}, now)
	rollup.RecordSession(&ReadingSession{BookID: "book-2", PagesRead: 5, DurationMinutes: &minutes}, now)

	assert.Equal(t, 80, rollup.Minutes, "quick sessions carry no duration")
	assert.Equal(t, 40, rollup.Pages)
	assert.Equal(t, 3, rollup.Sessions)
	assert.ElementsMatch(t, []string{"book-1", "book-2"}, rollup.BookIDs)
}

func TestStatsPeriod_Bounds(t *testing.T) {
	// A Wednesday.
	now := time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC)

	t.Run("day", func(t *testing.T) {
		from, to := PeriodDay.Bounds(now)
		assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), to)
	})

	t.Run("week starts monday", func(t *testing.T) {
		from, _ := PeriodWeek.Bounds(now)
		assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), from)

		sunday := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		from, _ = PeriodWeek.Bounds(sunday)
		assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), from)
	})

	t.Run("month and year", func(t *testing.T) {
		from, _ := PeriodMonth.Bounds(now)
		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), from)

		from, _ = PeriodYear.Bounds(now)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), from)
	})

	t.Run("all has an open start", func(t *testing.T) {
		from, to := PeriodAll.Bounds(now)
		assert.True(t, from.IsZero())
		assert.Equal(t, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), to)
	})
}

func TestComputeStreaks(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	t.Run("empty history", func(t *testing.T) {
		current, longest := ComputeStreaks(nil, now)
		assert.Equal(t, 0, current)
		assert.Equal(t, 0, longest)
	})

	t.Run("streak anchored on today", func(t *testing.T) {
		current, longest := ComputeStreaks([]string{"2026-08-24", "2026-08-25", "2026-08-26"}, now)
		assert.Equal(t, 3, current)
		assert.Equal(t, 3, longest)
	})

	t.Run("yesterday keeps the streak alive", func(t *testing.T) {
		current, _ := ComputeStreaks([]string{"2026-08-24", "2026-08-25"}, now)
		assert.Equal(t, 2, current)
	})

	t.Run("a gap before yesterday breaks the current streak", func(t *testing.T) {
		current, longest := ComputeStreaks([]string{"2026-08-20", "2026-08-21", "2026-08-22"}, now)
		assert.Equal(t, 0, current)
		assert.Equal(t, 3, longest)
	})

	t.Run("longest run is found across gaps", func(t *testing.T) {
		dates := []string{
			"2026-08-01", "2026-08-02", "2026-08-03", "2026-08-04",
			"2026-08-10", "2026-08-11",
			"2026-08-26",
		}
		current, longest := ComputeStreaks(dates, now)
		assert.Equal(t, 1, current)
		assert.Equal(t, 4, longest)
	})

	t.Run("duplicate dates collapse", func(t *testing.T) {
		current, longest := ComputeStreaks([]string{"2026-08-26", "2026-08-26"}, now)
		assert.Equal(t, 1, current)
		assert.Equal(t, 1, longest)
	})
}
