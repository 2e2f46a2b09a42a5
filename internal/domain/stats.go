package domain

import (
	"slices"
	"time"
)

// RollupDateLayout is the key format for daily rollups.
const RollupDateLayout = "2006-01-02"

// DailyRollup aggregates one calendar day of reading activity. Rollups
// are append-only accumulators; they survive book deletion so history
// charts stay stable.
type DailyRollup struct {
	Date      string    `json:"date"`
	Minutes   int       `json:"minutes"`
	Pages     int       `json:"pages"`
	Sessions  int       `json:"sessions"`
	BookIDs   []string  `json:"bookIds,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordSession folds a completed session into the day's totals.
func (r *DailyRollup) RecordSession(s *ReadingSession, now time.Time) {
	if s.DurationMinutes != nil {
		r.Minutes += *s.DurationMinutes
	}
	r.Pages += s.PagesRead
	r.Sessions++
	if !slices.Contains(r.BookIDs, s.BookID) {
		r.BookIDs = append(r.BookIDs, s.BookID)
	}
	r.UpdatedAt = now
}

type StatsPeriod string

const (
	PeriodDay   StatsPeriod = "day"
	PeriodWeek  StatsPeriod = "week"
	PeriodMonth StatsPeriod = "month"
	PeriodYear  StatsPeriod = "year"
	PeriodAll   StatsPeriod = "all"
)

func (p StatsPeriod) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return true
	}
	return false
}

// Bounds returns the half-open [from, to) interval the period covers,
// anchored at now. PeriodAll returns a zero from.
func (p StatsPeriod) Bounds(now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	switch p {
	case PeriodDay:
		return today, tomorrow
	case PeriodWeek:
		weekday := int(today.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		monday := today.AddDate(0, 0, -(weekday - 1))
		return monday, tomorrow
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), tomorrow
	case PeriodYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), tomorrow
	default:
		return time.Time{}, tomorrow
	}
}

// ReadingStats is the aggregate view over a period.
type ReadingStats struct {
	Period        StatsPeriod      `json:"period"`
	TotalMinutes  int              `json:"totalMinutes"`
	TotalPages    int              `json:"totalPages"`
	TotalSessions int              `json:"totalSessions"`
	BooksTouched  int              `json:"booksTouched"`
	Daily         []DailyRollup    `json:"daily"`
	Genres        map[string]int   `json:"genres,omitempty"`
	CurrentStreak int              `json:"currentStreak"`
	LongestStreak int              `json:"longestStreak"`
}

// ComputeStreaks derives current and longest consecutive-day streaks
// from the set of dates that saw reading activity. The current streak
// counts back from today, allowing yesterday as the anchor so a streak
// is not broken before today's reading happens.
func ComputeStreaks(dates []string, now time.Time) (current, longest int) {
	if len(dates) == 0 {
		return 0, 0
	}

	days := make(map[string]bool, len(dates))
	for _, d := range dates {
		days[d] = true
	}

	sorted := make([]string, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	slices.Sort(sorted)

	run := 1
	longest = 1
	for i := 1; i < len(sorted); i++ {
		prev, err1 := time.Parse(RollupDateLayout, sorted[i-1])
		curr, err2 := time.Parse(RollupDateLayout, sorted[i])
		if err1 != nil || err2 != nil {
			continue
		}
		if curr.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	anchor := now.Format(RollupDateLayout)
	if !days[anchor] {
		anchor = now.AddDate(0, 0, -1).Format(RollupDateLayout)
		if !days[anchor] {
			return 0, longest
		}
	}

	day, err := time.Parse(RollupDateLayout, anchor)
	if err != nil {
		return 0, longest
	}
	for days[day.Format(RollupDateLayout)] {
		current++
		day = day.AddDate(0, 0, -1)
	}
	return current, longest
}
