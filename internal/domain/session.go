package domain

import (
	"math"
	"time"
)

type SessionState string

const (
	SessionActive    SessionState = "active"
	SessionPaused    SessionState = "paused"
	SessionCompleted SessionState = "completed"
)

type SessionType string

const (
	// SessionTimed is a normal session bounded by start and stop.
	SessionTimed SessionType = "timed"
	// SessionQuick records pages without timing; it is created
	// already completed and carries no duration.
	SessionQuick SessionType = "quick"
)

// ReadingSession is one attempt at reading a book. Completed sessions
// are immutable.
type ReadingSession struct {
	Record
	BookID    string       `json:"bookId"`
	State     SessionState `json:"state"`
	Type      SessionType  `json:"sessionType"`
	StartedAt time.Time    `json:"startedAt"`
	PausedAt  *time.Time   `json:"pausedAt,omitempty"`
	ResumedAt *time.Time   `json:"resumedAt,omitempty"`
	EndedAt   *time.Time   `json:"endedAt,omitempty"`
	StartPage int          `json:"startPage"`
	EndPage   *int         `json:"endPage,omitempty"`
	PagesRead int          `json:"pagesRead"`
	// DurationMinutes is computed at stop time. Nil for quick sessions.
	DurationMinutes *int   `json:"duration,omitempty"`
	Notes           string `json:"sessionNotes,omitempty"`
	// PlannedMinutes carries an optional pomodoro-style length hint.
	// Informational only; sessions never expire on their own.
	PlannedMinutes int `json:"pomodoroMinutes,omitempty"`
}

// IsOpen reports whether the session still counts against the one
// active-or-paused session per book invariant.
func (s *ReadingSession) IsOpen() bool {
	return s.State == SessionActive || s.State == SessionPaused
}

// MarkPaused transitions active → paused.
func (s *ReadingSession) MarkPaused(now time.Time) bool {
	if s.State != SessionActive {
		return false
	}
	s.State = SessionPaused
	s.PausedAt = &now
	return true
}

// MarkResumed transitions paused → active.
func (s *ReadingSession) MarkResumed(now time.Time) bool {
	if s.State != SessionPaused {
		return false
	}
	s.State = SessionActive
	s.ResumedAt = &now
	return true
}

// Complete transitions an open session to completed, computing the
// duration and pages read. A missing end page completes the session
// with zero pages recorded.
func (s *ReadingSession) Complete(now time.Time, endPage *int, notes string) bool {
	if !s.IsOpen() {
		return false
	}
	s.State = SessionCompleted
	s.EndedAt = &now
	if notes != "" {
		s.Notes = notes
	}

	minutes := s.elapsedMinutes(now)
	s.DurationMinutes = &minutes

	if endPage != nil {
		s.EndPage = endPage
		s.PagesRead = pagesBetween(s.StartPage, *endPage)
	}
	return true
}

// elapsedMinutes measures reading time from start to now, subtracting
// the single tracked pause interval. A session paused and never resumed
// stops accumulating time at the pause.
func (s *ReadingSession) elapsedMinutes(now time.Time) int {
	end := now
	if s.PausedAt != nil && s.ResumedAt == nil {
		end = *s.PausedAt
	}

	elapsed := end.Sub(s.StartedAt)
	if s.PausedAt != nil && s.ResumedAt != nil {
		elapsed -= s.ResumedAt.Sub(*s.PausedAt)
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return int(math.Round(elapsed.Minutes()))
}

func pagesBetween(start, end int) int {
	if end <= start {
		return 0
	}
	return end - start
}
