package domain

import (
	"math"
	"time"
)

// forecastWindow bounds how many recent sessions feed the pace
// estimate, keeping recomputation cheap regardless of history size.
const forecastWindow = 5

// dailySessionHours models a nominal 30 minute daily reading session
// when deriving the daily page target from the hourly pace.
const dailySessionHours = 0.5

// BookReadingState is a per-book materialized view of session and
// forecast data. It holds nothing that cannot be rederived from the
// session history and exists only to avoid recomputing on every read.
type BookReadingState struct {
	BookID              string     `json:"bookId"`
	ActiveSessionID     string     `json:"activeSessionId,omitempty"`
	LastSessionAt       *time.Time `json:"lastSessionAt,omitempty"`
	AveragePagesPerHour float64    `json:"averagePagesPerHour"`
	RecentSessionsCount int        `json:"recentSessionsCount"`
	DailyPageTarget     int        `json:"dailyPageTarget,omitempty"`
	EstimatedFinishDate *time.Time `json:"estimatedFinishDate,omitempty"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Forecast is the pace estimate derived from recent session history.
type Forecast struct {
	AveragePagesPerHour float64    `json:"averagePagesPerHour"`
	ETA                 *time.Time `json:"eta,omitempty"`
	DailyTarget         int        `json:"dailyTarget"`
	ValidSessions       int        `json:"-"`
}

// CalculateForecast derives pace, ETA, and a daily page target from a
// book's session history. Sessions must be ordered most recent first;
// only the newest few are considered, and of those only sessions with a
// positive duration and pages actually read contribute to the pace.
func CalculateForecast(sessions []*ReadingSession, book *Book, now time.Time) Forecast {
	window := sessions
	if len(window) > forecastWindow {
		window = window[:forecastWindow]
	}

	var totalPages int
	var totalHours float64
	var valid int
	for _, s := range window {
		if s.DurationMinutes == nil || *s.DurationMinutes <= 0 || s.PagesRead == 0 {
			continue
		}
		totalPages += s.PagesRead
		totalHours += float64(*s.DurationMinutes) / 60
		valid++
	}

	var pph float64
	if totalHours > 0 {
		pph = float64(totalPages) / totalHours
	}

	forecast := Forecast{
		AveragePagesPerHour: pph,
		DailyTarget:         dailyTarget(pph),
		ValidSessions:       valid,
	}

	if book != nil && book.TotalPages > 0 && pph > 0 {
		hoursLeft := float64(book.RemainingPages()) / pph
		eta := now.Add(time.Duration(hoursLeft * float64(time.Hour)))
		forecast.ETA = &eta
	}

	return forecast
}

func dailyTarget(pph float64) int {
	target := int(math.Round(pph * dailySessionHours))
	if target < 1 {
		return 1
	}
	return target
}

// ApplyForecast writes a freshly computed forecast into the state.
func (st *BookReadingState) ApplyForecast(f Forecast, now time.Time) {
	st.AveragePagesPerHour = f.AveragePagesPerHour
	st.RecentSessionsCount = f.ValidSessions
	st.DailyPageTarget = f.DailyTarget
	st.EstimatedFinishDate = f.ETA
	st.UpdatedAt = now
}
