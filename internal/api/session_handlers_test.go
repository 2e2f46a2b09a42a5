package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

func TestSessionLifecycle(t *testing.T) {
	ts := setupTestAPI(t)
	bookID := ts.createTestBook(t, "Lifecycle", 200)

	// Start.
	resp := ts.api.Post("/api/v1/sessions/start", map[string]any{"bookId": bookID})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	envelope := decodeBody[domain.ReadingSession](t, resp)
	sessionID := envelope.Data.ID
	require.NotEmpty(t, sessionID)
	assert.Equal(t, domain.SessionActive, envelope.Data.State)

	// Starting a second session on the same book conflicts.
	resp = ts.api.Post("/api/v1/sessions/start", map[string]any{"bookId": bookID})
	require.Equal(t, http.StatusConflict, resp.Code)
	conflictEnvelope := decodeBody[any](t, resp)
	require.NotNil(t, conflictEnvelope.Error)
	assert.Equal(t, "CONFLICT", conflictEnvelope.Error.Code)

	// Pause and resume.
	resp = ts.api.Post("/api/v1/sessions/"+sessionID+"/pause")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	envelope = decodeBody[domain.ReadingSession](t, resp)
	assert.Equal(t, domain.SessionPaused, envelope.Data.State)

	resp = ts.api.Post("/api/v1/sessions/"+sessionID+"/resume")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope = decodeBody[domain.ReadingSession](t, resp)
	assert.Equal(t, domain.SessionActive, envelope.Data.State)

	// Stop with an end page.
	resp = ts.api.Post("/api/v1/sessions/"+sessionID+"/stop", map[string]any{"endPage": 60})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	envelope = decodeBody[domain.ReadingSession](t, resp)
	assert.Equal(t, domain.SessionCompleted, envelope.Data.State)
	assert.Equal(t, 60, envelope.Data.PagesRead)

	// Book progress follows the stop.
	resp = ts.api.Get("/api/v1/books/" + bookID)
	require.Equal(t, http.StatusOK, resp.Code)
	bookEnvelope := decodeBody[domain.Book](t, resp)
	assert.Equal(t, 60, bookEnvelope.Data.CurrentPage)
	assert.Equal(t, domain.StatusReading, bookEnvelope.Data.Status)

	// A new session can start now that the first one is done.
	resp = ts.api.Post("/api/v1/sessions/start", map[string]any{"bookId": bookID})
	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestSessionTransitionNotFound(t *testing.T) {
	ts := setupTestAPI(t)

	for _, action := range []string{"pause", "resume", "stop"} {
		resp := ts.api.Post("/api/v1/sessions/rsession-missing/"+action, map[string]any{})
		assert.Equal(t, http.StatusNotFound, resp.Code, "action %s", action)

		envelope := decodeBody[any](t, resp)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
	}
}

func TestStartSessionMissingBook(t *testing.T) {
	ts := setupTestAPI(t)

	resp := ts.api.Post("/api/v1/sessions/start", map[string]any{"bookId": "book-missing"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestQuickAdd(t *testing.T) {
	ts := setupTestAPI(t)
	bookID := ts.createTestBook(t, "Quick", 300)

	resp := ts.api.Post("/api/v1/sessions/quick-add", map[string]any{
		"bookId":    bookID,
		"pagesRead": 40,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	envelope := decodeBody[domain.ReadingSession](t, resp)
	assert.Equal(t, domain.SessionCompleted, envelope.Data.State)
	assert.Equal(t, 40, envelope.Data.PagesRead)
	assert.Nil(t, envelope.Data.DurationMinutes)

	resp = ts.api.Get("/api/v1/books/" + bookID)
	bookEnvelope := decodeBody[domain.Book](t, resp)
	assert.Equal(t, 40, bookEnvelope.Data.CurrentPage)
}

func TestQuickAddPagesOutOfRange(t *testing.T) {
	ts := setupTestAPI(t)
	bookID := ts.createTestBook(t, "Quick", 300)

	for _, pages := range []int{0, 101} {
		resp := ts.api.Post("/api/v1/sessions/quick-add", map[string]any{
			"bookId":    bookID,
			"pagesRead": pages,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code, "pages %d", pages)
	}
}

func TestQuickAddMissingBook(t *testing.T) {
	ts := setupTestAPI(t)

	resp := ts.api.Post("/api/v1/sessions/quick-add", map[string]any{
		"bookId":    "book-missing",
		"pagesRead": 10,
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListRecentSessions(t *testing.T) {
	ts := setupTestAPI(t)
	bookID := ts.createTestBook(t, "Busy", 400)

	for range 3 {
		resp := ts.api.Post("/api/v1/sessions/quick-add", map[string]any{
			"bookId":    bookID,
			"pagesRead": 10,
		})
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	resp := ts.api.Get("/api/v1/sessions?limit=2")
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeBody[SessionListResponse](t, resp)
	assert.Len(t, envelope.Data.Sessions, 2)
	assert.Equal(t, 2, envelope.Data.Total)
}

func TestListBookSessions(t *testing.T) {
	ts := setupTestAPI(t)
	bookID := ts.createTestBook(t, "Tracked", 400)

	resp := ts.api.Post("/api/v1/sessions/quick-add", map[string]any{
		"bookId":    bookID,
		"pagesRead": 15,
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Get("/api/v1/books/" + bookID + "/sessions")
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeBody[SessionListResponse](t, resp)
	require.Len(t, envelope.Data.Sessions, 1)
	assert.Equal(t, bookID, envelope.Data.Sessions[0].BookID)

	resp = ts.api.Get("/api/v1/books/book-missing/sessions")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteSession(t *testing.T) {
	ts := setupTestAPI(t)
	bookID := ts.createTestBook(t, "Cleanup", 400)

	resp := ts.api.Post("/api/v1/sessions/quick-add", map[string]any{
		"bookId":    bookID,
		"pagesRead": 10,
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	envelope := decodeBody[domain.ReadingSession](t, resp)

	resp = ts.api.Delete("/api/v1/sessions/" + envelope.Data.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/books/" + bookID + "/sessions")
	listEnvelope := decodeBody[SessionListResponse](t, resp)
	assert.Empty(t, listEnvelope.Data.Sessions)
}

func TestStopUpdatesForecast(t *testing.T) {
	ts := setupTestAPI(t)
	bookID := ts.createTestBook(t, "Paced", 200)

	resp := ts.api.Post("/api/v1/sessions/start", map[string]any{"bookId": bookID})
	require.Equal(t, http.StatusCreated, resp.Code)
	envelope := decodeBody[domain.ReadingSession](t, resp)

	resp = ts.api.Post("/api/v1/sessions/"+envelope.Data.ID+"/stop", map[string]any{"endPage": 30})
	require.Equal(t, http.StatusOK, resp.Code)

	// The stop recomputes the cached reading state.
	resp = ts.api.Get("/api/v1/books/" + bookID + "/reading-state")
	require.Equal(t, http.StatusOK, resp.Code)
	stateEnvelope := decodeBody[domain.BookReadingState](t, resp)
	assert.Empty(t, stateEnvelope.Data.ActiveSessionID)
	assert.NotNil(t, stateEnvelope.Data.LastSessionAt)
}
