package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

func TestCreateAndListNotes(t *testing.T) {
	ts := setupTestAPI(t)
	bookID := ts.createTestBook(t, "Annotated", 300)

	resp := ts.api.Post("/api/v1/books/"+bookID+"/notes", map[string]any{
		"kind":    "quote",
		"content": "The map is not the territory.",
		"page":    42,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	envelope := decodeBody[domain.BookNote](t, resp)
	noteID := envelope.Data.ID
	assert.Equal(t, domain.NoteKindQuote, envelope.Data.Kind)
	assert.Equal(t, bookID, envelope.Data.BookID)

	// Kind defaults to note when omitted.
	resp = ts.api.Post("/api/v1/books/"+bookID+"/notes", map[string]any{
		"content": "Reread chapter three.",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	envelope = decodeBody[domain.BookNote](t, resp)
	assert.Equal(t, domain.NoteKindNote, envelope.Data.Kind)

	resp = ts.api.Get("/api/v1/books/" + bookID + "/notes")
	require.Equal(t, http.StatusOK, resp.Code)
	listEnvelope := decodeBody[NoteListResponse](t, resp)
	assert.Equal(t, 2, listEnvelope.Data.Total)

	resp = ts.api.Get("/api/v1/books/" + bookID + "/notes?kind=quote")
	require.Equal(t, http.StatusOK, resp.Code)
	listEnvelope = decodeBody[NoteListResponse](t, resp)
	require.Len(t, listEnvelope.Data.Notes, 1)
	assert.Equal(t, noteID, listEnvelope.Data.Notes[0].ID)
}

func TestCreateNoteMissingBook(t *testing.T) {
	ts := setupTestAPI(t)

	resp := ts.api.Post("/api/v1/books/book-missing/notes", map[string]any{
		"content": "orphan",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestNoteCRUD(t *testing.T) {
	ts := setupTestAPI(t)
	bookID := ts.createTestBook(t, "Annotated", 300)

	resp := ts.api.Post("/api/v1/books/"+bookID+"/notes", map[string]any{
		"content": "first draft",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	envelope := decodeBody[domain.BookNote](t, resp)
	noteID := envelope.Data.ID

	resp = ts.api.Get("/api/v1/notes/" + noteID)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Patch("/api/v1/notes/"+noteID, map[string]any{
		"content": "second draft",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	envelope = decodeBody[domain.BookNote](t, resp)
	assert.Equal(t, "second draft", envelope.Data.Content)

	resp = ts.api.Delete("/api/v1/notes/" + noteID)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/notes/" + noteID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
