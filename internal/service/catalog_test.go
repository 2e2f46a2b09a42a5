package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/catalog/openlibrary"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
)

func TestCatalogService_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"numFound": 1,
			"docs": [{
				"key": "/works/OL27448W",
				"title": "The Hobbit",
				"author_name": ["J.R.R. Tolkien"],
				"first_publish_year": 1937,
				"number_of_pages_median": 310
			}]
		}`))
	}))
	defer server.Close()

	logger := slog.New(slog.DiscardHandler)
	client := openlibrary.NewClient(logger, openlibrary.WithBaseURL(server.URL))
	svc := NewCatalogService(client, logger)

	results, err := svc.Search(context.Background(), "the hobbit")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "The Hobbit", results[0].Title)
	assert.Equal(t, "J.R.R. Tolkien", results[0].Author)
}

func TestCatalogService_SearchQueryTooShort(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	svc := NewCatalogService(openlibrary.NewClient(logger), logger)

	for _, query := range []string{"", " ", "a", "  a  "} {
		_, err := svc.Search(context.Background(), query)
		assert.ErrorIs(t, err, domainerrors.ErrValidation, "query %q", query)
	}
}
