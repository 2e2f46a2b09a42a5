package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/catalog/openlibrary"
	"github.com/pageturnapp/pageturn-server/internal/search"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// wireSearch attaches a real index to an existing test server.
func (ts *testServer) wireSearch(t *testing.T) {
	t.Helper()

	index, err := search.NewSearchIndex(search.Options{
		DataPath: t.TempDir(),
		Logger:   ts.logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	searchService := service.NewSearchService(index, ts.store, ts.logger)
	ts.store.SetSearchIndexer(searchService)
	ts.services.Search = searchService
}

func TestSearchLibrary(t *testing.T) {
	ts := setupTestAPI(t)
	ts.wireSearch(t)

	bookID := ts.createTestBook(t, "A Wizard of Earthsea", 183)

	resp := ts.api.Get("/api/v1/search?q=earthsea")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decodeBody[search.SearchResult](t, resp)
	require.Len(t, envelope.Data.Hits, 1)
	assert.Equal(t, bookID, envelope.Data.Hits[0].ID)
	assert.Equal(t, search.DocTypeBook, envelope.Data.Hits[0].Type)
}

func TestSearchLibraryUnavailable(t *testing.T) {
	ts := setupTestAPI(t)

	resp := ts.api.Get("/api/v1/search?q=anything")
	require.Equal(t, http.StatusBadGateway, resp.Code)

	envelope := decodeBody[any](t, resp)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "UNAVAILABLE", envelope.Error.Code)
}

func TestSearchCatalogUnavailable(t *testing.T) {
	ts := setupTestAPI(t)

	resp := ts.api.Get("/api/v1/catalog/search?q=dune")
	require.Equal(t, http.StatusBadGateway, resp.Code)
}

func TestSearchCatalog(t *testing.T) {
	ts := setupTestAPI(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"numFound": 1,
			"docs": [{
				"key": "/works/OL45883W",
				"title": "Dune",
				"author_name": ["Frank Herbert"],
				"first_publish_year": 1965,
				"number_of_pages_median": 412
			}]
		}`))
	}))
	t.Cleanup(upstream.Close)

	client := openlibrary.NewClient(ts.logger, openlibrary.WithBaseURL(upstream.URL))
	ts.services.Catalog = service.NewCatalogService(client, ts.logger)

	resp := ts.api.Get("/api/v1/catalog/search?q=dune")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decodeBody[CatalogSearchResponse](t, resp)
	require.Equal(t, 1, envelope.Data.Total)
	assert.Equal(t, "Dune", envelope.Data.Results[0].Title)
	assert.Equal(t, "Frank Herbert", envelope.Data.Results[0].Author)
}

func TestSearchCatalogQueryTooShort(t *testing.T) {
	ts := setupTestAPI(t)
	ts.services.Catalog = service.NewCatalogService(openlibrary.NewClient(ts.logger), ts.logger)

	resp := ts.api.Get("/api/v1/catalog/search?q=d")
	require.Equal(t, http.StatusBadRequest, resp.Code)

	envelope := decodeBody[any](t, resp)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION", envelope.Error.Code)
}
