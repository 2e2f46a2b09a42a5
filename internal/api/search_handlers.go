package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pageturnapp/pageturn-server/internal/catalog/openlibrary"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search library",
		Description: "Full-text search over books and notes",
		Tags:        []string{"Search"},
	}, s.handleSearchLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        catalogSearchPath,
		Summary:     "Search book catalog",
		Description: "Looks up book metadata from Open Library",
		Tags:        []string{"Search"},
	}, s.handleSearchCatalog)
}

// === DTOs ===

type SearchLibraryInput struct {
	Query  string `query:"q" minLength:"1" doc:"Search query"`
	Types  string `query:"types" doc:"Comma-separated document types (book, note)"`
	Limit  int    `query:"limit" minimum:"1" maximum:"100" doc:"Maximum hits to return"`
	Offset int    `query:"offset" minimum:"0" doc:"Hits to skip"`
}

type SearchLibraryOutput struct {
	Body *search.SearchResult
}

type SearchCatalogInput struct {
	Query string `query:"q" minLength:"1" doc:"Search query"`
}

type CatalogSearchResponse struct {
	Results []openlibrary.BookResult `json:"results"`
	Total   int                      `json:"total"`
}

type SearchCatalogOutput struct {
	Body CatalogSearchResponse
}

// === Handlers ===

func (s *Server) handleSearchLibrary(ctx context.Context, input *SearchLibraryInput) (*SearchLibraryOutput, error) {
	if s.services.Search == nil {
		return nil, domainerrors.Unavailable("search index is disabled")
	}

	params := search.SearchParams{
		Query:     input.Query,
		Limit:     input.Limit,
		Offset:    input.Offset,
		Highlight: true,
	}
	if input.Types != "" {
		params.Types = splitCommaList(input.Types)
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchLibraryOutput{Body: result}, nil
}

func (s *Server) handleSearchCatalog(ctx context.Context, input *SearchCatalogInput) (*SearchCatalogOutput, error) {
	if s.services.Catalog == nil {
		return nil, domainerrors.Unavailable("catalog lookups are disabled")
	}

	results, err := s.services.Catalog.Search(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return &SearchCatalogOutput{Body: CatalogSearchResponse{Results: results, Total: len(results)}}, nil
}
