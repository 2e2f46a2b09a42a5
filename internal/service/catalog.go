package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pageturnapp/pageturn-server/internal/catalog/openlibrary"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
)

// CatalogService proxies book lookups to Open Library so clients can
// prefill catalog entries instead of typing metadata by hand.
type CatalogService struct {
	client *openlibrary.Client
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(client *openlibrary.Client, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		client: client,
		logger: logger,
	}
}

// Search queries Open Library for matching books. Queries under two
// characters are rejected before hitting the upstream.
func (s *CatalogService) Search(ctx context.Context, query string) ([]openlibrary.BookResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, domainerrors.Validation("search query must be at least 2 characters")
	}

	results, err := s.client.SearchBooks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	s.logger.Debug("catalog search", "query", query, "results", len(results))
	return results, nil
}
