package service

import (
	"context"
	"fmt"
	"log/slog"

	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// ExportService produces and restores full-library JSON snapshots.
type ExportService struct {
	store  *store.Store
	search *SearchService
	logger *slog.Logger
}

// NewExportService creates a new export service. The search service may
// be nil when local search is disabled.
func NewExportService(store *store.Store, search *SearchService, logger *slog.Logger) *ExportService {
	return &ExportService{
		store:  store,
		search: search,
		logger: logger,
	}
}

// Export snapshots the whole library: books, sessions, notes, reading
// states, and daily rollups, keyed by entity ID.
func (s *ExportService) Export(ctx context.Context) (*store.ExportDocument, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	s.logger.Info("exported library",
		"books", len(doc.Books),
		"sessions", len(doc.Sessions),
		"notes", len(doc.Notes))

	return doc, nil
}

// Import restores a snapshot into the store. Existing entities with
// matching IDs are overwritten; everything else is left alone. The
// search index is rebuilt afterwards so imported books are findable.
func (s *ExportService) Import(ctx context.Context, doc *store.ExportDocument) error {
	if doc == nil {
		return domainerrors.Validation("import document is required")
	}

	if err := s.store.Import(ctx, doc); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if s.search != nil {
		if err := s.search.Reindex(ctx); err != nil {
			s.logger.Warn("search reindex after import failed", "error", err)
		}
	}

	s.logger.Info("imported library",
		"books", len(doc.Books),
		"sessions", len(doc.Sessions),
		"notes", len(doc.Notes))

	return nil
}
