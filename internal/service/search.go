package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/search"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// SearchService keeps the local full-text index in sync with the store
// and answers search-as-you-type queries over the user's own catalog.
// It is registered as the store's search indexer after construction.
type SearchService struct {
	index  *search.SearchIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a query against the local index.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// EnsureIndexed populates the index from the store when it is empty,
// which happens on first boot and after a mapping-version rebuild.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	count, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("document count: %w", err)
	}
	if count > 0 {
		return nil
	}
	return s.Reindex(ctx)
}

// Reindex rebuilds the index contents from the store.
func (s *SearchService) Reindex(ctx context.Context) error {
	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	docs := make([]*search.SearchDocument, 0, len(books))
	for _, book := range books {
		docs = append(docs, search.BookToSearchDocument(book))
	}

	for note, err := range s.store.Notes.List(ctx) {
		if err != nil {
			return fmt.Errorf("list notes: %w", err)
		}
		docs = append(docs, search.NoteToSearchDocument(note))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	s.logger.Info("search index populated", "documents", len(docs))
	return nil
}

// DocumentCount reports how many documents the index currently holds.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// IndexBook implements store.SearchIndexer.
func (s *SearchService) IndexBook(ctx context.Context, book *domain.Book) error {
	return s.index.IndexDocument(search.BookToSearchDocument(book))
}

// DeleteBook implements store.SearchIndexer.
func (s *SearchService) DeleteBook(ctx context.Context, bookID string) error {
	return s.index.DeleteDocument(bookID)
}

// IndexNote implements store.SearchIndexer.
func (s *SearchService) IndexNote(ctx context.Context, note *domain.BookNote) error {
	return s.index.IndexDocument(search.NoteToSearchDocument(note))
}

// DeleteNote implements store.SearchIndexer.
func (s *SearchService) DeleteNote(ctx context.Context, noteID string) error {
	return s.index.DeleteDocument(noteID)
}
