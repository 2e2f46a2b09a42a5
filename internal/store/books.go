package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// initBooks initializes the Books entity on the store.
// Books with an ISBN are indexed by it for duplicate detection.
func (s *Store) initBooks() {
	s.Books = NewEntity[domain.Book](s, bookPrefix).
		WithIndex("isbn", func(b *domain.Book) []string {
			if b.ISBN == "" {
				return nil
			}
			return []string{b.ISBN}
		})
}

// CreateBook creates a new book.
// Returns ErrAlreadyExists if a book with this ID already exists.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := s.Books.Create(ctx, book.ID, book); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return fmt.Errorf("book %s: %w", book.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("creating book %s: %w", book.ID, err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.IndexBook(ctx, book); err != nil && s.logger != nil {
			s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
		}
	}
	return nil
}

// GetBook retrieves a book by ID.
// Returns ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.Books.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("book %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting book %s: %w", id, err)
	}
	return book, nil
}

// GetBookByISBN retrieves a book by its ISBN index.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	book, err := s.Books.GetByIndex(ctx, "isbn", isbn)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("book with isbn %s: %w", isbn, ErrNotFound)
		}
		return nil, fmt.Errorf("getting book by isbn %s: %w", isbn, err)
	}
	return book, nil
}

// UpdateBook updates an existing book.
// Returns ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	if err := s.Books.Update(ctx, book.ID, book); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("book %s: %w", book.ID, ErrNotFound)
		}
		return fmt.Errorf("updating book %s: %w", book.ID, err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.IndexBook(ctx, book); err != nil && s.logger != nil {
			s.logger.Warn("failed to reindex book", "book_id", book.ID, "error", err)
		}
	}
	return nil
}

// DeleteBook deletes a book and everything owned by it: sessions,
// notes, and the reading state. Daily rollups are deliberately kept so
// history charts survive catalog cleanup.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	exists, err := s.BookExists(ctx, id)
	if err != nil {
		return fmt.Errorf("checking book %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("book %s: %w", id, ErrNotFound)
	}

	sessions, err := s.GetBookSessions(ctx, id)
	if err != nil {
		return fmt.Errorf("collecting sessions for book %s: %w", id, err)
	}
	for _, session := range sessions {
		if err := s.Sessions.Delete(ctx, session.ID); err != nil {
			return fmt.Errorf("deleting session %s: %w", session.ID, err)
		}
	}

	notes, err := s.GetBookNotes(ctx, id)
	if err != nil {
		return fmt.Errorf("collecting notes for book %s: %w", id, err)
	}
	for _, note := range notes {
		if err := s.DeleteNote(ctx, note.ID); err != nil {
			return err
		}
	}

	if err := s.DeleteReadingState(ctx, id); err != nil {
		return err
	}

	if err := s.Books.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting book %s: %w", id, err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteBook(ctx, id); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove book from index", "book_id", id, "error", err)
		}
	}
	return nil
}

// BookExists checks whether a book exists without decoding it.
func (s *Store) BookExists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.exists([]byte(bookPrefix + id))
}

// BookFilter narrows a book listing. Zero values match everything.
type BookFilter struct {
	Status domain.BookStatus
	Format domain.BookFormat
}

func (f BookFilter) matches(b *domain.Book) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Format != "" && b.Format != f.Format {
		return false
	}
	return true
}

// ListBooks returns a filtered page of books ordered by ID.
func (s *Store) ListBooks(ctx context.Context, filter BookFilter, params PaginationParams) (*PaginatedResult[*domain.Book], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params.Validate()

	var books []*domain.Book
	var hasMore bool

	prefix := []byte(bookPrefix)

	startKey, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = params.Limit + 1

		it := txn.NewIterator(opts)
		defer it.Close()

		if startKey != "" {
			it.Seek([]byte(startKey))
			// Skip the cursor key itself, it was returned on the previous page
			if it.Valid() && string(it.Item().Key()) == startKey {
				it.Next()
			}
		} else {
			it.Seek(prefix)
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			if strings.HasPrefix(key[len(bookPrefix):], "idx:") {
				continue
			}

			var book domain.Book
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			})
			if err != nil {
				return err
			}

			if !filter.matches(&book) {
				continue
			}

			if len(books) == params.Limit {
				hasMore = true
				break
			}
			books = append(books, &book)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	result := &PaginatedResult[*domain.Book]{
		Items:   books,
		HasMore: hasMore,
	}

	if hasMore && len(books) > 0 {
		result.NextCursor = EncodeCursor(bookPrefix + books[len(books)-1].ID)
	}

	return result, nil
}

// ListAllBooks returns every book, unpaginated. Export and search
// reindexing use this; API listings should use ListBooks.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book
	for book, err := range s.Books.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list all books: %w", err)
		}
		books = append(books, book)
	}
	return books, nil
}
