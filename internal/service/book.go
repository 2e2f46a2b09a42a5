// Package service provides the business logic layer for books,
// reading sessions, notes, and stats.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/catalog/openlibrary"
	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/media/covers"
	"github.com/pageturnapp/pageturn-server/internal/store"
	"github.com/pageturnapp/pageturn-server/internal/validation"
)

// BookService orchestrates book catalog operations.
type BookService struct {
	store    *store.Store
	covers   *covers.Manager
	validate *validation.Validator
	logger   *slog.Logger
}

// NewBookService creates a new book service. The covers manager may be
// nil when cover downloads are disabled.
func NewBookService(store *store.Store, covers *covers.Manager, validate *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		store:    store,
		covers:   covers,
		validate: validate,
		logger:   logger,
	}
}

// CreateBookInput describes a new catalog entry.
type CreateBookInput struct {
	Title       string            `json:"title" validate:"required,max=500"`
	Author      string            `json:"author" validate:"required,max=300"`
	Genre       string            `json:"genre,omitempty" validate:"omitempty,max=100"`
	Format      domain.BookFormat `json:"format" validate:"required,oneof=paper ebook audio"`
	Status      domain.BookStatus `json:"status,omitempty" validate:"omitempty,oneof=toRead reading onHold dnf finished"`
	TotalPages  int               `json:"totalPages,omitempty" validate:"omitempty,min=1"`
	CurrentPage int               `json:"currentPage,omitempty" validate:"omitempty,min=0"`
	ISBN        string            `json:"isbn,omitempty" validate:"omitempty,isbn"`
	Description string            `json:"description,omitempty"`
}

// CreateBook adds a book to the catalog. Descriptions containing HTML
// (pasted from publisher pages) are converted to markdown.
func (s *BookService) CreateBook(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	if input.ISBN != "" {
		existing, err := s.store.GetBookByISBN(ctx, input.ISBN)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("check isbn: %w", err)
		}
		if existing != nil {
			return nil, domainerrors.AlreadyExists(fmt.Sprintf("a book with ISBN %s already exists", input.ISBN))
		}
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book id: %w", err)
	}

	status := input.Status
	if status == "" {
		status = domain.StatusToRead
	}

	book := &domain.Book{
		Title:       input.Title,
		Author:      input.Author,
		Genre:       input.Genre,
		Format:      input.Format,
		Status:      status,
		TotalPages:  input.TotalPages,
		CurrentPage: input.CurrentPage,
		ISBN:        input.ISBN,
		Description: openlibrary.NormalizeDescription(input.Description),
	}
	book.ID = bookID
	book.InitTimestamps()

	if book.TotalPages > 0 && book.CurrentPage > 0 {
		book.Progress = float64(book.CurrentPage) / float64(book.TotalPages)
		if book.Progress > 1 {
			book.Progress = 1
		}
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("created book", "book_id", bookID, "title", book.Title)
	return book, nil
}

// GetBook retrieves a single book by ID.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListBooks returns a filtered, cursor-paginated page of the catalog.
func (s *BookService) ListBooks(ctx context.Context, filter store.BookFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	params.Validate()
	return s.store.ListBooks(ctx, filter, params)
}

// UpdateBookInput carries partial book updates. Nil fields are left
// untouched.
type UpdateBookInput struct {
	Title       *string            `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Author      *string            `json:"author,omitempty" validate:"omitempty,min=1,max=300"`
	Genre       *string            `json:"genre,omitempty" validate:"omitempty,max=100"`
	Format      *domain.BookFormat `json:"format,omitempty" validate:"omitempty,oneof=paper ebook audio"`
	Status      *domain.BookStatus `json:"status,omitempty" validate:"omitempty,oneof=toRead reading onHold dnf finished"`
	TotalPages  *int               `json:"totalPages,omitempty" validate:"omitempty,min=0"`
	ISBN        *string            `json:"isbn,omitempty" validate:"omitempty,isbn"`
	Description *string            `json:"description,omitempty"`
}

// UpdateBook applies a partial update to a book's catalog fields.
// Progress fields go through UpdateProgress instead.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, input UpdateBookInput) (*domain.Book, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.Genre != nil {
		book.Genre = *input.Genre
	}
	if input.Format != nil {
		book.Format = *input.Format
	}
	if input.Status != nil {
		book.Status = *input.Status
	}
	if input.TotalPages != nil {
		book.TotalPages = *input.TotalPages
	}
	if input.ISBN != nil {
		book.ISBN = *input.ISBN
	}
	if input.Description != nil {
		book.Description = openlibrary.NormalizeDescription(*input.Description)
	}
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// UpdateProgressInput carries a manual progress update. At least one
// field must be set.
type UpdateProgressInput struct {
	CurrentPage *int     `json:"currentPage,omitempty" validate:"omitempty,min=0"`
	Progress    *float64 `json:"progress,omitempty" validate:"omitempty,min=0,max=1"`
}

// UpdateProgress sets a book's reading position. A page number derives
// the progress fraction when the book has a page count; an explicit
// progress fraction overwrites it (ebooks and audiobooks). Reaching
// full progress finishes the book permanently; walking pages back
// afterwards lowers progress but never reopens it.
func (s *BookService) UpdateProgress(ctx context.Context, bookID string, input UpdateProgressInput) (*domain.Book, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}
	if input.CurrentPage == nil && input.Progress == nil {
		return nil, domainerrors.Validation("currentPage or progress is required")
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if input.CurrentPage != nil {
		book.ApplyPage(*input.CurrentPage, now)
	}
	if input.Progress != nil {
		book.ApplyProgress(*input.Progress, now)
	}
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// DeleteBook removes a book and everything hanging off it: sessions,
// notes, reading state, and the cover file. Daily rollups keep their
// history.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("book %s not found", bookID)
		}
		return fmt.Errorf("delete book: %w", err)
	}

	if s.covers != nil {
		if err := s.covers.Remove(bookID); err != nil {
			s.logger.Warn("failed to remove cover file", "book_id", bookID, "error", err)
		}
	}

	s.logger.Info("deleted book", "book_id", bookID)
	return nil
}

// DownloadCover fetches a cover image from a URL, stores it in the data
// directory, and records its path and blurhash placeholder on the book.
func (s *BookService) DownloadCover(ctx context.Context, bookID, url string) (*domain.Book, error) {
	if s.covers == nil {
		return nil, domainerrors.Unavailable("cover downloads are disabled")
	}
	if url == "" {
		return nil, domainerrors.Validation("cover url is required")
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	path, blurHash, err := s.covers.Download(ctx, bookID, url)
	if err != nil {
		return nil, fmt.Errorf("download cover: %w", err)
	}

	book.CoverPath = path
	book.CoverBlurHash = blurHash
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.logger.Info("downloaded cover", "book_id", bookID, "path", path)
	return book, nil
}
