package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/store"
	"github.com/pageturnapp/pageturn-server/internal/validation"
)

func setupBookTest(t *testing.T) (*BookService, *store.Store) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	testStore, err := store.NewInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { testStore.Close() })

	svc := NewBookService(testStore, nil, validation.New(), logger)
	return svc, testStore
}

func TestBookService_CreateBook(t *testing.T) {
	svc, _ := setupBookTest(t)
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, CreateBookInput{
		Title:      "Piranesi",
		Author:     "Susanna Clarke",
		Genre:      "Fantasy",
		Format:     domain.FormatPaper,
		TotalPages: 245,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, domain.StatusToRead, book.Status)
	assert.Equal(t, 245, book.TotalPages)
	assert.Zero(t, book.Progress)
}

func TestBookService_CreateBookValidation(t *testing.T) {
	svc, _ := setupBookTest(t)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, CreateBookInput{Author: "No Title", Format: domain.FormatPaper})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.CreateBook(ctx, CreateBookInput{Title: "Bad Format", Author: "X", Format: "vinyl"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestBookService_CreateBookNormalizesHTMLDescription(t *testing.T) {
	svc, _ := setupBookTest(t)
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, CreateBookInput{
		Title:       "Annotated",
		Author:      "X",
		Format:      domain.FormatEbook,
		Description: "<p>A <b>bold</b> tale.</p>",
	})
	require.NoError(t, err)
	assert.NotContains(t, book.Description, "<p>")
	assert.Contains(t, book.Description, "**bold**")
}

func TestBookService_CreateBookDuplicateISBN(t *testing.T) {
	svc, _ := setupBookTest(t)
	ctx := context.Background()

	input := CreateBookInput{
		Title:  "Dune",
		Author: "Frank Herbert",
		Format: domain.FormatPaper,
		ISBN:   "9780441013593",
	}
	_, err := svc.CreateBook(ctx, input)
	require.NoError(t, err)

	input.Title = "Dune (again)"
	_, err = svc.CreateBook(ctx, input)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestBookService_UpdateBook(t *testing.T) {
	svc, _ := setupBookTest(t)
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, CreateBookInput{
		Title:  "Working Title",
		Author: "X",
		Format: domain.FormatPaper,
	})
	require.NoError(t, err)

	newTitle := "Final Title"
	onHold := domain.StatusOnHold
	pages := 412
	updated, err := svc.UpdateBook(ctx, book.ID, UpdateBookInput{
		Title:      &newTitle,
		Status:     &onHold,
		TotalPages: &pages,
	})
	require.NoError(t, err)

	assert.Equal(t, "Final Title", updated.Title)
	assert.Equal(t, domain.StatusOnHold, updated.Status)
	assert.Equal(t, 412, updated.TotalPages)
	assert.Equal(t, "X", updated.Author)

	_, err = svc.UpdateBook(ctx, "book-missing", UpdateBookInput{Title: &newTitle})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestBookService_UpdateProgress(t *testing.T) {
	svc, _ := setupBookTest(t)
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, CreateBookInput{
		Title:      "Tracked",
		Author:     "X",
		Format:     domain.FormatPaper,
		TotalPages: 200,
	})
	require.NoError(t, err)

	t.Run("requires at least one field", func(t *testing.T) {
		_, err := svc.UpdateProgress(ctx, book.ID, UpdateProgressInput{})
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	})

	t.Run("page derives progress", func(t *testing.T) {
		page := 50
		updated, err := svc.UpdateProgress(ctx, book.ID, UpdateProgressInput{CurrentPage: &page})
		require.NoError(t, err)
		assert.Equal(t, 50, updated.CurrentPage)
		assert.InDelta(t, 0.25, updated.Progress, 0.001)
		require.NotNil(t, updated.LastReadAt)
	})

	t.Run("explicit progress overwrites derivation", func(t *testing.T) {
		page := 50
		progress := 0.9
		updated, err := svc.UpdateProgress(ctx, book.ID, UpdateProgressInput{CurrentPage: &page, Progress: &progress})
		require.NoError(t, err)
		assert.Equal(t, 50, updated.CurrentPage)
		assert.InDelta(t, 0.9, updated.Progress, 0.001)
	})

	t.Run("full progress finishes for good", func(t *testing.T) {
		progress := 1.0
		updated, err := svc.UpdateProgress(ctx, book.ID, UpdateProgressInput{Progress: &progress})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFinished, updated.Status)
		require.NotNil(t, updated.CompletedAt)
		finishedAt := *updated.CompletedAt

		// Walking pages back lowers progress but leaves the book
		// finished with the original timestamp.
		page := 10
		updated, err = svc.UpdateProgress(ctx, book.ID, UpdateProgressInput{CurrentPage: &page})
		require.NoError(t, err)
		assert.InDelta(t, 0.05, updated.Progress, 0.001)
		assert.Equal(t, domain.StatusFinished, updated.Status)
		assert.True(t, finishedAt.Equal(*updated.CompletedAt))
	})

	t.Run("out of range progress is rejected", func(t *testing.T) {
		progress := 1.5
		_, err := svc.UpdateProgress(ctx, book.ID, UpdateProgressInput{Progress: &progress})
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	})
}

func TestBookService_ListBooks(t *testing.T) {
	svc, _ := setupBookTest(t)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		_, err := svc.CreateBook(ctx, CreateBookInput{Title: title, Author: "X", Format: domain.FormatPaper})
		require.NoError(t, err)
	}
	_, err := svc.CreateBook(ctx, CreateBookInput{Title: "D", Author: "X", Format: domain.FormatAudio})
	require.NoError(t, err)

	all, err := svc.ListBooks(ctx, store.BookFilter{}, store.PaginationParams{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 4)
	assert.False(t, all.HasMore)

	audio, err := svc.ListBooks(ctx, store.BookFilter{Format: domain.FormatAudio}, store.PaginationParams{})
	require.NoError(t, err)
	assert.Len(t, audio.Items, 1)
}

func TestBookService_DeleteBook(t *testing.T) {
	svc, testStore := setupBookTest(t)
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, CreateBookInput{Title: "Doomed", Author: "X", Format: domain.FormatPaper})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(ctx, book.ID))

	_, err = svc.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = testStore.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteBook(ctx, book.ID), domainerrors.ErrNotFound)
}

func TestBookService_DownloadCoverDisabled(t *testing.T) {
	svc, _ := setupBookTest(t)
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, CreateBookInput{Title: "Plain", Author: "X", Format: domain.FormatPaper})
	require.NoError(t, err)

	_, err = svc.DownloadCover(ctx, book.ID, "https://example.com/cover.jpg")
	assert.ErrorIs(t, err, domainerrors.ErrUnavailable)
}
