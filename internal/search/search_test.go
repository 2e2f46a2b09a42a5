package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

func newTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	idx, err := NewSearchIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, idx.Close())
	})
	return idx
}

func testBook(id, title, author, genre string) *domain.Book {
	book := &domain.Book{
		Title:  title,
		Author: author,
		Genre:  genre,
		Format: domain.FormatPaper,
		Status: domain.StatusReading,
	}
	book.ID = id
	book.CreatedAt = time.Now().UTC()
	book.UpdatedAt = book.CreatedAt
	return book
}

func seedIndex(t *testing.T, idx *SearchIndex) {
	t.Helper()

	books := []*domain.Book{
		testBook("book-1", "The Name of the Wind", "Patrick Rothfuss", "Fantasy"),
		testBook("book-2", "The Wise Man's Fear", "Patrick Rothfuss", "Fantasy"),
		testBook("book-3", "Project Hail Mary", "Andy Weir", "Science Fiction"),
	}

	docs := make([]*SearchDocument, 0, len(books))
	for _, b := range books {
		docs = append(docs, BookToSearchDocument(b))
	}

	note := &domain.BookNote{
		BookID:  "book-3",
		Kind:    domain.NoteKindQuote,
		Content: "I penetrated the outer cell membrane with a nanosyringe.",
	}
	note.ID = "note-1"
	note.CreatedAt = time.Now().UTC()
	note.UpdatedAt = note.CreatedAt
	docs = append(docs, NoteToSearchDocument(note))

	require.NoError(t, idx.IndexDocuments(docs))
}

func TestSearch_TitleMatch(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), SearchParams{Query: "wind", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-1", result.Hits[0].ID)
	assert.Equal(t, DocTypeBook, result.Hits[0].Type)
	assert.Equal(t, "The Name of the Wind", result.Hits[0].Name)
}

func TestSearch_DefaultLimit(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), SearchParams{Query: "rothfuss"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(result.Hits), 2)
	assert.EqualValues(t, len(result.Hits), result.Total)
}

func TestSearch_AuthorMatch(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), SearchParams{Query: "rothfuss", Limit: 10})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(result.Hits), 2)
}

func TestSearch_NoteContent(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), SearchParams{Query: "nanosyringe", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "note-1", result.Hits[0].ID)
	assert.Equal(t, DocTypeNote, result.Hits[0].Type)
	assert.Equal(t, "book-3", result.Hits[0].BookID)
}

func TestSearch_TypeFilter(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), SearchParams{
		Types: []string{string(DocTypeNote)},
		Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, DocTypeNote, result.Hits[0].Type)
}

func TestSearch_FuzzyMatch(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	// One character off.
	result, err := idx.Search(context.Background(), SearchParams{Query: "wint", Limit: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Hits)
}

func TestSearch_PrefixAutocomplete(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), SearchParams{Query: "proj", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-3", result.Hits[0].ID)
}

func TestIndex_DeleteDocument(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	require.NoError(t, idx.DeleteDocument("book-1"))

	result, err := idx.Search(context.Background(), SearchParams{Query: "name of the wind", Limit: 10})
	require.NoError(t, err)
	for _, hit := range result.Hits {
		assert.NotEqual(t, "book-1", hit.ID)
	}
}

func TestIndex_Rebuild(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	require.NoError(t, idx.Rebuild())

	count, err = idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_ReopenKeepsDocuments(t *testing.T) {
	dir := t.TempDir()

	idx, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, idx.IndexDocument(BookToSearchDocument(testBook("book-1", "Dune", "Frank Herbert", "Science Fiction"))))
	require.NoError(t, idx.Close())

	idx2, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer idx2.Close()

	count, err := idx2.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestNoteToSearchDocument_Excerpt(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}

	note := &domain.BookNote{BookID: "book-1", Kind: domain.NoteKindNote, Content: string(long)}
	note.ID = "note-2"

	doc := NoteToSearchDocument(note)
	assert.Len(t, doc.Name, noteExcerptLen)
	assert.Len(t, doc.Content, 500)
}
