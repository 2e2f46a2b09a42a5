// Package search provides full-text search over the user's own
// library using Bleve: books and notes in one index with type
// discrimination, fuzzy matching, and prefix queries for
// search-as-you-type.
package search

import (
	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeBook DocType = "book"
	DocTypeNote DocType = "note"
)

// SearchDocument is the unified document structure for the Bleve
// index. Books and notes are indexed together so one query serves the
// search box.
type SearchDocument struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Name is the primary searchable text. Book: title, Note: a
	// content excerpt.
	Name string `json:"name"`

	// Book fields (empty for notes)
	Author      string `json:"author,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`

	// Note fields (empty for books)
	Content string `json:"content,omitempty"`
	BookID  string `json:"book_id,omitempty"`
	Kind    string `json:"kind,omitempty"`

	// Timestamps for sorting, Unix millis
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names so
// they match the index mapping. Bleve would otherwise use the Go
// struct field names.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Genre != "" {
		m["genre"] = d.Genre
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Status != "" {
		m["status"] = d.Status
	}
	if d.Content != "" {
		m["content"] = d.Content
	}
	if d.BookID != "" {
		m["book_id"] = d.BookID
	}
	if d.Kind != "" {
		m["kind"] = d.Kind
	}

	return m
}

// BookToSearchDocument converts a domain Book to a SearchDocument.
func BookToSearchDocument(book *domain.Book) *SearchDocument {
	return &SearchDocument{
		ID:          book.ID,
		Type:        DocTypeBook,
		Name:        book.Title,
		Author:      book.Author,
		Genre:       book.Genre,
		Description: book.Description,
		Status:      string(book.Status),
		CreatedAt:   book.CreatedAt.UnixMilli(),
		UpdatedAt:   book.UpdatedAt.UnixMilli(),
	}
}

// noteExcerptLen bounds how much note text shows up in result lists.
const noteExcerptLen = 120

// NoteToSearchDocument converts a domain BookNote to a SearchDocument.
func NoteToSearchDocument(note *domain.BookNote) *SearchDocument {
	excerpt := note.Content
	if len(excerpt) > noteExcerptLen {
		excerpt = excerpt[:noteExcerptLen]
	}

	return &SearchDocument{
		ID:        note.ID,
		Type:      DocTypeNote,
		Name:      excerpt,
		Content:   note.Content,
		BookID:    note.BookID,
		Kind:      string(note.Kind),
		CreatedAt: note.CreatedAt.UnixMilli(),
		UpdatedAt: note.UpdatedAt.UnixMilli(),
	}
}
