package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/store"
	"github.com/pageturnapp/pageturn-server/internal/validation"
)

// NoteService manages notes, quotes, and highlights attached to books.
type NoteService struct {
	store    *store.Store
	validate *validation.Validator
	logger   *slog.Logger
}

// NewNoteService creates a new note service.
func NewNoteService(store *store.Store, validate *validation.Validator, logger *slog.Logger) *NoteService {
	return &NoteService{
		store:    store,
		validate: validate,
		logger:   logger,
	}
}

// CreateNoteInput describes a new note for a book.
type CreateNoteInput struct {
	Kind    domain.NoteKind `json:"kind,omitempty" validate:"omitempty,oneof=note quote highlight"`
	Content string          `json:"content" validate:"required,max=10000"`
	Page    *int            `json:"page,omitempty" validate:"omitempty,min=0"`
}

// CreateNote attaches a note to a book. If the book has an active
// session the note is linked to it, so quotes captured mid-session can
// be traced back to the sitting they came from.
func (s *NoteService) CreateNote(ctx context.Context, bookID string, input CreateNoteInput) (*domain.BookNote, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	exists, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}

	kind := input.Kind
	if kind == "" {
		kind = domain.NoteKindNote
	}

	noteID, err := id.Generate(id.PrefixNote)
	if err != nil {
		return nil, fmt.Errorf("generate note id: %w", err)
	}

	note := &domain.BookNote{
		BookID:  bookID,
		Kind:    kind,
		Content: input.Content,
		Page:    input.Page,
	}
	note.ID = noteID
	note.InitTimestamps()

	if state, err := s.store.GetReadingState(ctx, bookID); err == nil && state.ActiveSessionID != "" {
		note.SessionID = state.ActiveSessionID
	}

	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.logger.Debug("created note", "note_id", noteID, "book_id", bookID, "kind", kind)
	return note, nil
}

// GetNote retrieves a note by ID.
func (s *NoteService) GetNote(ctx context.Context, noteID string) (*domain.BookNote, error) {
	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("note %s not found", noteID)
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// ListBookNotes returns a book's notes, most recent first, optionally
// filtered by kind.
func (s *NoteService) ListBookNotes(ctx context.Context, bookID string, kind domain.NoteKind) ([]*domain.BookNote, error) {
	exists, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	if kind != "" && !kind.Valid() {
		return nil, domainerrors.Validationf("invalid note kind %q", kind)
	}

	notes, err := s.store.GetBookNotes(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get book notes: %w", err)
	}
	if kind == "" {
		return notes, nil
	}

	filtered := make([]*domain.BookNote, 0, len(notes))
	for _, note := range notes {
		if note.Kind == kind {
			filtered = append(filtered, note)
		}
	}
	return filtered, nil
}

// UpdateNoteInput carries partial note updates.
type UpdateNoteInput struct {
	Kind    *domain.NoteKind `json:"kind,omitempty" validate:"omitempty,oneof=note quote highlight"`
	Content *string          `json:"content,omitempty" validate:"omitempty,min=1,max=10000"`
	Page    *int             `json:"page,omitempty" validate:"omitempty,min=0"`
}

// UpdateNote applies a partial update to a note.
func (s *NoteService) UpdateNote(ctx context.Context, noteID string, input UpdateNoteInput) (*domain.BookNote, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	note, err := s.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if input.Kind != nil {
		note.Kind = *input.Kind
	}
	if input.Content != nil {
		note.Content = *input.Content
	}
	if input.Page != nil {
		note.Page = input.Page
	}
	note.Touch()

	if err := s.store.UpdateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return note, nil
}

// DeleteNote removes a note.
func (s *NoteService) DeleteNote(ctx context.Context, noteID string) error {
	if err := s.store.DeleteNote(ctx, noteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("note %s not found", noteID)
		}
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}
