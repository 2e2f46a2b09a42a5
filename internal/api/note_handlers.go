package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

func (s *Server) registerNoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBookNote",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/notes",
		Summary:       "Create note",
		Description:   "Attaches a note, quote, or highlight to a book",
		Tags:          []string{"Notes"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/notes",
		Summary:     "List book notes",
		Tags:        []string{"Notes"},
	}, s.handleListBookNotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNote",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Get note",
		Tags:        []string{"Notes"},
	}, s.handleGetNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateNote",
		Method:      http.MethodPatch,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Update note",
		Tags:        []string{"Notes"},
	}, s.handleUpdateNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteNote",
		Method:      http.MethodDelete,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Delete note",
		Tags:        []string{"Notes"},
	}, s.handleDeleteNote)
}

// === DTOs ===

type CreateNoteInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.CreateNoteInput
}

type NoteOutput struct {
	Body *domain.BookNote
}

type ListBookNotesInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Kind string `query:"kind" enum:"note,quote,highlight" doc:"Filter by note kind"`
}

type NoteListResponse struct {
	Notes []*domain.BookNote `json:"notes"`
	Total int                `json:"total"`
}

type NoteListOutput struct {
	Body NoteListResponse
}

type NoteIDInput struct {
	ID string `path:"id" doc:"Note ID"`
}

type UpdateNoteInput struct {
	ID   string `path:"id" doc:"Note ID"`
	Body service.UpdateNoteInput
}

// === Handlers ===

func (s *Server) handleCreateNote(ctx context.Context, input *CreateNoteInput) (*NoteOutput, error) {
	note, err := s.services.Note.CreateNote(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: note}, nil
}

func (s *Server) handleListBookNotes(ctx context.Context, input *ListBookNotesInput) (*NoteListOutput, error) {
	notes, err := s.services.Note.ListBookNotes(ctx, input.ID, domain.NoteKind(input.Kind))
	if err != nil {
		return nil, err
	}
	return &NoteListOutput{Body: NoteListResponse{Notes: notes, Total: len(notes)}}, nil
}

func (s *Server) handleGetNote(ctx context.Context, input *NoteIDInput) (*NoteOutput, error) {
	note, err := s.services.Note.GetNote(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: note}, nil
}

func (s *Server) handleUpdateNote(ctx context.Context, input *UpdateNoteInput) (*NoteOutput, error) {
	note, err := s.services.Note.UpdateNote(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: note}, nil
}

func (s *Server) handleDeleteNote(ctx context.Context, input *NoteIDInput) (*MessageOutput, error) {
	if err := s.services.Note.DeleteNote(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Note deleted"}}, nil
}
