package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "startSession",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions/start",
		Summary:       "Start reading session",
		Description:   "Starts a timed session; fails with 409 if the book already has one open",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusCreated,
	}, s.handleStartSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "pauseSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/pause",
		Summary:     "Pause session",
		Tags:        []string{"Sessions"},
	}, s.handlePauseSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "resumeSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/resume",
		Summary:     "Resume session",
		Tags:        []string{"Sessions"},
	}, s.handleResumeSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "stopSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/stop",
		Summary:     "Stop session",
		Description: "Completes an open session and updates book progress and forecasts",
		Tags:        []string{"Sessions"},
	}, s.handleStopSession)

	huma.Register(s.api, huma.Operation{
		OperationID:   "quickAddPages",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions/quick-add",
		Summary:       "Quick-add pages",
		Description:   "Logs pages read without a timed session",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusCreated,
	}, s.handleQuickAdd)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRecentSessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions",
		Summary:     "List recent sessions",
		Description: "Returns sessions across all books, most recent first",
		Tags:        []string{"Sessions"},
	}, s.handleListRecentSessions)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteSession",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Delete session",
		Tags:        []string{"Sessions"},
	}, s.handleDeleteSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookSessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/sessions",
		Summary:     "List book sessions",
		Tags:        []string{"Sessions"},
	}, s.handleListBookSessions)
}

// === DTOs ===

type StartSessionInput struct {
	Body service.StartSessionInput
}

type SessionOutput struct {
	Body *domain.ReadingSession
}

type SessionIDInput struct {
	ID string `path:"id" doc:"Session ID"`
}

type StopSessionInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body service.StopSessionInput
}

type QuickAddInput struct {
	Body service.QuickAddInput
}

type ListRecentSessionsInput struct {
	Limit int `query:"limit" minimum:"1" maximum:"200" doc:"Maximum sessions to return"`
}

type SessionListResponse struct {
	Sessions []*domain.ReadingSession `json:"sessions"`
	Total    int                      `json:"total"`
}

type SessionListOutput struct {
	Body SessionListResponse
}

// === Handlers ===

func (s *Server) handleStartSession(ctx context.Context, input *StartSessionInput) (*SessionOutput, error) {
	session, err := s.services.Session.Start(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: session}, nil
}

func (s *Server) handlePauseSession(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
	session, err := s.services.Session.Pause(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: session}, nil
}

func (s *Server) handleResumeSession(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
	session, err := s.services.Session.Resume(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: session}, nil
}

func (s *Server) handleStopSession(ctx context.Context, input *StopSessionInput) (*SessionOutput, error) {
	session, err := s.services.Session.Stop(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: session}, nil
}

func (s *Server) handleQuickAdd(ctx context.Context, input *QuickAddInput) (*SessionOutput, error) {
	session, err := s.services.Session.QuickAdd(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: session}, nil
}

func (s *Server) handleListRecentSessions(ctx context.Context, input *ListRecentSessionsInput) (*SessionListOutput, error) {
	sessions, err := s.services.Session.ListRecentSessions(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return &SessionListOutput{Body: SessionListResponse{Sessions: sessions, Total: len(sessions)}}, nil
}

func (s *Server) handleDeleteSession(ctx context.Context, input *SessionIDInput) (*MessageOutput, error) {
	if err := s.services.Session.DeleteSession(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Session deleted"}}, nil
}

func (s *Server) handleListBookSessions(ctx context.Context, input *BookIDInput) (*SessionListOutput, error) {
	sessions, err := s.services.Session.ListBookSessions(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SessionListOutput{Body: SessionListResponse{Sessions: sessions, Total: len(sessions)}}, nil
}
