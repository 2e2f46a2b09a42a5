package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/service"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Adds a book to the catalog",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a filtered, cursor-paginated page of the catalog",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Applies a partial update to catalog fields",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book and its sessions, notes, and reading state",
		Tags:        []string{"Books"},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBookProgress",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}/progress",
		Summary:     "Update reading progress",
		Description: "Sets the current page and/or progress fraction",
		Tags:        []string{"Books"},
	}, s.handleUpdateProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "calculateBookProgress",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/calculate-progress",
		Summary:     "Recalculate pace forecast",
		Description: "Recomputes pages-per-hour, ETA, and daily target from recent sessions",
		Tags:        []string{"Books"},
	}, s.handleCalculateProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookReadingState",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reading-state",
		Summary:     "Get reading state",
		Description: "Returns the cached per-book session and forecast state",
		Tags:        []string{"Books"},
	}, s.handleGetReadingState)

	huma.Register(s.api, huma.Operation{
		OperationID: "downloadBookCover",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/cover",
		Summary:     "Download cover",
		Description: "Fetches a cover image from a URL and stores it with a blurhash placeholder",
		Tags:        []string{"Books"},
	}, s.handleDownloadCover)
}

// === DTOs ===

type CreateBookInput struct {
	Body service.CreateBookInput
}

type BookOutput struct {
	Body *domain.Book
}

type ListBooksInput struct {
	Status string `query:"status" enum:"toRead,reading,onHold,dnf,finished" doc:"Filter by status"`
	Format string `query:"format" enum:"paper,ebook,audio" doc:"Filter by format"`
	Limit  int    `query:"limit" minimum:"1" maximum:"100" doc:"Page size"`
	Cursor string `query:"cursor" doc:"Opaque pagination cursor"`
}

type ListBooksOutput struct {
	Body *store.PaginatedResult[*domain.Book]
}

type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.UpdateBookInput
}

type UpdateProgressInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.UpdateProgressInput
}

type ForecastResponse struct {
	AveragePagesPerHour float64    `json:"averagePagesPerHour" doc:"Pace over recent sessions"`
	ETA                 *time.Time `json:"eta,omitempty" doc:"Estimated finish time"`
	DailyTarget         int        `json:"dailyTarget" doc:"Pages per day to keep pace"`
}

type ForecastOutput struct {
	Body ForecastResponse
}

type ReadingStateOutput struct {
	Body *domain.BookReadingState
}

type DownloadCoverInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body struct {
		URL string `json:"url" minLength:"1" doc:"Image URL to download"`
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	book, err := s.services.Book.CreateBook(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	filter := store.BookFilter{
		Status: domain.BookStatus(input.Status),
		Format: domain.BookFormat(input.Format),
	}
	params := store.DefaultPaginationParams()
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Cursor = input.Cursor

	result, err := s.services.Book.ListBooks(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{Body: result}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	book, err := s.services.Book.UpdateBook(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	if err := s.services.Book.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleUpdateProgress(ctx context.Context, input *UpdateProgressInput) (*BookOutput, error) {
	book, err := s.services.Book.UpdateProgress(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleCalculateProgress(ctx context.Context, input *BookIDInput) (*ForecastOutput, error) {
	forecast, err := s.services.Forecast.CalculateProgress(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ForecastOutput{Body: ForecastResponse{
		AveragePagesPerHour: forecast.AveragePagesPerHour,
		ETA:                 forecast.ETA,
		DailyTarget:         forecast.DailyTarget,
	}}, nil
}

func (s *Server) handleGetReadingState(ctx context.Context, input *BookIDInput) (*ReadingStateOutput, error) {
	state, err := s.services.Forecast.GetReadingState(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ReadingStateOutput{Body: state}, nil
}

func (s *Server) handleDownloadCover(ctx context.Context, input *DownloadCoverInput) (*BookOutput, error) {
	book, err := s.services.Book.DownloadCover(ctx, input.ID, input.Body.URL)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}
