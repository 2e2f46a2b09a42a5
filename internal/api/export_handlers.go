package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pageturnapp/pageturn-server/internal/store"
)

func (s *Server) registerExportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/export",
		Summary:     "Export library",
		Description: "Returns the entire library as a portable JSON document",
		Tags:        []string{"Export"},
	}, s.handleExportLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "importLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/import",
		Summary:     "Import library",
		Description: "Replaces the library with a previously exported document",
		Tags:        []string{"Export"},
	}, s.handleImportLibrary)
}

type ExportOutput struct {
	Body *store.ExportDocument
}

type ImportInput struct {
	Body store.ExportDocument
}

type ImportResponse struct {
	Message string `json:"message"`
	Books   int    `json:"books"`
}

type ImportOutput struct {
	Body ImportResponse
}

func (s *Server) handleExportLibrary(ctx context.Context, _ *struct{}) (*ExportOutput, error) {
	doc, err := s.services.Export.Export(ctx)
	if err != nil {
		return nil, err
	}
	return &ExportOutput{Body: doc}, nil
}

func (s *Server) handleImportLibrary(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	if err := s.services.Export.Import(ctx, &input.Body); err != nil {
		return nil, err
	}
	return &ImportOutput{Body: ImportResponse{Message: "Library imported", Books: len(input.Body.Books)}}, nil
}
