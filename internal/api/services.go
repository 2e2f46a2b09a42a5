package api

import (
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves
// testability.
type Services struct {
	Book     *service.BookService
	Session  *service.SessionService
	Forecast *service.ForecastService
	Note     *service.NoteService
	Stats    *service.StatsService
	Search   *service.SearchService  // Local full-text search; nil disables the endpoint
	Catalog  *service.CatalogService // Open Library proxy; nil disables the endpoint
	Export   *service.ExportService
}
