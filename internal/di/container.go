// Package di provides dependency injection configuration for the PageTurn server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/pageturnapp/pageturn-server/internal/config"
	"github.com/pageturnapp/pageturn-server/internal/di/providers"
	"github.com/pageturnapp/pageturn-server/internal/logger"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Catalog and media
	do.Provide(injector, providers.ProvideCatalogClient)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideCoverManager)

	// Business services
	do.Provide(injector, providers.ProvideForecastService)
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideNoteService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideExportService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle
// management. This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)

	// Business services
	_ = do.MustInvoke[*service.ForecastService](injector)
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.NoteService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*service.ExportService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Populate the search index if it is empty but books exist.
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
