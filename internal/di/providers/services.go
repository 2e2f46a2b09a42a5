package providers

import (
	"github.com/samber/do/v2"

	"github.com/pageturnapp/pageturn-server/internal/logger"
	"github.com/pageturnapp/pageturn-server/internal/media/covers"
	"github.com/pageturnapp/pageturn-server/internal/service"
	"github.com/pageturnapp/pageturn-server/internal/validation"
)

// ProvideForecastService provides the pace forecasting service.
func ProvideForecastService(i do.Injector) (*service.ForecastService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewForecastService(storeHandle.Store, log.Logger), nil
}

// ProvideSessionService provides the reading session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	forecastService := do.MustInvoke[*service.ForecastService](i)
	validate := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, forecastService, validate, log.Logger), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	coverManager := do.MustInvoke[*covers.Manager](i)
	validate := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, coverManager, validate, log.Logger), nil
}

// ProvideNoteService provides the note service.
func ProvideNoteService(i do.Injector) (*service.NoteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validate := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNoteService(storeHandle.Store, validate, log.Logger), nil
}

// ProvideStatsService provides the statistics service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStatsService(storeHandle.Store, log.Logger), nil
}

// ProvideExportService provides the export and import service.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExportService(storeHandle.Store, searchService, log.Logger), nil
}
