package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/pageturnapp/pageturn-server/internal/api"
	"github.com/pageturnapp/pageturn-server/internal/config"
	"github.com/pageturnapp/pageturn-server/internal/logger"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Book:     do.MustInvoke[*service.BookService](i),
		Session:  do.MustInvoke[*service.SessionService](i),
		Forecast: do.MustInvoke[*service.ForecastService](i),
		Note:     do.MustInvoke[*service.NoteService](i),
		Stats:    do.MustInvoke[*service.StatsService](i),
		Search:   do.MustInvoke[*service.SearchService](i),
		Catalog:  do.MustInvoke[*service.CatalogService](i),
		Export:   do.MustInvoke[*service.ExportService](i),
	}

	handler := api.NewServer(cfg, storeHandle.Store, services, log.Logger)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: server, handler: handler}, nil
}
