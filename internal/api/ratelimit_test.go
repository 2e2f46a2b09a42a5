package api

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/config"
	"github.com/pageturnapp/pageturn-server/internal/service"
	"github.com/pageturnapp/pageturn-server/internal/store"
	"github.com/pageturnapp/pageturn-server/internal/validation"
)

func TestCatalogRateLimit(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	st, err := store.NewInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	validate := validation.New()
	forecastService := service.NewForecastService(st, logger)

	services := &Services{
		Book:     service.NewBookService(st, nil, validate, logger),
		Session:  service.NewSessionService(st, forecastService, validate, logger),
		Forecast: forecastService,
		Note:     service.NewNoteService(st, validate, logger),
		Stats:    service.NewStatsService(st, logger),
		Export:   service.NewExportService(st, nil, logger),
	}

	cfg := &config.Config{
		Server:  config.ServerConfig{Name: "PageTurn Test"},
		Catalog: config.CatalogConfig{Enabled: true, RequestsPerMinute: 1},
	}

	s := NewServer(cfg, st, services, logger)
	t.Cleanup(s.Close)
	api := humatest.Wrap(t, s.api)

	// The single-token burst allows one request; the next within the
	// same minute is refused before it reaches the handler.
	resp := api.Get("/api/v1/catalog/search?q=dune")
	assert.NotEqual(t, http.StatusTooManyRequests, resp.Code)

	resp = api.Get("/api/v1/catalog/search?q=dune")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)

	envelope := decodeBody[any](t, resp)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "RATE_LIMITED", envelope.Error.Code)

	// Other routes stay unaffected.
	resp = api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)
}
