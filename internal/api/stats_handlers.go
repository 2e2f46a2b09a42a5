package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Get reading statistics",
		Description: "Aggregated reading time, pages, streaks, and genre breakdown for a period",
		Tags:        []string{"Stats"},
	}, s.handleGetStats)
}

type GetStatsInput struct {
	Period string `query:"period" enum:"day,week,month,year,all" default:"week" doc:"Aggregation period"`
}

type StatsOutput struct {
	Body *domain.ReadingStats
}

func (s *Server) handleGetStats(ctx context.Context, input *GetStatsInput) (*StatsOutput, error) {
	stats, err := s.services.Stats.GetStats(ctx, domain.StatsPeriod(input.Period))
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Body: stats}, nil
}
