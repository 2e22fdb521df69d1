package repository

import (
	"context"

	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// BacktestSource adapts the repositories to the backtest engine's
// frozen snapshot source interface.
type BacktestSource struct {
	repos *Repositories
}

// NewBacktestSource creates a snapshot source backed by the repositories
func NewBacktestSource(repos *Repositories) *BacktestSource {
	return &BacktestSource{repos: repos}
}

// CompletedGames returns the season range in ascending (season,
// start_time) order, full set or error.
func (s *BacktestSource) CompletedGames(ctx context.Context, startSeason, endSeason int) ([]*models.Game, error) {
	return s.repos.Game.GetCompletedBySeasonRange(ctx, startSeason, endSeason)
}

// LineHistory returns the append-only snapshot series for an event
func (s *BacktestSource) LineHistory(ctx context.Context, eventID string) ([]*models.MarketLine, error) {
	return s.repos.MarketLine.GetHistory(ctx, eventID)
}

// MetricsFor returns the team-week efficiency row, or ErrNotFound
func (s *BacktestSource) MetricsFor(ctx context.Context, teamID string, season, week int) (*models.TeamWeekMetrics, error) {
	return s.repos.TeamMetrics.GetForTeamWeek(ctx, teamID, season, week)
}
