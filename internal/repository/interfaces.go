// Package repository provides data access for games, market lines,
// ratings, metrics, edges and backtest reports. Multi-row reads
// return the full result set or fail; a silently truncated page would
// corrupt rating sequencing and exclusion accounting downstream.
package repository

import (
	"context"
	"time"

	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// GameRepository defines the interface for game data access
type GameRepository interface {
	Upsert(ctx context.Context, game *models.Game) error
	GetByEventID(ctx context.Context, eventID string) (*models.Game, error)
	// GetCompletedBySeasonRange returns all games in the inclusive
	// season range in ascending (season, start_time) order.
	GetCompletedBySeasonRange(ctx context.Context, startSeason, endSeason int) ([]*models.Game, error)
	GetUpcoming(ctx context.Context, limit int) ([]*models.Game, error)
}

// MarketLineRepository defines the interface for line snapshot access.
// The snapshot series per event is append-only.
type MarketLineRepository interface {
	Insert(ctx context.Context, line *models.MarketLine) error
	InsertBatch(ctx context.Context, lines []*models.MarketLine) error
	// GetHistory returns every snapshot for an event ascending by
	// capture time.
	GetHistory(ctx context.Context, eventID string) ([]*models.MarketLine, error)
	// GetLatestBefore returns the newest snapshot captured strictly
	// before the cutoff, or ErrNotFound.
	GetLatestBefore(ctx context.Context, eventID string, marketType models.MarketType, cutoff time.Time) (*models.MarketLine, error)
}

// TeamMetricsRepository defines the interface for per-team-week
// efficiency metrics access
type TeamMetricsRepository interface {
	Upsert(ctx context.Context, metrics *models.TeamWeekMetrics) error
	GetForTeamWeek(ctx context.Context, teamID string, season, week int) (*models.TeamWeekMetrics, error)
}

// RatingRepository persists rating store snapshots between runs
type RatingRepository interface {
	UpsertBatch(ctx context.Context, ratings []models.TeamRating) error
	GetSeason(ctx context.Context, season int) ([]*models.TeamRating, error)
}

// EdgeRepository defines the interface for edge record access. Save
// replaces any prior record with the same (event, book, market) key.
type EdgeRepository interface {
	Save(ctx context.Context, edge *models.Edge) error
	GetByEventID(ctx context.Context, eventID string) ([]*models.Edge, error)
	GetQualified(ctx context.Context, limit int) ([]*models.Edge, error)
}

// BacktestReportRepository persists backtest run summaries
type BacktestReportRepository interface {
	Save(ctx context.Context, report *models.BacktestReport) error
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestReport, error)
}
