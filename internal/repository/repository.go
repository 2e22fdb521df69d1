package repository

import (
	"fmt"

	"github.com/wheels195/cfb-market-edge-sub002/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Game           GameRepository
	MarketLine     MarketLineRepository
	TeamMetrics    TeamMetricsRepository
	Rating         RatingRepository
	Edge           EdgeRepository
	BacktestReport BacktestReportRepository
}

// NewRepositories creates and returns all repository implementations.
// pageSize bounds each fetch page on multi-row reads; the total is
// verified against a count so truncation never passes silently.
func NewRepositories(db *database.DB, pageSize int) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if pageSize <= 0 {
		pageSize = 1000
	}

	return &Repositories{
		Game:           NewPostgresGameRepository(db, pageSize),
		MarketLine:     NewPostgresMarketLineRepository(db),
		TeamMetrics:    NewPostgresTeamMetricsRepository(db),
		Rating:         NewPostgresRatingRepository(db),
		Edge:           NewPostgresEdgeRepository(db),
		BacktestReport: NewPostgresBacktestReportRepository(db),
	}, nil
}
