package database

import (
	"context"
	"fmt"

	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
)

// requiredTables are the tables the repository layer reads and writes.
var requiredTables = []string{
	"games",
	"market_lines",
	"team_ratings",
	"team_week_metrics",
	"edges",
	"backtest_reports",
}

// Initialize creates a database connection pool and verifies the
// schema has been migrated.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	for _, table := range requiredTables {
		var exists bool
		err := db.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)",
			table,
		).Scan(&exists)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("schema check failed for %s: %w", table, err)
		}
		if !exists {
			db.Close()
			return nil, fmt.Errorf("table %s not found, run database migrations first", table)
		}
	}

	return db, nil
}
