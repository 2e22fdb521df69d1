package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/wheels195/cfb-market-edge-sub002/internal/database"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// PostgresTeamMetricsRepository implements TeamMetricsRepository for PostgreSQL
type PostgresTeamMetricsRepository struct {
	db *database.DB
}

// NewPostgresTeamMetricsRepository creates a new team metrics repository
func NewPostgresTeamMetricsRepository(db *database.DB) TeamMetricsRepository {
	return &PostgresTeamMetricsRepository{db: db}
}

// Upsert inserts or replaces one team-week metrics row
func (r *PostgresTeamMetricsRepository) Upsert(ctx context.Context, metrics *models.TeamWeekMetrics) error {
	query := `
		INSERT INTO team_week_metrics (team_id, season, week, offense_idx, defense_idx, composite_idx, effective_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (team_id, season, week) DO UPDATE SET
			offense_idx = EXCLUDED.offense_idx,
			defense_idx = EXCLUDED.defense_idx,
			composite_idx = EXCLUDED.composite_idx,
			effective_at = EXCLUDED.effective_at
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		metrics.TeamID, metrics.Season, metrics.Week,
		metrics.OffenseIdx, metrics.DefenseIdx, metrics.CompositeIdx, metrics.EffectiveAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team metrics: %w", err)
	}
	return nil
}

// GetForTeamWeek retrieves one team-week row, or ErrNotFound when the
// feed had no entry for it
func (r *PostgresTeamMetricsRepository) GetForTeamWeek(ctx context.Context, teamID string, season, week int) (*models.TeamWeekMetrics, error) {
	query := `
		SELECT team_id, season, week, offense_idx, defense_idx, composite_idx, effective_at
		FROM team_week_metrics
		WHERE team_id = $1 AND season = $2 AND week = $3
	`

	metrics := &models.TeamWeekMetrics{}
	err := r.db.GetPool().QueryRow(ctx, query, teamID, season, week).Scan(
		&metrics.TeamID, &metrics.Season, &metrics.Week,
		&metrics.OffenseIdx, &metrics.DefenseIdx, &metrics.CompositeIdx, &metrics.EffectiveAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team metrics: %w", err)
	}
	return metrics, nil
}
