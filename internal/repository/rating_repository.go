package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/wheels195/cfb-market-edge-sub002/internal/database"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// PostgresRatingRepository implements RatingRepository for PostgreSQL
type PostgresRatingRepository struct {
	db *database.DB
}

// NewPostgresRatingRepository creates a new rating repository
func NewPostgresRatingRepository(db *database.DB) RatingRepository {
	return &PostgresRatingRepository{db: db}
}

// UpsertBatch persists a rating store snapshot in one transaction
func (r *PostgresRatingRepository) UpsertBatch(ctx context.Context, ratings []models.TeamRating) error {
	if len(ratings) == 0 {
		return nil
	}
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO team_ratings (team_id, season, rating, games_played, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (team_id, season) DO UPDATE SET
				rating = EXCLUDED.rating,
				games_played = EXCLUDED.games_played,
				updated_at = EXCLUDED.updated_at
		`
		for i := range ratings {
			rating := &ratings[i]
			_, err := tx.Exec(ctx, query,
				rating.TeamID, rating.Season, rating.Rating, rating.GamesPlayed, rating.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert rating for %s: %w", rating.TeamID, err)
			}
		}
		return nil
	})
}

// GetSeason retrieves all persisted ratings for a season
func (r *PostgresRatingRepository) GetSeason(ctx context.Context, season int) ([]*models.TeamRating, error) {
	query := `
		SELECT team_id, season, rating, games_played, updated_at
		FROM team_ratings
		WHERE season = $1
		ORDER BY rating DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*models.TeamRating
	for rows.Next() {
		rating := &models.TeamRating{}
		err := rows.Scan(&rating.TeamID, &rating.Season, &rating.Rating, &rating.GamesPlayed, &rating.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}
