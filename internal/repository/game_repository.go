package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/wheels195/cfb-market-edge-sub002/internal/database"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

const gameColumns = "event_id, season, week, home_team_id, away_team_id, home_score, away_score, start_time, status"

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db       *database.DB
	pageSize int
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB, pageSize int) GameRepository {
	return &PostgresGameRepository{db: db, pageSize: pageSize}
}

// Upsert inserts or replaces a game row keyed by event
func (r *PostgresGameRepository) Upsert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (` + gameColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id) DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			status = EXCLUDED.status
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		game.EventID, game.Season, game.Week, game.HomeTeamID, game.AwayTeamID,
		game.HomeScore, game.AwayScore, game.StartTime, game.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}
	return nil
}

// GetByEventID retrieves a game by its event identifier
func (r *PostgresGameRepository) GetByEventID(ctx context.Context, eventID string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE event_id = $1`

	game := &models.Game{}
	err := r.db.GetPool().QueryRow(ctx, query, eventID).Scan(
		&game.EventID, &game.Season, &game.Week, &game.HomeTeamID, &game.AwayTeamID,
		&game.HomeScore, &game.AwayScore, &game.StartTime, &game.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// GetCompletedBySeasonRange retrieves all games in the season range in
// ascending (season, start_time) order, paging through the table and
// verifying the full set arrived.
func (r *PostgresGameRepository) GetCompletedBySeasonRange(ctx context.Context, startSeason, endSeason int) ([]*models.Game, error) {
	countQuery := `SELECT COUNT(*) FROM games WHERE season BETWEEN $1 AND $2`
	var expected int
	if err := r.db.GetPool().QueryRow(ctx, countQuery, startSeason, endSeason).Scan(&expected); err != nil {
		return nil, fmt.Errorf("failed to count games: %w", err)
	}

	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE season BETWEEN $1 AND $2
		ORDER BY season ASC, start_time ASC, event_id ASC
		LIMIT $3 OFFSET $4
	`

	games := make([]*models.Game, 0, expected)
	for offset := 0; ; offset += r.pageSize {
		rows, err := r.db.GetPool().Query(ctx, query, startSeason, endSeason, r.pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to query games: %w", err)
		}

		fetched := 0
		for rows.Next() {
			game := &models.Game{}
			err := rows.Scan(
				&game.EventID, &game.Season, &game.Week, &game.HomeTeamID, &game.AwayTeamID,
				&game.HomeScore, &game.AwayScore, &game.StartTime, &game.Status,
			)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan game: %w", err)
			}
			games = append(games, game)
			fetched++
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read games: %w", err)
		}
		if fetched < r.pageSize {
			break
		}
	}

	if len(games) != expected {
		return nil, fmt.Errorf("games %d-%d: fetched %d of %d rows: %w",
			startSeason, endSeason, len(games), expected, models.ErrTruncatedResultSet)
	}
	return games, nil
}

// GetUpcoming retrieves scheduled games ordered by start time
func (r *PostgresGameRepository) GetUpcoming(ctx context.Context, limit int) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE status = 'scheduled' AND start_time > NOW()
		ORDER BY start_time ASC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game := &models.Game{}
		err := rows.Scan(
			&game.EventID, &game.Season, &game.Week, &game.HomeTeamID, &game.AwayTeamID,
			&game.HomeScore, &game.AwayScore, &game.StartTime, &game.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}
