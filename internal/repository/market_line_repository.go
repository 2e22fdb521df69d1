package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/wheels195/cfb-market-edge-sub002/internal/database"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

const lineColumns = "event_id, book, market_type, side, points, price, captured_at"

// PostgresMarketLineRepository implements MarketLineRepository for PostgreSQL
type PostgresMarketLineRepository struct {
	db *database.DB
}

// NewPostgresMarketLineRepository creates a new market line repository
func NewPostgresMarketLineRepository(db *database.DB) MarketLineRepository {
	return &PostgresMarketLineRepository{db: db}
}

// Insert appends one snapshot to an event's series
func (r *PostgresMarketLineRepository) Insert(ctx context.Context, line *models.MarketLine) error {
	query := `
		INSERT INTO market_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		line.EventID, line.Book, line.MarketType, line.Side, line.Points, line.Price, line.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert market line: %w", err)
	}
	return nil
}

// InsertBatch appends snapshots via COPY within one transaction
func (r *PostgresMarketLineRepository) InsertBatch(ctx context.Context, lines []*models.MarketLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		rows := make([][]interface{}, 0, len(lines))
		for _, line := range lines {
			rows = append(rows, []interface{}{
				line.EventID, line.Book, line.MarketType, line.Side, line.Points, line.Price, line.CapturedAt,
			})
		}
		copied, err := tx.CopyFrom(ctx,
			pgx.Identifier{"market_lines"},
			[]string{"event_id", "book", "market_type", "side", "points", "price", "captured_at"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("failed to copy market line batch: %w", err)
		}
		if int(copied) != len(lines) {
			return fmt.Errorf("copied %d of %d market lines", copied, len(lines))
		}
		return nil
	})
}

// GetHistory returns every snapshot for an event ascending by capture time
func (r *PostgresMarketLineRepository) GetHistory(ctx context.Context, eventID string) ([]*models.MarketLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM market_lines
		WHERE event_id = $1
		ORDER BY captured_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line history: %w", err)
	}
	defer rows.Close()

	var lines []*models.MarketLine
	for rows.Next() {
		line := &models.MarketLine{}
		err := rows.Scan(
			&line.EventID, &line.Book, &line.MarketType, &line.Side, &line.Points, &line.Price, &line.CapturedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// GetLatestBefore returns the newest snapshot strictly before the cutoff
func (r *PostgresMarketLineRepository) GetLatestBefore(ctx context.Context, eventID string, marketType models.MarketType, cutoff time.Time) (*models.MarketLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM market_lines
		WHERE event_id = $1 AND market_type = $2 AND captured_at < $3
		ORDER BY captured_at DESC
		LIMIT 1
	`

	line := &models.MarketLine{}
	err := r.db.GetPool().QueryRow(ctx, query, eventID, marketType, cutoff).Scan(
		&line.EventID, &line.Book, &line.MarketType, &line.Side, &line.Points, &line.Price, &line.CapturedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest line: %w", err)
	}
	return line, nil
}
