package repository

import (
	"context"
	"fmt"

	"github.com/wheels195/cfb-market-edge-sub002/internal/database"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

const edgeColumns = "id, event_id, book, market_type, market_line, model_line, raw_edge, capped_edge, side, confidence_tier, qualifies, reason_code, win_probability, expected_value, evaluated_at"

// PostgresEdgeRepository implements EdgeRepository for PostgreSQL
type PostgresEdgeRepository struct {
	db *database.DB
}

// NewPostgresEdgeRepository creates a new edge repository
func NewPostgresEdgeRepository(db *database.DB) EdgeRepository {
	return &PostgresEdgeRepository{db: db}
}

// Save replaces any prior record with the same (event, book, market) key
func (r *PostgresEdgeRepository) Save(ctx context.Context, edge *models.Edge) error {
	query := `
		INSERT INTO edges (` + edgeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (event_id, book, market_type) DO UPDATE SET
			id = EXCLUDED.id,
			market_line = EXCLUDED.market_line,
			model_line = EXCLUDED.model_line,
			raw_edge = EXCLUDED.raw_edge,
			capped_edge = EXCLUDED.capped_edge,
			side = EXCLUDED.side,
			confidence_tier = EXCLUDED.confidence_tier,
			qualifies = EXCLUDED.qualifies,
			reason_code = EXCLUDED.reason_code,
			win_probability = EXCLUDED.win_probability,
			expected_value = EXCLUDED.expected_value,
			evaluated_at = EXCLUDED.evaluated_at
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		edge.ID, edge.EventID, edge.Book, edge.MarketType, edge.MarketLine, edge.ModelLine,
		edge.RawEdge, edge.CappedEdge, edge.Side, edge.ConfidenceTier, edge.Qualifies,
		edge.ReasonCode, edge.WinProbability, edge.ExpectedValue, edge.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save edge: %w", err)
	}
	return nil
}

// GetByEventID retrieves all edge records for an event
func (r *PostgresEdgeRepository) GetByEventID(ctx context.Context, eventID string) ([]*models.Edge, error) {
	query := `SELECT ` + edgeColumns + ` FROM edges WHERE event_id = $1 ORDER BY book, market_type`
	return r.queryEdges(ctx, query, eventID)
}

// GetQualified retrieves the most recently evaluated qualifying edges
func (r *PostgresEdgeRepository) GetQualified(ctx context.Context, limit int) ([]*models.Edge, error) {
	query := `
		SELECT ` + edgeColumns + `
		FROM edges
		WHERE qualifies = true
		ORDER BY evaluated_at DESC
		LIMIT $1
	`
	return r.queryEdges(ctx, query, limit)
}

func (r *PostgresEdgeRepository) queryEdges(ctx context.Context, query string, args ...interface{}) ([]*models.Edge, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []*models.Edge
	for rows.Next() {
		edge := &models.Edge{}
		err := rows.Scan(
			&edge.ID, &edge.EventID, &edge.Book, &edge.MarketType, &edge.MarketLine, &edge.ModelLine,
			&edge.RawEdge, &edge.CappedEdge, &edge.Side, &edge.ConfidenceTier, &edge.Qualifies,
			&edge.ReasonCode, &edge.WinProbability, &edge.ExpectedValue, &edge.EvaluatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}
