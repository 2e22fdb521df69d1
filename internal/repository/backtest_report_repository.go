package repository

import (
	"context"
	"fmt"

	"github.com/wheels195/cfb-market-edge-sub002/internal/database"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// PostgresBacktestReportRepository implements BacktestReportRepository for PostgreSQL
type PostgresBacktestReportRepository struct {
	db *database.DB
}

// NewPostgresBacktestReportRepository creates a new backtest report repository
func NewPostgresBacktestReportRepository(db *database.DB) BacktestReportRepository {
	return &PostgresBacktestReportRepository{db: db}
}

// Save persists one backtest run summary
func (r *PostgresBacktestReportRepository) Save(ctx context.Context, report *models.BacktestReport) error {
	query := `
		INSERT INTO backtest_reports (
			id, model_version, run_date, train_end, bets, wins, losses, pushes, win_rate,
			roi_estimate, roi_lower, roi_upper,
			clv_estimate, clv_lower, clv_upper,
			brier_estimate, brier_lower, brier_upper,
			bootstrap_seed, exclusions, decision, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		report.ID, report.ModelVersion, report.RunDate, report.TrainEnd,
		report.Bets, report.Wins, report.Losses, report.Pushes, report.WinRate,
		report.ROI.Estimate, report.ROI.Lower, report.ROI.Upper,
		report.CLV.Estimate, report.CLV.Lower, report.CLV.Upper,
		report.Brier.Estimate, report.Brier.Lower, report.Brier.Upper,
		report.BootstrapSeed, report.Exclusions, report.Decision, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest report: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent backtest reports
func (r *PostgresBacktestReportRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestReport, error) {
	query := `
		SELECT id, model_version, run_date, train_end, bets, wins, losses, pushes, win_rate,
		       roi_estimate, roi_lower, roi_upper,
		       clv_estimate, clv_lower, clv_upper,
		       brier_estimate, brier_lower, brier_upper,
		       bootstrap_seed, exclusions, decision, created_at
		FROM backtest_reports
		ORDER BY run_date DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.BacktestReport
	for rows.Next() {
		report := &models.BacktestReport{}
		err := rows.Scan(
			&report.ID, &report.ModelVersion, &report.RunDate, &report.TrainEnd,
			&report.Bets, &report.Wins, &report.Losses, &report.Pushes, &report.WinRate,
			&report.ROI.Estimate, &report.ROI.Lower, &report.ROI.Upper,
			&report.CLV.Estimate, &report.CLV.Lower, &report.CLV.Upper,
			&report.Brier.Estimate, &report.Brier.Lower, &report.Brier.Upper,
			&report.BootstrapSeed, &report.Exclusions, &report.Decision, &report.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan backtest report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
