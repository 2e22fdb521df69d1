package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// GenerateConsoleReport formats a backtest report for terminal output
func GenerateConsoleReport(report *models.BacktestReport) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Model Version: %s\n", report.ModelVersion))
	builder.WriteString(fmt.Sprintf("Train End Season: %d\n", report.TrainEnd))
	builder.WriteString(fmt.Sprintf("Bets: %d (W %d / L %d / P %d)\n", report.Bets, report.Wins, report.Losses, report.Pushes))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", report.WinRate*100))
	builder.WriteString(fmt.Sprintf("ROI: %.2f%% [%.2f%%, %.2f%%]\n", report.ROI.Estimate*100, report.ROI.Lower*100, report.ROI.Upper*100))
	builder.WriteString(fmt.Sprintf("CLV: %+.2f pts [%+.2f, %+.2f]\n", report.CLV.Estimate, report.CLV.Lower, report.CLV.Upper))
	builder.WriteString(fmt.Sprintf("Brier: %.4f [%.4f, %.4f]\n", report.Brier.Estimate, report.Brier.Lower, report.Brier.Upper))
	builder.WriteString(fmt.Sprintf("Bootstrap Seed: %d\n", report.BootstrapSeed))
	builder.WriteString("Edge Buckets:\n")
	for _, b := range report.EdgeBuckets {
		builder.WriteString(fmt.Sprintf("  [%.1f, %.1f): %d bets, win rate %.2f%% (expected %.2f%%)\n",
			b.LowerEdge, b.UpperEdge, b.Bets, b.WinRate*100, b.ExpectedWinRate*100))
	}
	if len(report.Exclusions) > 0 {
		builder.WriteString(fmt.Sprintf("Exclusions: %s\n", string(report.Exclusions)))
	}
	if report.Decision != "" {
		builder.WriteString(fmt.Sprintf("Decision: %s\n", report.Decision))
	}
	return builder.String()
}

// WriteJSONReport writes the full report to a file for downstream tooling
func WriteJSONReport(report *models.BacktestReport, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
