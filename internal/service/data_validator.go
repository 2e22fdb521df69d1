// Package service orchestrates the live pipeline: rating sync from
// completed games, projection of upcoming games and edge rescans
// against the latest market snapshots.
package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// DataValidator validates game and market line data before it enters
// the pipeline
type DataValidator struct {
	logger *logrus.Logger
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *logrus.Logger) *DataValidator {
	if logger == nil {
		logger = logrus.New()
	}
	return &DataValidator{logger: logger}
}

// ValidateGame validates game data for required fields and constraints
func (v *DataValidator) ValidateGame(game *models.Game) []string {
	var errors []string

	if game.EventID == "" {
		errors = append(errors, "event_id is required")
	}
	if game.HomeTeamID == "" || game.AwayTeamID == "" {
		errors = append(errors, "both team ids are required")
	}
	if game.HomeTeamID == game.AwayTeamID {
		errors = append(errors, "a team cannot play itself")
	}
	if game.Season < 1901 {
		errors = append(errors, fmt.Sprintf("season out of range, got %d", game.Season))
	}
	if game.Week < 0 || game.Week > 20 {
		errors = append(errors, fmt.Sprintf("week out of range (0-20), got %d", game.Week))
	}
	if game.StartTime.IsZero() {
		errors = append(errors, "start_time is required")
	}
	if game.HomeScore < 0 || game.AwayScore < 0 {
		errors = append(errors, "scores cannot be negative")
	}
	if game.IsCompleted() && game.HomeScore == 0 && game.AwayScore == 0 {
		errors = append(errors, "completed game has no score")
	}

	return errors
}

// ValidateLine validates a market line snapshot
func (v *DataValidator) ValidateLine(line *models.MarketLine) []string {
	var errors []string

	if line.EventID == "" {
		errors = append(errors, "event_id is required")
	}
	if line.Book == "" {
		errors = append(errors, "book is required")
	}
	if line.MarketType != models.MarketTypeSpread && line.MarketType != models.MarketTypeTotal {
		errors = append(errors, fmt.Sprintf("unknown market type %q", line.MarketType))
	}
	if line.CapturedAt.IsZero() {
		errors = append(errors, "captured_at is required")
	}
	if line.CapturedAt.After(time.Now().Add(time.Minute)) {
		errors = append(errors, "captured_at is in the future")
	}
	if line.MarketType == models.MarketTypeTotal && line.Points <= 0 {
		errors = append(errors, fmt.Sprintf("total must be positive, got %.1f", line.Points))
	}

	return errors
}
