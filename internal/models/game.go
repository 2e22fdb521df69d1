package models

import (
	"time"
)

// GameStatus represents the lifecycle state of a game
type GameStatus string

const (
	GameStatusScheduled GameStatus = "scheduled"
	GameStatusCompleted GameStatus = "completed"
	GameStatusCancelled GameStatus = "cancelled"
)

// Game represents a single game result. Completed games are immutable:
// they are the source of truth for both rating updates and backtest grading.
type Game struct {
	EventID    string     `db:"event_id" json:"event_id" validate:"required"`
	Season     int        `db:"season" json:"season" validate:"required,gt=1900"`
	Week       int        `db:"week" json:"week" validate:"required,gte=0"`
	HomeTeamID string     `db:"home_team_id" json:"home_team_id" validate:"required"`
	AwayTeamID string     `db:"away_team_id" json:"away_team_id" validate:"required"`
	HomeScore  int        `db:"home_score" json:"home_score" validate:"gte=0"`
	AwayScore  int        `db:"away_score" json:"away_score" validate:"gte=0"`
	StartTime  time.Time  `db:"start_time" json:"start_time" validate:"required"`
	Status     GameStatus `db:"status" json:"status"`
}

// Margin returns home score minus away score
func (g *Game) Margin() int {
	return g.HomeScore - g.AwayScore
}

// AbsMargin returns the absolute margin of victory
func (g *Game) AbsMargin() int {
	m := g.Margin()
	if m < 0 {
		return -m
	}
	return m
}

// HomeWon reports whether the home team won outright
func (g *Game) HomeWon() bool {
	return g.HomeScore > g.AwayScore
}

// Tied reports whether the game ended level
func (g *Game) Tied() bool {
	return g.HomeScore == g.AwayScore
}

// IsCompleted checks if the game has a final result
func (g *Game) IsCompleted() bool {
	return g.Status == GameStatusCompleted
}
