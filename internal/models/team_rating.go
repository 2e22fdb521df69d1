package models

import (
	"math"
	"time"
)

// TeamRating represents a per-team-per-season strength estimate.
// It is mutated only by the rating update engine, strictly in
// chronological order; GamesPlayed is season-scoped and non-decreasing.
type TeamRating struct {
	TeamID      string    `db:"team_id" json:"team_id" validate:"required"`
	Season      int       `db:"season" json:"season" validate:"required"`
	Rating      float64   `db:"rating" json:"rating"`
	GamesPlayed int       `db:"games_played" json:"games_played" validate:"gte=0"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// IsFinite reports whether the rating is a usable number
func (r *TeamRating) IsFinite() bool {
	return !math.IsNaN(r.Rating) && !math.IsInf(r.Rating, 0)
}

// IsEstablished reports whether the team has played at least threshold games this season
func (r *TeamRating) IsEstablished(threshold int) bool {
	return r.GamesPlayed >= threshold
}

// TeamWeekMetrics holds per-team-per-week efficiency indices from the
// secondary metrics feed. A team-week may be absent entirely.
type TeamWeekMetrics struct {
	TeamID       string    `db:"team_id" json:"team_id" validate:"required"`
	Season       int       `db:"season" json:"season" validate:"required"`
	Week         int       `db:"week" json:"week" validate:"gte=0"`
	OffenseIdx   float64   `db:"offense_idx" json:"offense_idx"`
	DefenseIdx   float64   `db:"defense_idx" json:"defense_idx"`
	CompositeIdx float64   `db:"composite_idx" json:"composite_idx"`
	EffectiveAt  time.Time `db:"effective_at" json:"effective_at" validate:"required"`
}

// NetEfficiency returns the offense minus defense differential
func (m *TeamWeekMetrics) NetEfficiency() float64 {
	return m.OffenseIdx - m.DefenseIdx
}
