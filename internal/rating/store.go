// Package rating implements the team rating store and update engine.
package rating

import (
	"fmt"
	"sync"
	"time"

	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

type key struct {
	teamID string
	season int
}

// Store holds per-team-per-season ratings. It is an explicit value
// passed into the engine rather than a package-level map, so parallel
// tests and backtest runs stay isolated.
type Store struct {
	mu        sync.RWMutex
	baseline  float64
	carryover float64
	ratings   map[key]*models.TeamRating
	// last kickoff applied per team-season, guards chronological order
	watermark map[key]time.Time
}

// NewStore creates an empty rating store
func NewStore(baseline, carryoverFactor float64) *Store {
	return &Store{
		baseline:  baseline,
		carryover: carryoverFactor,
		ratings:   make(map[key]*models.TeamRating),
		watermark: make(map[key]time.Time),
	}
}

// Baseline returns the seeding baseline
func (s *Store) Baseline() float64 {
	return s.baseline
}

// Get returns the rating for a team-season, lazily seeding it on first
// reference: from the prior season's rolled-over value when one exists,
// otherwise from baseline. Regression toward baseline happens once, in
// ResetSeason; the seed carries the rolled-over value unchanged.
func (s *Store) Get(teamID string, season int) *models.TeamRating {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(teamID, season)
}

func (s *Store) getLocked(teamID string, season int) *models.TeamRating {
	k := key{teamID: teamID, season: season}
	if r, ok := s.ratings[k]; ok {
		return r
	}

	seed := s.baseline
	if prior, ok := s.ratings[key{teamID: teamID, season: season - 1}]; ok {
		seed = prior.Rating
	}

	r := &models.TeamRating{TeamID: teamID, Season: season, Rating: seed, GamesPlayed: 0}
	s.ratings[k] = r
	return r
}

// Seed explicitly sets a team's rating for a season, resetting its
// games-played counter. Intended for loading frozen historical state.
func (s *Store) Seed(teamID string, season int, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[key{teamID: teamID, season: season}] = &models.TeamRating{
		TeamID: teamID, Season: season, Rating: value, GamesPlayed: 0,
	}
}

// Apply mutates both teams' ratings from one game update. The deltas
// have already been computed by the engine; the store enforces the
// chronological read-after-write chain and finiteness.
func (s *Store) Apply(game *models.Game, homeDelta, awayDelta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, teamID := range []string{game.HomeTeamID, game.AwayTeamID} {
		k := key{teamID: teamID, season: game.Season}
		if last, ok := s.watermark[k]; ok && !game.StartTime.After(last) {
			return fmt.Errorf("team %s season %d: game %s at %s: %w",
				teamID, game.Season, game.EventID, game.StartTime.Format(time.RFC3339), models.ErrOutOfOrderUpdate)
		}
	}

	home := s.getLocked(game.HomeTeamID, game.Season)
	away := s.getLocked(game.AwayTeamID, game.Season)

	home.Rating += homeDelta
	away.Rating += awayDelta
	home.GamesPlayed++
	away.GamesPlayed++
	home.UpdatedAt = game.StartTime
	away.UpdatedAt = game.StartTime

	if !home.IsFinite() || !away.IsFinite() {
		return fmt.Errorf("game %s: %w", game.EventID, models.ErrRatingNotFinite)
	}

	s.watermark[key{teamID: game.HomeTeamID, season: game.Season}] = game.StartTime
	s.watermark[key{teamID: game.AwayTeamID, season: game.Season}] = game.StartTime
	return nil
}

// LastUpdated returns the kickoff time of the last game applied for a
// team-season, and whether any update has been applied at all.
func (s *Store) LastUpdated(teamID string, season int) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.watermark[key{teamID: teamID, season: season}]
	return t, ok
}

// ResetSeason regresses every rating toward baseline by the carryover
// factor and zeroes the games-played counters. Watermarks are cleared:
// a new season starts a fresh timeline.
func (s *Store) ResetSeason() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.ratings {
		r.Rating = s.baseline + (r.Rating-s.baseline)*s.carryover
		r.GamesPlayed = 0
	}
	s.watermark = make(map[key]time.Time)
}

// Snapshot returns a deep copy of all ratings, for isolated replays
func (s *Store) Snapshot() []models.TeamRating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TeamRating, 0, len(s.ratings))
	for _, r := range s.ratings {
		out = append(out, *r)
	}
	return out
}

// Len returns the number of team-season ratings held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ratings)
}
