package rating

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
	"github.com/wheels195/cfb-market-edge-sub002/internal/metrics"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// ExpectedScore returns the expected outcome for a team rated rA
// against a team rated rB. ExpectedScore(a,b) + ExpectedScore(b,a) == 1.
func ExpectedScore(rA, rB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (rB-rA)/400.0))
}

// UpdateResult reports the outcome of applying one game
type UpdateResult struct {
	EventID    string
	HomeDelta  float64
	AwayDelta  float64
	EffectiveK float64
	Expected   float64 // expected home score before the update
}

// Engine consumes completed games in strict chronological order and
// updates both teams' ratings. One configurable engine covers the
// fixed-K, dynamic-K, blowout-capped and margin-multiplier variants;
// mode exclusivity is enforced by config validation and re-checked here.
type Engine struct {
	cfg     config.RatingConfig
	store   *Store
	recency *recencyTracker
	logger  *logrus.Logger
}

// NewEngine creates a rating update engine around an explicit store
func NewEngine(cfg config.RatingConfig, store *Store, logger *logrus.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("rating store is required")
	}
	if cfg.BlowoutCapEnabled && cfg.MarginMultiplier {
		return nil, models.ErrIncompatibleKPolicy
	}
	if logger == nil {
		logger = logrus.New()
	}

	e := &Engine{cfg: cfg, store: store, logger: logger}
	if cfg.RecencyEnabled {
		e.recency = newRecencyTracker(cfg.RecencyWindow, cfg.RecencyDecay, cfg.RecencyBoostScale)
	}
	return e, nil
}

// Store returns the engine's rating store
func (e *Engine) Store() *Store {
	return e.store
}

// Update applies one completed game. The home delta and away delta are
// symmetric (zero-sum); gamesPlayed increments for both teams.
func (e *Engine) Update(game *models.Game) (UpdateResult, error) {
	if game == nil {
		return UpdateResult{}, fmt.Errorf("game is required")
	}
	if !game.IsCompleted() {
		return UpdateResult{}, fmt.Errorf("game %s: %w", game.EventID, models.ErrGameNotCompleted)
	}

	home := e.store.Get(game.HomeTeamID, game.Season)
	away := e.store.Get(game.AwayTeamID, game.Season)

	expected := ExpectedScore(home.Rating, away.Rating)
	actual := actualScore(game)
	k := e.effectiveK(home, away, game.AbsMargin())
	multiplier := e.marginMultiplier(game.AbsMargin())

	delta := k * multiplier * (actual - expected)
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return UpdateResult{}, fmt.Errorf("game %s: %w", game.EventID, models.ErrRatingNotFinite)
	}

	if err := e.store.Apply(game, delta, -delta); err != nil {
		return UpdateResult{}, err
	}

	if e.recency != nil {
		e.recency.Record(game.HomeTeamID, game.Season, delta)
		e.recency.Record(game.AwayTeamID, game.Season, -delta)
	}

	metrics.RatingUpdatesTotal.Inc()
	e.logger.WithFields(logrus.Fields{
		"event_id": game.EventID,
		"expected": expected,
		"actual":   actual,
		"k":        k,
		"delta":    delta,
	}).Debug("Rating updated")

	return UpdateResult{
		EventID:    game.EventID,
		HomeDelta:  delta,
		AwayDelta:  -delta,
		EffectiveK: k * multiplier,
		Expected:   expected,
	}, nil
}

// ProjectionBoost returns the recency boost for a team, or zero when
// recency mode is off. The boost never mutates the stored rating; it
// only flows into projection.
func (e *Engine) ProjectionBoost(teamID string, season int) float64 {
	if e.recency == nil {
		return 0
	}
	return e.recency.Boost(teamID, season)
}

// ResetSeason rolls every rating toward baseline for a new season
func (e *Engine) ResetSeason() {
	e.store.ResetSeason()
	if e.recency != nil {
		e.recency.Reset()
	}
}

func actualScore(game *models.Game) float64 {
	switch {
	case game.HomeWon():
		return 1.0
	case game.Tied():
		return 0.5
	default:
		return 0.0
	}
}

// effectiveK resolves the step size: fixed by default, larger for teams
// with few games when dynamic mode is on, and damped for blowouts when
// the cap is on. With two teams at different maturity the smaller side
// drives the shared zero-sum step, so the dynamic K uses the lower
// games-played count of the pair.
func (e *Engine) effectiveK(home, away *models.TeamRating, margin int) float64 {
	k := e.cfg.KFixed
	if e.cfg.DynamicK {
		games := home.GamesPlayed
		if away.GamesPlayed < games {
			games = away.GamesPlayed
		}
		if games >= e.cfg.GamesEstablished {
			k = e.cfg.KEstablished
		} else {
			k = e.cfg.KNew
		}
	}
	if e.cfg.BlowoutCapEnabled && margin > e.cfg.BlowoutMargin {
		k *= e.cfg.BlowoutCapFactor
	}
	return k
}

func (e *Engine) marginMultiplier(margin int) float64 {
	if !e.cfg.MarginMultiplier {
		return 1.0
	}
	return math.Log(float64(margin)+1.0) * e.cfg.MarginScale
}
