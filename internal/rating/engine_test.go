package rating

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

func fixedKConfig() config.RatingConfig {
	return config.RatingConfig{
		Baseline:        1500,
		CarryoverFactor: 0.75,
		KFixed:          20,
	}
}

func newTestEngine(t *testing.T, cfg config.RatingConfig) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, NewStore(cfg.Baseline, cfg.CarryoverFactor), nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestExpectedScoreComplement(t *testing.T) {
	pairs := [][2]float64{
		{1500, 1500},
		{1600, 1400},
		{1342.7, 1881.2},
		{1000, 2000},
	}
	for _, pair := range pairs {
		sum := ExpectedScore(pair[0], pair[1]) + ExpectedScore(pair[1], pair[0])
		if math.Abs(sum-1.0) > 1e-12 {
			t.Fatalf("expected complement 1 for %v, got %.15f", pair, sum)
		}
	}
}

func TestUpdateIsZeroSum(t *testing.T) {
	engine := newTestEngine(t, fixedKConfig())
	engine.Store().Seed("a", 2023, 1580)
	engine.Store().Seed("b", 2023, 1430)

	result, err := engine.Update(completedGame("g1", "a", "b", 31, 10, time.Now()))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if math.Abs(result.HomeDelta+result.AwayDelta) > 1e-12 {
		t.Fatalf("expected zero-sum deltas, got %f and %f", result.HomeDelta, result.AwayDelta)
	}
}

func TestUpdateIncrementsGamesPlayed(t *testing.T) {
	engine := newTestEngine(t, fixedKConfig())

	if _, err := engine.Update(completedGame("g1", "a", "b", 17, 14, time.Now())); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if engine.Store().Get("a", 2023).GamesPlayed != 1 {
		t.Fatalf("expected home games played 1")
	}
	if engine.Store().Get("b", 2023).GamesPlayed != 1 {
		t.Fatalf("expected away games played 1")
	}
}

func TestUpdateRejectsIncompleteGame(t *testing.T) {
	engine := newTestEngine(t, fixedKConfig())
	game := completedGame("g1", "a", "b", 0, 0, time.Now())
	game.Status = models.GameStatusScheduled

	if _, err := engine.Update(game); !errors.Is(err, models.ErrGameNotCompleted) {
		t.Fatalf("expected ErrGameNotCompleted, got %v", err)
	}
}

func TestBlowoutCapReducesEffectiveK(t *testing.T) {
	cfg := fixedKConfig()
	cfg.BlowoutCapEnabled = true
	cfg.BlowoutMargin = 24
	cfg.BlowoutCapFactor = 0.5

	kickoff := time.Date(2023, 9, 2, 19, 0, 0, 0, time.UTC)

	blowout := newTestEngine(t, cfg)
	blowoutResult, err := blowout.Update(completedGame("g1", "a", "b", 45, 15, kickoff))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	normal := newTestEngine(t, cfg)
	normalResult, err := normal.Update(completedGame("g1", "a", "b", 27, 17, kickoff))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// 30-point win must carry a strictly smaller step than a 10-point win
	if blowoutResult.EffectiveK >= normalResult.EffectiveK {
		t.Fatalf("expected capped K %f below normal K %f", blowoutResult.EffectiveK, normalResult.EffectiveK)
	}
}

func TestDynamicKUsesBootstrapThenEstablished(t *testing.T) {
	cfg := fixedKConfig()
	cfg.DynamicK = true
	cfg.KNew = 32
	cfg.KEstablished = 16
	cfg.GamesEstablished = 2

	engine := newTestEngine(t, cfg)
	kickoff := time.Date(2023, 9, 2, 19, 0, 0, 0, time.UTC)

	first, err := engine.Update(completedGame("g1", "a", "b", 21, 14, kickoff))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if first.EffectiveK != 32 {
		t.Fatalf("expected bootstrap K 32, got %f", first.EffectiveK)
	}

	if _, err := engine.Update(completedGame("g2", "a", "b", 14, 10, kickoff.AddDate(0, 0, 7))); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	third, err := engine.Update(completedGame("g3", "a", "b", 28, 24, kickoff.AddDate(0, 0, 14)))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if third.EffectiveK != 16 {
		t.Fatalf("expected established K 16, got %f", third.EffectiveK)
	}
}

func TestNewEngineRejectsBothMarginStrategies(t *testing.T) {
	cfg := fixedKConfig()
	cfg.BlowoutCapEnabled = true
	cfg.MarginMultiplier = true

	_, err := NewEngine(cfg, NewStore(cfg.Baseline, cfg.CarryoverFactor), nil)
	if !errors.Is(err, models.ErrIncompatibleKPolicy) {
		t.Fatalf("expected ErrIncompatibleKPolicy, got %v", err)
	}
}

// Three-game hand-computed sequence: engine output must match the
// recurrence applied by hand to 1e-6.
func TestThreeGameSequenceMatchesHandComputation(t *testing.T) {
	engine := newTestEngine(t, fixedKConfig())
	kickoff := time.Date(2023, 9, 2, 19, 0, 0, 0, time.UTC)

	games := []*models.Game{
		completedGame("g1", "a", "b", 28, 14, kickoff),
		completedGame("g2", "b", "a", 21, 20, kickoff.AddDate(0, 0, 7)),
		completedGame("g3", "a", "b", 17, 17, kickoff.AddDate(0, 0, 14)),
	}

	ratingA, ratingB := 1500.0, 1500.0
	for _, game := range games {
		homeRating, awayRating := ratingA, ratingB
		if game.HomeTeamID == "b" {
			homeRating, awayRating = ratingB, ratingA
		}
		expected := 1.0 / (1.0 + math.Pow(10, (awayRating-homeRating)/400.0))
		actual := 0.5
		if game.HomeScore > game.AwayScore {
			actual = 1.0
		} else if game.HomeScore < game.AwayScore {
			actual = 0.0
		}
		delta := 20 * (actual - expected)
		if game.HomeTeamID == "a" {
			ratingA += delta
			ratingB -= delta
		} else {
			ratingB += delta
			ratingA -= delta
		}

		if _, err := engine.Update(game); err != nil {
			t.Fatalf("Update failed on %s: %v", game.EventID, err)
		}
	}

	gotA := engine.Store().Get("a", 2023).Rating
	gotB := engine.Store().Get("b", 2023).Rating
	if math.Abs(gotA-ratingA) > 1e-6 {
		t.Fatalf("team a: expected %f, got %f", ratingA, gotA)
	}
	if math.Abs(gotB-ratingB) > 1e-6 {
		t.Fatalf("team b: expected %f, got %f", ratingB, gotB)
	}
}

func TestRecencyBoostNeverMutatesStoredRating(t *testing.T) {
	cfg := fixedKConfig()
	cfg.RecencyEnabled = true
	cfg.RecencyWindow = 3
	cfg.RecencyDecay = 0.7
	cfg.RecencyBoostScale = 0.5

	engine := newTestEngine(t, cfg)
	kickoff := time.Date(2023, 9, 2, 19, 0, 0, 0, time.UTC)

	if _, err := engine.Update(completedGame("g1", "a", "b", 35, 7, kickoff)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	stored := engine.Store().Get("a", 2023).Rating

	boost := engine.ProjectionBoost("a", 2023)
	if boost <= 0 {
		t.Fatalf("expected positive boost after a win, got %f", boost)
	}
	if engine.Store().Get("a", 2023).Rating != stored {
		t.Fatalf("boost must not mutate the stored rating")
	}
}

func TestProjectionBoostZeroWhenDisabled(t *testing.T) {
	engine := newTestEngine(t, fixedKConfig())
	if boost := engine.ProjectionBoost("a", 2023); boost != 0 {
		t.Fatalf("expected zero boost with recency off, got %f", boost)
	}
}
