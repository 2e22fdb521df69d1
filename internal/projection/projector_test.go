package projection

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

var kickoff = time.Date(2023, 11, 4, 19, 30, 0, 0, time.UTC)

func baseConfig() config.ProjectionConfig {
	return config.ProjectionConfig{
		ModelVersion:       "elo-v2",
		Divisor:            25,
		HomeFieldAdvantage: 2.5,
		RatingWeight:       0.5,
		CompositeWeight:    0.3,
		EfficiencyWeight:   0.2,
		CompositeHFA:       2.5,
		EfficiencyHFA:      2.0,
		CompositeScale:     1.0,
		EfficiencyScale:    0.35,
	}
}

func scheduledGame() *models.Game {
	return &models.Game{
		EventID:    "2023-wk10-uga-mizzou",
		Season:     2023,
		Week:       10,
		HomeTeamID: "georgia",
		AwayTeamID: "missouri",
		StartTime:  kickoff,
		Status:     models.GameStatusScheduled,
	}
}

func ratingInputs(home, away float64) Inputs {
	return Inputs{
		Game:       scheduledGame(),
		HomeRating: &models.TeamRating{TeamID: "georgia", Season: 2023, Rating: home, UpdatedAt: kickoff.AddDate(0, 0, -7)},
		AwayRating: &models.TeamRating{TeamID: "missouri", Season: 2023, Rating: away, UpdatedAt: kickoff.AddDate(0, 0, -7)},
	}
}

// Worked scenario: homeRating=1600, awayRating=1400, divisor=25,
// HFA=2.5 yields spread -((200/25)+2.5) = -10.5.
func TestPureRatingSpread(t *testing.T) {
	projector := NewProjector(baseConfig(), nil)

	proj, err := projector.Project(ratingInputs(1600, 1400))
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if math.Abs(proj.Spread-(-10.5)) > 1e-9 {
		t.Fatalf("expected spread -10.5, got %f", proj.Spread)
	}
}

func TestProjectionRejectsFutureRating(t *testing.T) {
	projector := NewProjector(baseConfig(), nil)
	in := ratingInputs(1600, 1400)
	in.HomeRating.UpdatedAt = kickoff.Add(time.Hour)

	_, err := projector.Project(in)
	var leak *models.LeakageError
	if !errors.As(err, &leak) {
		t.Fatalf("expected LeakageError, got %v", err)
	}
	if leak.InputKind != "rating" {
		t.Fatalf("expected rating leak, got %s", leak.InputKind)
	}
}

func TestProjectionRejectsFutureMetrics(t *testing.T) {
	cfg := baseConfig()
	cfg.EnsembleEnabled = true
	projector := NewProjector(cfg, nil)

	in := ratingInputs(1600, 1400)
	in.HomeMetrics = &models.TeamWeekMetrics{TeamID: "georgia", Season: 2023, Week: 10, EffectiveAt: kickoff}
	in.AwayMetrics = &models.TeamWeekMetrics{TeamID: "missouri", Season: 2023, Week: 10, EffectiveAt: kickoff.AddDate(0, 0, -3)}

	if _, err := projector.Project(in); !models.IsLeakage(err) {
		t.Fatalf("expected LeakageError, got %v", err)
	}
}

func TestProjectionAcceptsPastInputs(t *testing.T) {
	cfg := baseConfig()
	cfg.EnsembleEnabled = true
	projector := NewProjector(cfg, nil)

	in := ratingInputs(1600, 1400)
	in.HomeMetrics = &models.TeamWeekMetrics{TeamID: "georgia", Season: 2023, Week: 10, CompositeIdx: 20, OffenseIdx: 35, DefenseIdx: 12, EffectiveAt: kickoff.AddDate(0, 0, -3)}
	in.AwayMetrics = &models.TeamWeekMetrics{TeamID: "missouri", Season: 2023, Week: 10, CompositeIdx: 11, OffenseIdx: 28, DefenseIdx: 20, EffectiveAt: kickoff.AddDate(0, 0, -3)}

	if _, err := projector.Project(in); err != nil {
		t.Fatalf("Project failed: %v", err)
	}
}

func TestEnsembleDisagreementSpansComponents(t *testing.T) {
	cfg := baseConfig()
	cfg.EnsembleEnabled = true
	projector := NewProjector(cfg, nil)

	in := ratingInputs(1600, 1400)
	in.HomeMetrics = &models.TeamWeekMetrics{TeamID: "georgia", Season: 2023, Week: 10, CompositeIdx: 15, OffenseIdx: 30, DefenseIdx: 10, EffectiveAt: kickoff.AddDate(0, 0, -3)}
	in.AwayMetrics = &models.TeamWeekMetrics{TeamID: "missouri", Season: 2023, Week: 10, CompositeIdx: 10, OffenseIdx: 25, DefenseIdx: 18, EffectiveAt: kickoff.AddDate(0, 0, -3)}

	proj, err := projector.Project(in)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	minC, maxC := math.Inf(1), math.Inf(-1)
	for _, c := range proj.Components {
		minC = math.Min(minC, c)
		maxC = math.Max(maxC, c)
	}
	if math.Abs(proj.Disagreement-(maxC-minC)) > 1e-9 {
		t.Fatalf("disagreement %f does not match component span %f", proj.Disagreement, maxC-minC)
	}
}

func TestEnsembleDegradesToRatingOnMissingMetrics(t *testing.T) {
	cfg := baseConfig()
	cfg.EnsembleEnabled = true
	projector := NewProjector(cfg, nil)

	proj, err := projector.Project(ratingInputs(1600, 1400))
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if math.Abs(proj.Spread-(-10.5)) > 1e-9 {
		t.Fatalf("expected degraded ensemble to equal rating spread, got %f", proj.Spread)
	}
	if len(proj.Warnings) == 0 {
		t.Fatalf("expected a missing-metrics warning")
	}
}
