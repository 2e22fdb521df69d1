package projection

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
	"github.com/wheels195/cfb-market-edge-sub002/internal/metrics"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// AnchorFactors carries the named adjustment signals for one event.
// A nil pointer means the signal's source had nothing for this event:
// it contributes exactly zero and is surfaced as a warning, never a
// silent directional bias.
type AnchorFactors struct {
	ConferenceDiff *float64 // conference strength differential, points
	InjuryImpact   *float64 // aggregate injury impact, points
	SharpMove      *float64 // sharp line-movement signal, points
	Weather        *float64 // weather impact, points
	Situational    *float64 // travel/rest/lookahead, points
}

// Anchorer builds market-anchored projections: the latest observed
// market line is the baseline and bounded, named adjustments are
// layered on top, with the total capped.
type Anchorer struct {
	cfg    config.AnchorConfig
	model  string
	logger *logrus.Logger
}

// NewAnchorer creates a market-anchored projector
func NewAnchorer(cfg config.AnchorConfig, modelVersion string, logger *logrus.Logger) *Anchorer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Anchorer{cfg: cfg, model: modelVersion, logger: logger}
}

// Anchor projects a spread by adjusting the observed market line.
// The snapshot must predate kickoff; a post-kickoff snapshot used for a
// pre-kickoff projection is a leakage violation.
func (a *Anchorer) Anchor(game *models.Game, line *models.MarketLine, factors AnchorFactors) (*models.Projection, error) {
	if game == nil {
		return nil, fmt.Errorf("game is required")
	}
	if line == nil {
		return nil, fmt.Errorf("event %s: market line is required for anchored projection", game.EventID)
	}
	if !line.CapturedAt.Before(game.StartTime) {
		metrics.LeakageViolationsTotal.Inc()
		return nil, &models.LeakageError{
			EventID:   game.EventID,
			InputKind: "market_line",
			InputTime: line.CapturedAt,
			Kickoff:   game.StartTime,
		}
	}

	proj := &models.Projection{
		EventID:      game.EventID,
		ModelVersion: a.model,
		GeneratedAt:  time.Now().UTC(),
		Components:   make(map[string]float64),
	}

	raw := 0.0
	present := 0
	apply := func(name string, value *float64, bound float64) {
		if value == nil {
			proj.Components[name] = 0
			proj.AddWarning(fmt.Sprintf("%s signal unavailable, contributing zero", name))
			metrics.RecordMissingInput(name)
			return
		}
		clamped := clamp(*value, bound)
		proj.Components[name] = clamped
		raw += clamped
		present++
	}

	apply("conference", factors.ConferenceDiff, a.cfg.ConferenceBound)
	apply("injury", factors.InjuryImpact, a.cfg.InjuryBound)
	apply("sharp_move", factors.SharpMove, a.cfg.SharpMoveBound)
	apply("weather", factors.Weather, a.cfg.WeatherBound)
	apply("situational", factors.Situational, a.cfg.SituationalBound)

	capped := clamp(raw, a.cfg.MaxTotalAdjustment)

	proj.RawAdjust = raw
	proj.CappedAdjust = capped
	proj.Spread = line.Points + capped
	proj.Tier = a.tier(capped, present)

	if a.cfg.SanityCeiling > 0 && math.Abs(raw) > a.cfg.SanityCeiling {
		proj.SanityGated = true
		proj.AddWarning("total adjustment exceeded plausibility ceiling")
		metrics.SanityGateTripsTotal.Inc()
		a.logger.WithFields(logrus.Fields{
			"event_id":   game.EventID,
			"raw_adjust": raw,
			"ceiling":    a.cfg.SanityCeiling,
		}).Warn("Sanity gate triggered")
	}

	metrics.ProjectionsTotal.Inc()
	return proj, nil
}

// tier maps adjustment magnitude and signal corroboration to a
// discrete confidence tier.
func (a *Anchorer) tier(capped float64, present int) models.ConfidenceTier {
	magnitude := math.Abs(capped)
	switch {
	case present >= 4 && magnitude >= 2.0:
		return models.TierVeryHigh
	case present >= 3 && magnitude >= 1.5:
		return models.TierHigh
	case present >= 2 && magnitude >= 1.0:
		return models.TierMedium
	case present >= 1 && magnitude > 0:
		return models.TierLow
	default:
		return models.TierSkip
	}
}

func clamp(v, bound float64) float64 {
	if bound <= 0 {
		return v
	}
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}
