// Package projection builds point-spread projections from ratings and
// secondary efficiency signals. Spread convention is home-perspective:
// negative means the home team is favored.
package projection

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
	"github.com/wheels195/cfb-market-edge-sub002/internal/metrics"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// Component names reported in the projection breakdown
const (
	ComponentRating     = "rating"
	ComponentComposite  = "composite"
	ComponentEfficiency = "efficiency"
)

// Inputs carries everything a projection may read. Every input has an
// effective timestamp; anything at or after kickoff is a leakage
// violation, not a warning.
type Inputs struct {
	Game        *models.Game
	HomeRating  *models.TeamRating
	AwayRating  *models.TeamRating
	HomeBoost   float64
	AwayBoost   float64
	HomeMetrics *models.TeamWeekMetrics // nil when the feed has no row
	AwayMetrics *models.TeamWeekMetrics
}

// Projector computes pure-rating and ensemble spread projections
type Projector struct {
	cfg    config.ProjectionConfig
	logger *logrus.Logger
}

// NewProjector creates a projector from configuration
func NewProjector(cfg config.ProjectionConfig, logger *logrus.Logger) *Projector {
	if logger == nil {
		logger = logrus.New()
	}
	return &Projector{cfg: cfg, logger: logger}
}

// ModelVersion returns the configured model version string
func (p *Projector) ModelVersion() string {
	return p.cfg.ModelVersion
}

// Project produces a spread projection for a game. In ensemble mode it
// combines the rating signal with composite-index and
// efficiency-differential signals under fixed weights; otherwise the
// rating signal alone is used. A missing secondary input degrades that
// component to neutral (dropped, weights renormalized) with a warning.
func (p *Projector) Project(in Inputs) (*models.Projection, error) {
	if in.Game == nil {
		return nil, fmt.Errorf("game is required")
	}
	if in.HomeRating == nil || in.AwayRating == nil {
		return nil, fmt.Errorf("event %s: both team ratings are required", in.Game.EventID)
	}
	if err := p.checkTemporalSafety(in); err != nil {
		return nil, err
	}

	proj := &models.Projection{
		EventID:      in.Game.EventID,
		ModelVersion: p.cfg.ModelVersion,
		GeneratedAt:  time.Now().UTC(),
		Components:   make(map[string]float64),
	}

	ratingSpread := p.ratingSpread(in)
	proj.Components[ComponentRating] = ratingSpread

	if !p.cfg.EnsembleEnabled {
		proj.Spread = ratingSpread
		metrics.ProjectionsTotal.Inc()
		return proj, nil
	}

	type component struct {
		name   string
		weight float64
		spread float64
	}
	available := []component{{ComponentRating, p.cfg.RatingWeight, ratingSpread}}

	if in.HomeMetrics != nil && in.AwayMetrics != nil {
		composite := p.compositeSpread(in.HomeMetrics, in.AwayMetrics)
		efficiency := p.efficiencySpread(in.HomeMetrics, in.AwayMetrics)
		proj.Components[ComponentComposite] = composite
		proj.Components[ComponentEfficiency] = efficiency
		available = append(available,
			component{ComponentComposite, p.cfg.CompositeWeight, composite},
			component{ComponentEfficiency, p.cfg.EfficiencyWeight, efficiency},
		)
	} else {
		proj.AddWarning("secondary metrics unavailable, ensemble degraded to rating signal")
		metrics.RecordMissingInput("secondary_metrics")
		p.logger.WithField("event_id", in.Game.EventID).Warn("Secondary metrics missing, using rating signal only")
	}

	totalWeight := 0.0
	for _, c := range available {
		totalWeight += c.weight
	}
	combined := 0.0
	for _, c := range available {
		combined += c.spread * (c.weight / totalWeight)
	}

	minSpread, maxSpread := available[0].spread, available[0].spread
	for _, c := range available[1:] {
		if c.spread < minSpread {
			minSpread = c.spread
		}
		if c.spread > maxSpread {
			maxSpread = c.spread
		}
	}

	proj.Spread = combined
	proj.Disagreement = maxSpread - minSpread
	metrics.ProjectionsTotal.Inc()
	return proj, nil
}

func (p *Projector) ratingSpread(in Inputs) float64 {
	homeRating := in.HomeRating.Rating + in.HomeBoost
	awayRating := in.AwayRating.Rating + in.AwayBoost
	return -((homeRating-awayRating)/p.cfg.Divisor + p.cfg.HomeFieldAdvantage)
}

func (p *Projector) compositeSpread(home, away *models.TeamWeekMetrics) float64 {
	return -((home.CompositeIdx-away.CompositeIdx)*p.cfg.CompositeScale + p.cfg.CompositeHFA)
}

func (p *Projector) efficiencySpread(home, away *models.TeamWeekMetrics) float64 {
	return -((home.NetEfficiency()-away.NetEfficiency())*p.cfg.EfficiencyScale + p.cfg.EfficiencyHFA)
}

// checkTemporalSafety rejects any input effective at or after kickoff
func (p *Projector) checkTemporalSafety(in Inputs) error {
	kickoff := in.Game.StartTime

	for _, r := range []*models.TeamRating{in.HomeRating, in.AwayRating} {
		if !r.UpdatedAt.IsZero() && !r.UpdatedAt.Before(kickoff) {
			metrics.LeakageViolationsTotal.Inc()
			return &models.LeakageError{
				EventID:   in.Game.EventID,
				InputKind: "rating",
				InputTime: r.UpdatedAt,
				Kickoff:   kickoff,
			}
		}
	}
	for _, m := range []*models.TeamWeekMetrics{in.HomeMetrics, in.AwayMetrics} {
		if m != nil && !m.EffectiveAt.Before(kickoff) {
			metrics.LeakageViolationsTotal.Inc()
			return &models.LeakageError{
				EventID:   in.Game.EventID,
				InputKind: "secondary_metrics",
				InputTime: m.EffectiveAt,
				Kickoff:   kickoff,
			}
		}
	}
	return nil
}
