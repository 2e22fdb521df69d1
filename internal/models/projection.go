package models

import (
	"time"
)

// Projection is a point-spread projection for an event. Spread follows
// the home-perspective convention: negative means the home team is
// favored. All inputs must predate the event's kickoff.
type Projection struct {
	EventID      string             `db:"event_id" json:"event_id" validate:"required"`
	ModelVersion string             `db:"model_version" json:"model_version" validate:"required"`
	GeneratedAt  time.Time          `db:"generated_at" json:"generated_at"`
	Spread       float64            `db:"spread" json:"spread"`
	Components   map[string]float64 `db:"-" json:"components"`
	Disagreement float64            `db:"disagreement" json:"disagreement"`
	RawAdjust    float64            `db:"raw_adjust" json:"raw_adjust"`
	CappedAdjust float64            `db:"capped_adjust" json:"capped_adjust"`
	Tier         ConfidenceTier     `db:"tier" json:"tier"`
	SanityGated  bool               `db:"sanity_gated" json:"sanity_gated"`
	Warnings     []string           `db:"-" json:"warnings,omitempty"`
}

// AddWarning appends a warning, skipping duplicates
func (p *Projection) AddWarning(w string) {
	for _, existing := range p.Warnings {
		if existing == w {
			return
		}
	}
	p.Warnings = append(p.Warnings, w)
}
