package models

import (
	"time"

	"github.com/google/uuid"
)

// ConfidenceTier is a discrete confidence bucket for a qualified edge
type ConfidenceTier string

const (
	TierVeryHigh ConfidenceTier = "very_high"
	TierHigh     ConfidenceTier = "high"
	TierMedium   ConfidenceTier = "medium"
	TierLow      ConfidenceTier = "low"
	TierSkip     ConfidenceTier = "skip"
)

// ReasonCode explains why an edge did or did not qualify
type ReasonCode string

const (
	ReasonQualified        ReasonCode = "qualified"
	ReasonEdgeTooSmall     ReasonCode = "edge_too_small"
	ReasonEdgeTooLarge     ReasonCode = "edge_too_large"
	ReasonDisagreementGate ReasonCode = "disagreement_gate"
	ReasonSanityGate       ReasonCode = "sanity_gate"
	ReasonMissingLine      ReasonCode = "missing_line"
)

// Edge is a derived comparison of the market line against the model
// line, keyed by (event, book, market type). It is recomputed whenever
// a new market snapshot or projection arrives.
//
// Sign convention: edge = market line minus model line, everywhere.
type Edge struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	EventID        string         `db:"event_id" json:"event_id" validate:"required"`
	Book           string         `db:"book" json:"book" validate:"required"`
	MarketType     MarketType     `db:"market_type" json:"market_type" validate:"required"`
	MarketLine     float64        `db:"market_line" json:"market_line"`
	ModelLine      float64        `db:"model_line" json:"model_line"`
	RawEdge        float64        `db:"raw_edge" json:"raw_edge"`
	CappedEdge     float64        `db:"capped_edge" json:"capped_edge"`
	Side           Side           `db:"side" json:"side"`
	ConfidenceTier ConfidenceTier `db:"confidence_tier" json:"confidence_tier"`
	Qualifies      bool           `db:"qualifies" json:"qualifies"`
	ReasonCode     ReasonCode     `db:"reason_code" json:"reason_code"`
	WinProbability float64        `db:"win_probability" json:"win_probability"`
	ExpectedValue  float64        `db:"expected_value" json:"expected_value"`
	Warnings       []string       `db:"-" json:"warnings,omitempty"`
	EvaluatedAt    time.Time      `db:"evaluated_at" json:"evaluated_at"`
}

// Key returns the composite identity of the edge record
func (e *Edge) Key() string {
	return e.EventID + "/" + e.Book + "/" + string(e.MarketType)
}
