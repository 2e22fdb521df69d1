package models

import (
	"time"
)

// MarketType represents the kind of market a line belongs to
type MarketType string

const (
	MarketTypeSpread MarketType = "spread"
	MarketTypeTotal  MarketType = "total"
)

// Side represents the side of a market a bet is on
type Side string

const (
	SideHome  Side = "home"
	SideAway  Side = "away"
	SideOver  Side = "over"
	SideUnder Side = "under"
	SideNone  Side = "none"
)

// MarketLine is a point-in-time snapshot of a posted line. The series
// for an event is append-only; snapshots are never mutated.
type MarketLine struct {
	EventID    string     `db:"event_id" json:"event_id" validate:"required"`
	Book       string     `db:"book" json:"book" validate:"required"`
	MarketType MarketType `db:"market_type" json:"market_type" validate:"required,oneof=spread total"`
	Side       Side       `db:"side" json:"side"`
	Points     float64    `db:"points" json:"points"`
	Price      int        `db:"price" json:"price"` // American price, 0 when the book posted no price
	CapturedAt time.Time  `db:"captured_at" json:"captured_at" validate:"required"`
}

// HasPrice reports whether an explicit price accompanied the line
func (l *MarketLine) HasPrice() bool {
	return l.Price != 0
}

// PriceOrVig returns the snapshot price, falling back to the standard vig
func (l *MarketLine) PriceOrVig() int {
	if l.HasPrice() {
		return l.Price
	}
	return StandardVigPrice
}
