package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Decision is the promotion outcome of a backtest run
type Decision string

const (
	DecisionKeep   Decision = "keep"
	DecisionReject Decision = "reject"
)

// Interval is a point estimate with a bootstrap percentile interval
type Interval struct {
	Estimate float64 `json:"estimate"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
}

// EdgeBucketStat summarises graded bets falling in one absolute-edge bucket
type EdgeBucketStat struct {
	LowerEdge       float64 `json:"lower_edge"`
	UpperEdge       float64 `json:"upper_edge"`
	Bets            int     `json:"bets"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	Pushes          int     `json:"pushes"`
	WinRate         float64 `json:"win_rate"`
	ExpectedWinRate float64 `json:"expected_win_rate"`
}

// BacktestReport is the persisted summary of one historical replay run
type BacktestReport struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	ModelVersion  string           `db:"model_version" json:"model_version"`
	RunDate       time.Time        `db:"run_date" json:"run_date"`
	TrainEnd      int              `db:"train_end" json:"train_end"`
	Bets          int              `db:"bets" json:"bets"`
	Wins          int              `db:"wins" json:"wins"`
	Losses        int              `db:"losses" json:"losses"`
	Pushes        int              `db:"pushes" json:"pushes"`
	WinRate       float64          `db:"win_rate" json:"win_rate"`
	ROI           Interval         `db:"-" json:"roi"`
	CLV           Interval         `db:"-" json:"clv"`
	Brier         Interval         `db:"-" json:"brier"`
	BootstrapSeed int64            `db:"bootstrap_seed" json:"bootstrap_seed"`
	EdgeBuckets   []EdgeBucketStat `db:"-" json:"edge_buckets"`
	Exclusions    json.RawMessage  `db:"exclusions" json:"exclusions"`
	Decision      Decision         `db:"decision" json:"decision"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}
