package backtest

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// BootstrapConfig configures the resampling step. The seed is the only
// source of randomness in a backtest run and is reported alongside the
// intervals so a run can be reproduced exactly.
type BootstrapConfig struct {
	Iterations      int
	Seed            int64
	ConfidenceLevel float64
}

// BootstrapResult carries percentile intervals for the headline metrics
type BootstrapResult struct {
	Iterations int
	Seed       int64
	ROI        models.Interval
	CLV        models.Interval
	Brier      models.Interval
}

// RunBootstrap resamples the graded bets with replacement and returns
// percentile confidence intervals for ROI, CLV and Brier. A zero seed
// is replaced with the current nanosecond clock and reported back.
func RunBootstrap(bets []BetResult, cfg BootstrapConfig) BootstrapResult {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	if cfg.ConfidenceLevel <= 0 || cfg.ConfidenceLevel >= 1 {
		cfg.ConfidenceLevel = 0.95
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	result := BootstrapResult{Iterations: cfg.Iterations, Seed: seed}
	if len(bets) == 0 {
		return result
	}

	rng := rand.New(rand.NewSource(seed))
	rois := make([]float64, cfg.Iterations)
	clvs := make([]float64, cfg.Iterations)
	briers := make([]float64, cfg.Iterations)

	resample := make([]BetResult, len(bets))
	for i := 0; i < cfg.Iterations; i++ {
		for j := range resample {
			resample[j] = bets[rng.Intn(len(bets))]
		}
		s := Summarize(resample)
		rois[i] = s.ROI
		clvs[i] = s.CLV
		briers[i] = s.Brier
	}

	base := Summarize(bets)
	alpha := (1 - cfg.ConfidenceLevel) / 2
	result.ROI = interval(base.ROI, rois, alpha)
	result.CLV = interval(base.CLV, clvs, alpha)
	result.Brier = interval(base.Brier, briers, alpha)
	return result
}

func interval(estimate float64, distribution []float64, alpha float64) models.Interval {
	return models.Interval{
		Estimate: estimate,
		Lower:    percentile(distribution, alpha),
		Upper:    percentile(distribution, 1-alpha),
	}
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
