package backtest

import (
	"github.com/sirupsen/logrus"
	"github.com/wheels195/cfb-market-edge-sub002/internal/logger"
	"github.com/wheels195/cfb-market-edge-sub002/internal/metrics"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// Candidate bundles one model's test-set results for promotion review:
// the whole-period summary plus the same bets split into disjoint
// early and late sub-periods.
type Candidate struct {
	ModelVersion string
	Overall      Summary
	Early        Summary
	Late         Summary
}

// PromotionCriteria names the comparisons a candidate is judged on
type PromotionCriteria struct {
	CLVImproved     bool            `json:"clv_improved"`
	BrierImproved   bool            `json:"brier_improved"`
	BucketsMonotone bool            `json:"buckets_monotone"`
	CriteriaMet     int             `json:"criteria_met"`
	SignConsistent  bool            `json:"sign_consistent"`
	Decision        models.Decision `json:"decision"`
}

// SplitByWeek partitions graded bets into early and late sub-periods
// at the given week boundary (early includes the boundary week).
func SplitByWeek(bets []BetResult, boundaryWeek int) (early, late []BetResult) {
	for _, bet := range bets {
		if bet.Week <= boundaryWeek {
			early = append(early, bet)
		} else {
			late = append(late, bet)
		}
	}
	return early, late
}

// NewCandidate builds a promotion candidate from one replay's bets
func NewCandidate(modelVersion string, bets []BetResult, boundaryWeek int) Candidate {
	early, late := SplitByWeek(bets, boundaryWeek)
	return Candidate{
		ModelVersion: modelVersion,
		Overall:      Summarize(bets),
		Early:        Summarize(early),
		Late:         Summarize(late),
	}
}

// DecidePromotion gates a candidate against the baseline. The
// candidate is kept only if it improves at least two of CLV, Brier
// and edge-bucket monotonicity on the held-out period, and each
// counted improvement points the same way in both sub-periods. A sign
// flip between sub-periods blocks promotion even when the aggregate
// improves.
func DecidePromotion(candidate, baseline Candidate, log *logrus.Logger) PromotionCriteria {
	criteria := PromotionCriteria{
		CLVImproved:     candidate.Overall.CLV > baseline.Overall.CLV,
		BrierImproved:   candidate.Overall.Brier < baseline.Overall.Brier,
		BucketsMonotone: BucketsMonotonic(candidate.Overall.EdgeBuckets) && !BucketsMonotonic(baseline.Overall.EdgeBuckets),
	}
	// Matching the baseline's monotone shape counts when the
	// baseline already has it.
	if BucketsMonotonic(candidate.Overall.EdgeBuckets) && BucketsMonotonic(baseline.Overall.EdgeBuckets) {
		criteria.BucketsMonotone = true
	}

	for _, met := range []bool{criteria.CLVImproved, criteria.BrierImproved, criteria.BucketsMonotone} {
		if met {
			criteria.CriteriaMet++
		}
	}

	criteria.SignConsistent = signConsistent(candidate, baseline)

	criteria.Decision = models.DecisionReject
	if criteria.CriteriaMet >= 2 && criteria.SignConsistent {
		criteria.Decision = models.DecisionKeep
	}
	metrics.BacktestRunsTotal.WithLabelValues(string(criteria.Decision)).Inc()

	if log != nil {
		audit := logger.NewAuditLogger(log)
		audit.LogPromotionDecision(candidate.ModelVersion, baseline.ModelVersion, string(criteria.Decision), criteria.CriteriaMet, criteria.SignConsistent)
	}
	return criteria
}

// signConsistent verifies that the CLV and Brier deltas point the same
// direction in the early and late sub-periods. Sub-periods with no
// bets on either side cannot corroborate and fail the check.
func signConsistent(candidate, baseline Candidate) bool {
	if candidate.Early.Bets == 0 || candidate.Late.Bets == 0 ||
		baseline.Early.Bets == 0 || baseline.Late.Bets == 0 {
		return false
	}
	clvEarly := candidate.Early.CLV - baseline.Early.CLV
	clvLate := candidate.Late.CLV - baseline.Late.CLV
	brierEarly := baseline.Early.Brier - candidate.Early.Brier
	brierLate := baseline.Late.Brier - candidate.Late.Brier
	return sameSign(clvEarly, clvLate) && sameSign(brierEarly, brierLate)
}

func sameSign(a, b float64) bool {
	if a == 0 || b == 0 {
		return a == b
	}
	return (a > 0) == (b > 0)
}
