package backtest

import (
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// Summary holds the point estimates aggregated from one replay's
// graded bets. Pushes count toward neither the win-rate nor the Brier
// denominator; they still tie up stake for ROI purposes at zero
// profit.
type Summary struct {
	Bets        int
	Wins        int
	Losses      int
	Pushes      int
	WinRate     float64
	ROI         float64
	CLV         float64
	Brier       float64
	EdgeBuckets []models.EdgeBucketStat
}

// bucketBounds mirror the calibration sub-ranges so live bucket win
// rates can be laid against frozen expectations.
var bucketBounds = []struct {
	lower, upper, expected float64
}{
	{2.5, 3.0, 0.595},
	{3.0, 4.0, 0.558},
	{4.0, 5.0, 0.548},
}

// Summarize aggregates graded bets into point estimates
func Summarize(bets []BetResult) Summary {
	s := Summary{Bets: len(bets)}

	profit := 0.0
	staked := 0.0
	clvSum := 0.0
	brierSum := 0.0
	graded := 0

	for _, bet := range bets {
		profit += bet.Profit
		staked++
		clvSum += bet.CLV
		switch bet.Outcome {
		case OutcomeWin:
			s.Wins++
			graded++
			brierSum += bet.BrierComponent
		case OutcomeLoss:
			s.Losses++
			graded++
			brierSum += bet.BrierComponent
		case OutcomePush:
			s.Pushes++
		}
	}

	if graded > 0 {
		s.WinRate = float64(s.Wins) / float64(graded)
		s.Brier = brierSum / float64(graded)
	}
	if staked > 0 {
		s.ROI = profit / staked
		s.CLV = clvSum / staked
	}
	s.EdgeBuckets = bucketStats(bets)
	return s
}

// bucketStats tallies graded bets per absolute-edge bucket
func bucketStats(bets []BetResult) []models.EdgeBucketStat {
	stats := make([]models.EdgeBucketStat, len(bucketBounds))
	for i, b := range bucketBounds {
		stats[i] = models.EdgeBucketStat{
			LowerEdge:       b.lower,
			UpperEdge:       b.upper,
			ExpectedWinRate: b.expected,
		}
	}

	for _, bet := range bets {
		for i := range stats {
			if bet.AbsEdge >= stats[i].LowerEdge && bet.AbsEdge < stats[i].UpperEdge {
				stats[i].Bets++
				switch bet.Outcome {
				case OutcomeWin:
					stats[i].Wins++
				case OutcomeLoss:
					stats[i].Losses++
				case OutcomePush:
					stats[i].Pushes++
				}
				break
			}
		}
	}

	for i := range stats {
		graded := stats[i].Wins + stats[i].Losses
		if graded > 0 {
			stats[i].WinRate = float64(stats[i].Wins) / float64(graded)
		}
	}
	return stats
}

// BucketsMonotonic reports whether bucket win rates decrease (weakly)
// as edge magnitude grows, matching the calibration's shape. Buckets
// with no graded bets are skipped rather than treated as zero.
func BucketsMonotonic(buckets []models.EdgeBucketStat) bool {
	prev := -1.0
	first := true
	for _, b := range buckets {
		if b.Wins+b.Losses == 0 {
			continue
		}
		if !first && b.WinRate > prev {
			return false
		}
		prev = b.WinRate
		first = false
	}
	return true
}
