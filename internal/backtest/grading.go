package backtest

import (
	"fmt"

	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// GradeBet settles one simulated bet against the final score. Stake is
// one unit; the price defaults to the standard vig when the snapshot
// carried none. An exact-number outcome is a push: zero profit, and
// the bet drops out of the win-rate and Brier denominators.
func GradeBet(game *models.Game, edge *models.Edge, betLine *models.MarketLine, closing *models.MarketLine) (BetResult, error) {
	if !game.IsCompleted() {
		return BetResult{}, fmt.Errorf("event %s: %w", game.EventID, models.ErrGameNotCompleted)
	}

	result := BetResult{
		EventID:        game.EventID,
		Season:         game.Season,
		Week:           game.Week,
		Side:           edge.Side,
		BetLine:        betLine.Points,
		ClosingLine:    closing.Points,
		Price:          betLine.PriceOrVig(),
		AbsEdge:        abs(edge.RawEdge),
		WinProbability: edge.WinProbability,
	}

	covered, push, err := coverResult(game, betLine.MarketType, edge.Side, betLine.Points)
	if err != nil {
		return BetResult{}, err
	}

	switch {
	case push:
		result.Outcome = OutcomePush
		result.Profit = 0
	case covered:
		result.Outcome = OutcomeWin
		result.Profit = models.ProfitPerUnit(result.Price)
		result.BrierComponent = (edge.WinProbability - 1) * (edge.WinProbability - 1)
	default:
		result.Outcome = OutcomeLoss
		result.Profit = -1
		result.BrierComponent = edge.WinProbability * edge.WinProbability
	}

	result.CLV = ClosingLineValue(betLine.MarketType, edge.Side, betLine.Points, closing.Points)
	return result, nil
}

// coverResult decides whether the bet side covered the line
func coverResult(game *models.Game, marketType models.MarketType, side models.Side, points float64) (covered, push bool, err error) {
	switch marketType {
	case models.MarketTypeSpread:
		// Home-perspective line: the home side covers when the
		// final margin beats the number it laid.
		adjusted := float64(game.Margin()) + points
		if adjusted == 0 {
			return false, true, nil
		}
		switch side {
		case models.SideHome:
			return adjusted > 0, false, nil
		case models.SideAway:
			return adjusted < 0, false, nil
		}
	case models.MarketTypeTotal:
		total := float64(game.HomeScore + game.AwayScore)
		if total == points {
			return false, true, nil
		}
		switch side {
		case models.SideOver:
			return total > points, false, nil
		case models.SideUnder:
			return total < points, false, nil
		}
	}
	return false, false, fmt.Errorf("event %s: cannot grade side %s on market %s", game.EventID, side, marketType)
}

// ClosingLineValue measures, in points, how much better the bet number
// is than the closing number for the chosen side. Home and under bets
// profit from the number moving down after the bet; away and over bets
// from it moving up.
func ClosingLineValue(marketType models.MarketType, side models.Side, betPoints, closingPoints float64) float64 {
	switch {
	case marketType == models.MarketTypeSpread && side == models.SideHome:
		return betPoints - closingPoints
	case marketType == models.MarketTypeSpread && side == models.SideAway:
		return closingPoints - betPoints
	case marketType == models.MarketTypeTotal && side == models.SideOver:
		return closingPoints - betPoints
	case marketType == models.MarketTypeTotal && side == models.SideUnder:
		return betPoints - closingPoints
	}
	return 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
