package engine

import (
	"math"
	"sort"

	"github.com/rxtech-lab/intraday-backtester/internal/types"
)

// DefaultStartingPortfolioValue is the balance every combination starts compounding from.
const DefaultStartingPortfolioValue = 1000.0

// CalculateStatistics rolls trades up into portfolio statistics. numDates counts only
// the dates that had candles. Trades are compounded in entry order regardless of the
// order they are passed in; the input slice is not modified.
func CalculateStatistics(numDates int, trades []types.TradeResult, startingPortfolioValue float64) types.BacktestStatistics {
	ordered := make([]types.TradeResult, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EntrySnapshot.Candle.Timestamp < ordered[j].EntrySnapshot.Candle.Timestamp
	})

	stats := types.BacktestStatistics{
		NumTrades:              len(ordered),
		NumDates:               numDates,
		StartingPortfolioValue: startingPortfolioValue,
	}

	portfolioValue := startingPortfolioValue

	for _, trade := range ordered {
		pct := trade.ProfitLossPct
		stats.TotalProfitLossPct += pct

		switch {
		case pct > 0:
			stats.NumWins++
			stats.TotalWinProfitLossPct += pct
		case pct < 0:
			stats.NumLosses++
			stats.TotalLossProfitLossPct += pct
		default:
			stats.NumBreakevens++
		}

		switch trade.Outcome {
		case types.OutcomeProfitLimit:
			stats.NumProfitLimits++
		case types.OutcomeStopLoss:
			stats.NumStopLosses++
		case types.OutcomeDirectionChange:
			stats.NumDirectionChanges++
		}

		portfolioValue *= 1 + pct
	}

	stats.WinLossRatio = winLossRatio(stats.NumWins, stats.NumLosses)

	if stats.NumTrades > 0 {
		stats.WinRate = float64(stats.NumWins) / float64(stats.NumTrades)
	}

	if numDates > 0 {
		stats.NumTradesPerDay = float64(stats.NumTrades) / float64(numDates)
	}

	stats.FinalPortfolioValue = portfolioValue
	stats.PortfolioValueChange = portfolioValue - startingPortfolioValue

	if startingPortfolioValue != 0 {
		stats.PortfolioValueChangePct = stats.PortfolioValueChange / startingPortfolioValue
	}

	return stats
}

// winLossRatio is +Inf with wins and no losses, NaN with neither.
func winLossRatio(wins, losses int) float64 {
	if losses == 0 {
		if wins == 0 {
			return math.NaN()
		}

		return math.Inf(1)
	}

	return float64(wins) / float64(losses)
}
