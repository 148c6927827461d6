package engine

import (
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/slippage"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
)

// ProjectWindow computes the best and worst exit of every candle in [start, end)
// relative to the slipped open of the first candle. The entry candle is included.
// It returns false for empty windows and windows that are not tradable.
func ProjectWindow(snapshots []types.SignalSnapshot, window types.DirectionWindow, slip slippage.Slippage) (types.WindowProjection, bool) {
	if window.Len() <= 0 || window.StartIndex < 0 || window.EndIndex > len(snapshots) {
		return types.WindowProjection{}, false
	}

	first := snapshots[window.StartIndex]
	direction := first.Direction

	if !direction.IsTradable() {
		return types.WindowProjection{}, false
	}

	openPrice := slip.Entry(direction, first.Candle.Open)
	projections := make([]types.TradePerformanceSnapshot, 0, window.Len())

	for i := window.StartIndex; i < window.EndIndex; i++ {
		candle := snapshots[i].Candle

		best, worst := candle.High, candle.Low
		if direction == types.DirectionShort {
			best, worst = candle.Low, candle.High
		}

		projections = append(projections, types.TradePerformanceSnapshot{
			Index:                  i,
			PeakPrice:              candle.High,
			TroughPrice:            candle.Low,
			BestCaseExitPrice:      best,
			BestCaseProfitLoss:     profitLoss(direction, openPrice, best),
			BestCaseProfitLossPct:  profitLossPct(direction, openPrice, best),
			WorstCaseExitPrice:     worst,
			WorstCaseProfitLoss:    profitLoss(direction, openPrice, worst),
			WorstCaseProfitLossPct: profitLossPct(direction, openPrice, worst),
		})
	}

	return types.WindowProjection{
		Window:      window,
		Direction:   direction,
		OpenPrice:   openPrice,
		Projections: projections,
	}, true
}

// ProjectWindows projects every tradable, non-empty window in order.
func ProjectWindows(snapshots []types.SignalSnapshot, windows []types.DirectionWindow, slip slippage.Slippage) []types.WindowProjection {
	projections := make([]types.WindowProjection, 0, len(windows))

	for _, window := range windows {
		projection, ok := ProjectWindow(snapshots, window, slip)
		if !ok {
			continue
		}

		projections = append(projections, projection)
	}

	return projections
}

func profitLoss(direction types.Direction, openPrice float64, exitPrice float64) float64 {
	if direction == types.DirectionLong {
		return exitPrice - openPrice
	}

	return openPrice - exitPrice
}

func profitLossPct(direction types.Direction, openPrice float64, exitPrice float64) float64 {
	return profitLoss(direction, openPrice, exitPrice) / openPrice
}
