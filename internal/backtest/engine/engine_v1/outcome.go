package engine

import (
	"math"

	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/slippage"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
)

// ResolveOutcome turns a window projection into the trade it would have produced.
//
// The earliest stop candidate and the earliest limit candidate are found independently.
// When both exist the one on the earlier candle wins and a shared candle resolves to
// a stop loss, since the order of a candle's high and low is unknown. Thresholds fill
// at their theoretical price and direction changes fill at the boundary close, both
// with exit slippage.
//
// It panics with ErrCodeInvariantViolation when the threshold prices are not on the
// expected sides of the open price.
func ResolveOutcome(
	snapshots []types.SignalSnapshot,
	projection types.WindowProjection,
	settings types.BacktestSettings,
	slip slippage.Slippage,
) types.TradeResult {
	projections := projection.Projections
	if len(projections) == 0 {
		panic(errors.New(errors.ErrCodeInvariantViolation, "cannot resolve an empty window projection"))
	}

	direction := projection.Direction
	openPrice := projection.OpenPrice

	peak := projections[0]
	trough := projections[0]

	var stopCandidate, limitCandidate *types.TradePerformanceSnapshot

	for i := range projections {
		p := &projections[i]

		if p.BestCaseProfitLossPct > peak.BestCaseProfitLossPct {
			peak = *p
		}

		if p.WorstCaseProfitLossPct < trough.WorstCaseProfitLossPct {
			trough = *p
		}

		if stopCandidate == nil && p.WorstCaseProfitLossPct <= settings.StopLossPct {
			stopCandidate = p
		}

		if limitCandidate == nil && p.BestCaseProfitLossPct >= settings.ProfitLimitPct {
			limitCandidate = p
		}
	}

	outcome, exit := decideOutcome(snapshots, stopCandidate, limitCandidate, projections[len(projections)-1])

	profitLimitPrice := profitLimitPrice(direction, openPrice, settings.ProfitLimitPct)
	stopLossPrice := stopLossPrice(direction, openPrice, settings.StopLossPct)
	checkThresholdOrdering(direction, openPrice, profitLimitPrice, stopLossPrice)

	entrySnapshot := snapshots[projection.Window.StartIndex]
	exitSnapshot := snapshots[exit.Index]

	var exitPrice float64

	switch outcome {
	case types.OutcomeStopLoss:
		exitPrice = slip.Exit(direction, stopLossPrice)
	case types.OutcomeProfitLimit:
		exitPrice = slip.Exit(direction, profitLimitPrice)
	default:
		exitPrice = slip.Exit(direction, exitSnapshot.Candle.Close)
	}

	return types.TradeResult{
		Direction:        direction,
		EntrySnapshot:    entrySnapshot,
		ExitSnapshot:     exitSnapshot,
		PeakSnapshot:     snapshots[peak.Index],
		TroughSnapshot:   snapshots[trough.Index],
		Outcome:          outcome,
		OpenPrice:        openPrice,
		ExitPrice:        exitPrice,
		ProfitLimitPrice: profitLimitPrice,
		StopLossPrice:    stopLossPrice,
		ProfitLoss:       profitLoss(direction, openPrice, exitPrice),
		ProfitLossPct:    profitLossPct(direction, openPrice, exitPrice),
		Duration:         exitSnapshot.Candle.Timestamp - entrySnapshot.Candle.Timestamp,
		PeakPLPct:        peak.BestCaseProfitLossPct,
		TroughPLPct:      trough.WorstCaseProfitLossPct,
	}
}

func decideOutcome(
	snapshots []types.SignalSnapshot,
	stopCandidate *types.TradePerformanceSnapshot,
	limitCandidate *types.TradePerformanceSnapshot,
	last types.TradePerformanceSnapshot,
) (types.Outcome, types.TradePerformanceSnapshot) {
	switch {
	case stopCandidate == nil && limitCandidate == nil:
		return types.OutcomeDirectionChange, last
	case limitCandidate == nil:
		return types.OutcomeStopLoss, *stopCandidate
	case stopCandidate == nil:
		return types.OutcomeProfitLimit, *limitCandidate
	}

	stopTimestamp := snapshots[stopCandidate.Index].Candle.Timestamp
	limitTimestamp := snapshots[limitCandidate.Index].Candle.Timestamp

	if stopTimestamp <= limitTimestamp {
		return types.OutcomeStopLoss, *stopCandidate
	}

	return types.OutcomeProfitLimit, *limitCandidate
}

func profitLimitPrice(direction types.Direction, openPrice float64, profitLimitPct float64) float64 {
	if direction == types.DirectionLong {
		return openPrice * (1 + profitLimitPct)
	}

	return openPrice * (1 - profitLimitPct)
}

func stopLossPrice(direction types.Direction, openPrice float64, stopLossPct float64) float64 {
	if direction == types.DirectionLong {
		return openPrice * (1 - math.Abs(stopLossPct))
	}

	return openPrice * (1 + math.Abs(stopLossPct))
}

func checkThresholdOrdering(direction types.Direction, openPrice, limitPrice, stopPrice float64) {
	var ok bool
	if direction == types.DirectionLong {
		ok = limitPrice > openPrice && openPrice > stopPrice
	} else {
		ok = limitPrice < openPrice && openPrice < stopPrice
	}

	if !ok {
		panic(errors.Newf(errors.ErrCodeInvariantViolation,
			"%s trade has profit limit %v and stop loss %v on the wrong side of open %v",
			direction, limitPrice, stopPrice, openPrice))
	}
}

// IsInvariantViolation reports whether a recovered panic value is a broken engine invariant.
func IsInvariantViolation(recovered any) bool {
	err, ok := recovered.(error)

	return ok && errors.HasCode(err, errors.ErrCodeInvariantViolation)
}
