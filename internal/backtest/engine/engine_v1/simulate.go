package engine

import (
	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/slippage"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
)

// SimulateTrades resolves one trade per projected window of a single day.
func SimulateTrades(
	snapshots []types.SignalSnapshot,
	projections []types.WindowProjection,
	settings types.BacktestSettings,
	slip slippage.Slippage,
) ([]types.TradeResult, error) {
	if settings.EntryMode == types.EntryModeMultiple {
		return nil, errors.New(errors.ErrCodeUnsupportedEntryMode, "multiple entry backtest mode is not supported")
	}

	trades := make([]types.TradeResult, 0, len(projections))
	for _, projection := range projections {
		trades = append(trades, ResolveOutcome(snapshots, projection, settings, slip))
	}

	return trades, nil
}
