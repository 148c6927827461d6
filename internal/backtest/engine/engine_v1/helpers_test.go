package engine

import (
	"github.com/rxtech-lab/intraday-backtester/internal/types"
)

const fixtureEntryTimestamp = int64(1674484800)

// snapshotsFromDirections builds one flat-priced candle per direction, a minute apart.
func snapshotsFromDirections(directions ...types.Direction) []types.SignalSnapshot {
	snapshots := make([]types.SignalSnapshot, len(directions))
	for i, d := range directions {
		snapshots[i] = types.SignalSnapshot{
			Candle: types.Candle{
				Timestamp: fixtureEntryTimestamp + int64(i)*60,
				Open:      100,
				High:      100,
				Low:       100,
				Close:     100,
				Volume:    1000,
			},
			Direction: d,
		}
	}

	return snapshots
}

// ohlc is open, high, low, close.
type ohlc [4]float64

func snapshotsFromPrices(direction types.Direction, prices ...ohlc) []types.SignalSnapshot {
	snapshots := make([]types.SignalSnapshot, len(prices))
	for i, p := range prices {
		snapshots[i] = types.SignalSnapshot{
			Candle: types.Candle{
				Timestamp: fixtureEntryTimestamp + int64(i)*60,
				Open:      p[0],
				High:      p[1],
				Low:       p[2],
				Close:     p[3],
				Volume:    1000,
			},
			Direction: direction,
		}
	}

	return snapshots
}

// fixtureSnapshots is a long trade opened at 9:40am on 2023-01-23. The low of the
// fourth candle is the trough, the eighth candle crosses the profit limit and the
// tenth candle is the peak.
func fixtureSnapshots() []types.SignalSnapshot {
	return snapshotsFromPrices(types.DirectionLong,
		ohlc{396.25, 396.60, 396.00, 396.50},
		ohlc{396.50, 396.80, 396.20, 396.30},
		ohlc{396.30, 396.45, 396.05, 396.10},
		ohlc{396.10, 396.30, 395.88, 396.20},
		ohlc{396.20, 396.70, 396.15, 396.65},
		ohlc{396.65, 397.00, 396.50, 396.90},
		ohlc{396.90, 397.20, 396.80, 397.10},
		ohlc{397.10, 397.50, 397.00, 397.45},
		ohlc{397.45, 399.00, 397.30, 398.80},
		ohlc{398.80, 402.112, 398.60, 401.50},
		ohlc{401.50, 401.80, 400.90, 401.20},
		ohlc{401.20, 401.40, 400.70, 401.00},
	)
}

func fixtureSettings() types.BacktestSettings {
	return types.BacktestSettings{
		SlippagePct:    0.00025,
		ProfitLimitPct: 0.0025,
		StopLossPct:    -0.00125,
		WarmupIndex:    10,
		EntryMode:      types.EntryModeSingle,
	}
}

func tradeWithPct(timestamp int64, pct float64, outcome types.Outcome) types.TradeResult {
	return types.TradeResult{
		Direction:     types.DirectionLong,
		EntrySnapshot: types.SignalSnapshot{Candle: types.Candle{Timestamp: timestamp}},
		Outcome:       outcome,
		ProfitLossPct: pct,
	}
}
