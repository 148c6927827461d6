package engine

import (
	"math"
	"testing"

	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/slippage"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type OutcomeTestSuite struct {
	suite.Suite
}

func TestOutcomeSuite(t *testing.T) {
	suite.Run(t, new(OutcomeTestSuite))
}

func round(x float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(x*pow) / pow
}

func (suite *OutcomeTestSuite) resolve(snapshots []types.SignalSnapshot, window types.DirectionWindow, settings types.BacktestSettings) types.TradeResult {
	slip := slippage.NewPercentageSlippage(settings.SlippagePct)

	projection, ok := ProjectWindow(snapshots, window, slip)
	suite.Require().True(ok)

	return ResolveOutcome(snapshots, projection, settings, slip)
}

func (suite *OutcomeTestSuite) TestFixtureTrade() {
	snapshots := fixtureSnapshots()
	result := suite.resolve(snapshots, types.DirectionWindow{StartIndex: 0, EndIndex: len(snapshots) - 1}, fixtureSettings())

	// open at 9:40am
	suite.Equal(fixtureEntryTimestamp, result.EntrySnapshot.Candle.Timestamp)
	suite.Equal(396.25, round(result.EntrySnapshot.Candle.Open, 2))
	suite.Equal(types.DirectionLong, result.Direction)

	suite.Equal(396.35, round(result.OpenPrice, 2))
	suite.Equal(397.34, round(result.ProfitLimitPrice, 2))
	suite.Equal(395.85, round(result.StopLossPrice, 2))

	suite.Equal(types.OutcomeProfitLimit, result.Outcome)
	suite.Equal(397.24, round(result.ExitPrice, 2))
	// exit by 9:47am
	suite.Equal(int64(1674485220), result.ExitSnapshot.Candle.Timestamp)
	suite.Equal(int64(420), result.Duration)

	suite.Equal(0.89, round(result.ProfitLoss, 2))
	suite.Equal(0.00225, round(result.ProfitLossPct, 5))

	suite.Equal(0.01454, round(result.PeakPLPct, 5))
	suite.Equal(-0.00118, round(result.TroughPLPct, 5))
	suite.Equal(int64(1674485340), result.PeakSnapshot.Candle.Timestamp)
	suite.Equal(int64(1674484980), result.TroughSnapshot.Candle.Timestamp)
}

func (suite *OutcomeTestSuite) TestSameCandleResolvesToStopLoss() {
	settings := types.BacktestSettings{SlippagePct: 0, ProfitLimitPct: 0.01, StopLossPct: -0.01, EntryMode: types.EntryModeSingle}

	for _, direction := range []types.Direction{types.DirectionLong, types.DirectionShort} {
		suite.Run(string(direction), func() {
			snapshots := snapshotsFromPrices(direction,
				ohlc{100, 100.2, 99.8, 100},
				ohlc{100, 102, 98, 100},
				ohlc{100, 100.1, 99.9, 100},
			)

			for i := 0; i < 3; i++ {
				result := suite.resolve(snapshots, types.DirectionWindow{StartIndex: 0, EndIndex: 3}, settings)
				suite.Equal(types.OutcomeStopLoss, result.Outcome)
				suite.Equal(snapshots[1].Candle.Timestamp, result.ExitSnapshot.Candle.Timestamp)
				suite.InDelta(-0.01, result.ProfitLossPct, 1e-12)
			}
		})
	}
}

func (suite *OutcomeTestSuite) TestSameTimestampOnDifferentSnapshotsResolvesToStopLoss() {
	settings := types.BacktestSettings{ProfitLimitPct: 0.01, StopLossPct: -0.01, EntryMode: types.EntryModeSingle}
	snapshots := snapshotsFromPrices(types.DirectionLong,
		ohlc{100, 100.2, 99.8, 100},
		ohlc{100, 102, 99.5, 100},
		ohlc{100, 100.1, 98, 100},
	)
	snapshots[2].Candle.Timestamp = snapshots[1].Candle.Timestamp

	result := suite.resolve(snapshots, types.DirectionWindow{StartIndex: 0, EndIndex: 3}, settings)
	suite.Equal(types.OutcomeStopLoss, result.Outcome)
	suite.Equal(2, indexOf(snapshots, result.ExitSnapshot))
}

func (suite *OutcomeTestSuite) TestEarliestTriggerWins() {
	settings := types.BacktestSettings{ProfitLimitPct: 0.01, StopLossPct: -0.01, EntryMode: types.EntryModeSingle}

	tests := []struct {
		name      string
		direction types.Direction
		prices    []ohlc
		outcome   types.Outcome
		exitIndex int
		exitPrice float64
	}{
		{
			name:      "long stop before limit",
			direction: types.DirectionLong,
			prices:    []ohlc{{100, 100.5, 99.5, 100}, {100, 100.5, 98.9, 99}, {99, 101.5, 98.5, 101}, {101, 101, 101, 101}},
			outcome:   types.OutcomeStopLoss,
			exitIndex: 1,
			exitPrice: 99,
		},
		{
			name:      "long limit before stop",
			direction: types.DirectionLong,
			prices:    []ohlc{{100, 100.5, 99.5, 100}, {100, 101.2, 99.9, 101}, {101, 101.5, 98.5, 99}, {99, 99, 99, 99}},
			outcome:   types.OutcomeProfitLimit,
			exitIndex: 1,
			exitPrice: 101,
		},
		{
			name:      "short limit before stop",
			direction: types.DirectionShort,
			prices:    []ohlc{{100, 100.5, 99.5, 100}, {100, 100.2, 98.9, 99}, {99, 101.5, 98.5, 101}, {101, 101, 101, 101}},
			outcome:   types.OutcomeProfitLimit,
			exitIndex: 1,
			exitPrice: 99,
		},
		{
			name:      "short stop on the entry candle",
			direction: types.DirectionShort,
			prices:    []ohlc{{100, 101.5, 99.5, 101}, {101, 101, 97, 97}, {97, 97, 97, 97}},
			outcome:   types.OutcomeStopLoss,
			exitIndex: 0,
			exitPrice: 101,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			snapshots := snapshotsFromPrices(tc.direction, tc.prices...)
			result := suite.resolve(snapshots, types.DirectionWindow{StartIndex: 0, EndIndex: len(snapshots) - 1}, settings)

			suite.Equal(tc.outcome, result.Outcome)
			suite.Equal(tc.exitIndex, indexOf(snapshots, result.ExitSnapshot))
			suite.InDelta(tc.exitPrice, result.ExitPrice, 1e-9)
		})
	}
}

func (suite *OutcomeTestSuite) TestDirectionChangeExitsAtBoundaryClose() {
	settings := types.BacktestSettings{SlippagePct: 0.001, ProfitLimitPct: 0.05, StopLossPct: -0.05, EntryMode: types.EntryModeSingle}
	snapshots := snapshotsFromPrices(types.DirectionShort,
		ohlc{100, 100.5, 99.5, 100},
		ohlc{100, 100.4, 99.0, 99.2},
		ohlc{99.2, 99.6, 98.8, 99.0},
		ohlc{99.0, 99.1, 98.5, 98.6},
	)

	result := suite.resolve(snapshots, types.DirectionWindow{StartIndex: 0, EndIndex: 3}, settings)
	suite.Equal(types.OutcomeDirectionChange, result.Outcome)
	suite.Equal(2, indexOf(snapshots, result.ExitSnapshot))

	openPrice := 100 * (1 - 0.001)
	exitPrice := 99.0 * (1 + 0.001)
	suite.InDelta(openPrice, result.OpenPrice, 1e-9)
	suite.InDelta(exitPrice, result.ExitPrice, 1e-9)
	suite.InDelta(openPrice-exitPrice, result.ProfitLoss, 1e-9)
	suite.InDelta((openPrice-exitPrice)/openPrice, result.ProfitLossPct, 1e-12)
	suite.Equal(int64(120), result.Duration)

	suite.InDelta(openPrice*1.05, result.StopLossPrice, 1e-9)
	suite.InDelta(openPrice*0.95, result.ProfitLimitPrice, 1e-9)
}

func (suite *OutcomeTestSuite) TestThresholdOrdering() {
	settings := types.BacktestSettings{SlippagePct: 0.00025, ProfitLimitPct: 0.002, StopLossPct: -0.002, EntryMode: types.EntryModeSingle}

	for _, direction := range []types.Direction{types.DirectionLong, types.DirectionShort} {
		snapshots := fixtureSnapshots()
		for i := range snapshots {
			snapshots[i].Direction = direction
		}

		result := suite.resolve(snapshots, types.DirectionWindow{StartIndex: 0, EndIndex: len(snapshots) - 1}, settings)
		if direction == types.DirectionLong {
			suite.Greater(result.ProfitLimitPrice, result.OpenPrice)
			suite.Greater(result.OpenPrice, result.StopLossPrice)
		} else {
			suite.Less(result.ProfitLimitPrice, result.OpenPrice)
			suite.Less(result.OpenPrice, result.StopLossPrice)
		}
	}
}

func (suite *OutcomeTestSuite) TestInvariantViolationPanics() {
	snapshots := fixtureSnapshots()
	slip := slippage.NewPercentageSlippage(0.00025)
	projection, ok := ProjectWindow(snapshots, types.DirectionWindow{StartIndex: 0, EndIndex: 5}, slip)
	suite.Require().True(ok)

	tests := []struct {
		name     string
		settings types.BacktestSettings
	}{
		{"zero profit limit", types.BacktestSettings{ProfitLimitPct: 0, StopLossPct: -0.01}},
		{"negative profit limit", types.BacktestSettings{ProfitLimitPct: -0.01, StopLossPct: -0.01}},
		{"zero stop loss", types.BacktestSettings{ProfitLimitPct: 0.01, StopLossPct: 0}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			recovered := func() (r any) {
				defer func() { r = recover() }()
				ResolveOutcome(snapshots, projection, tc.settings, slip)

				return nil
			}()

			suite.Require().NotNil(recovered)
			suite.True(IsInvariantViolation(recovered))
			suite.True(errors.HasCode(recovered.(error), errors.ErrCodeInvariantViolation))
		})
	}
}

func (suite *OutcomeTestSuite) TestIsInvariantViolation() {
	suite.False(IsInvariantViolation("boom"))
	suite.False(IsInvariantViolation(errors.New(errors.ErrCodeUnknown, "other")))
	suite.True(IsInvariantViolation(errors.New(errors.ErrCodeInvariantViolation, "broken")))
}

func indexOf(snapshots []types.SignalSnapshot, target types.SignalSnapshot) int {
	for i, s := range snapshots {
		if s == target {
			return i
		}
	}

	return -1
}
