package engine

import (
	"testing"

	"github.com/rxtech-lab/intraday-backtester/internal/backtest/engine/engine_v1/slippage"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SimulateTestSuite struct {
	suite.Suite
}

func TestSimulateSuite(t *testing.T) {
	suite.Run(t, new(SimulateTestSuite))
}

func (suite *SimulateTestSuite) TestOneTradePerTradableWindow() {
	snapshots := snapshotsFromDirections(
		types.DirectionLong, types.DirectionLong, types.DirectionLong,
		types.DirectionShort, types.DirectionShort, types.DirectionShort,
		types.DirectionFlat, types.DirectionFlat,
	)
	slip := slippage.NewZeroSlippage()
	settings := types.BacktestSettings{ProfitLimitPct: 0.01, StopLossPct: -0.01, EntryMode: types.EntryModeSingle}

	windows := BuildDirectionWindows(snapshots, 0)
	suite.Len(windows, 3)

	trades, err := SimulateTrades(snapshots, ProjectWindows(snapshots, windows, slip), settings, slip)
	suite.Require().NoError(err)
	suite.Require().Len(trades, 2)

	suite.Equal(types.DirectionLong, trades[0].Direction)
	suite.Equal(snapshots[0].Candle.Timestamp, trades[0].EntrySnapshot.Candle.Timestamp)
	suite.Equal(types.DirectionShort, trades[1].Direction)
	suite.Equal(snapshots[3].Candle.Timestamp, trades[1].EntrySnapshot.Candle.Timestamp)

	for _, trade := range trades {
		// flat prices never reach either threshold
		suite.Equal(types.OutcomeDirectionChange, trade.Outcome)
		suite.InDelta(0, trade.ProfitLossPct, 1e-12)
	}
}

func (suite *SimulateTestSuite) TestNoProjections() {
	trades, err := SimulateTrades(nil, nil, fixtureSettings(), slippage.NewZeroSlippage())
	suite.Require().NoError(err)
	suite.Empty(trades)
}

func (suite *SimulateTestSuite) TestMultipleEntryIsUnsupported() {
	snapshots := fixtureSnapshots()
	slip := slippage.NewZeroSlippage()
	settings := fixtureSettings()
	settings.EntryMode = types.EntryModeMultiple

	projections := ProjectWindows(snapshots, BuildDirectionWindows(snapshots, 0), slip)
	suite.Require().NotEmpty(projections)

	trades, err := SimulateTrades(snapshots, projections, settings, slip)
	suite.Nil(trades)
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedEntryMode))
}
