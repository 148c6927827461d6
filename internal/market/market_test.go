package market

import (
	"testing"
	"time"

	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type MarketTestSuite struct {
	suite.Suite
}

func TestMarketSuite(t *testing.T) {
	suite.Run(t, new(MarketTestSuite))
}

func (suite *MarketTestSuite) TestRegularSessionWinter() {
	start, end, err := RegularSession("2023-01-23")
	suite.Require().NoError(err)

	// EST is UTC-5
	suite.Equal(int64(1674484200), start.Unix())
	suite.Equal(int64(1674507599), end.Unix())
	suite.Equal("09:30:00", start.Format("15:04:05"))
	suite.Equal("15:59:59", end.Format("15:04:05"))
}

func (suite *MarketTestSuite) TestRegularSessionSummer() {
	start, _, err := RegularSession("2023-07-10")
	suite.Require().NoError(err)

	// EDT is UTC-4
	suite.Equal(time.Date(2023, 7, 10, 13, 30, 0, 0, time.UTC), start.UTC())
}

func (suite *MarketTestSuite) TestRegularSessionInvalidDate() {
	_, _, err := RegularSession("2023/01/23")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidDate))
}

func (suite *MarketTestSuite) TestTradingDates() {
	tests := []struct {
		name     string
		start    string
		end      string
		holidays []string
		expected []string
	}{
		{
			name:     "skips weekend",
			start:    "2023-01-20",
			end:      "2023-01-24",
			expected: []string{"2023-01-20", "2023-01-23", "2023-01-24"},
		},
		{
			name:     "skips holidays",
			start:    "2023-01-13",
			end:      "2023-01-17",
			holidays: DefaultHolidays,
			expected: []string{"2023-01-13", "2023-01-17"},
		},
		{
			name:     "single day",
			start:    "2023-01-23",
			end:      "2023-01-23",
			expected: []string{"2023-01-23"},
		},
		{
			name:  "weekend only",
			start: "2023-01-21",
			end:   "2023-01-22",
		},
		{
			name:     "crosses daylight saving change",
			start:    "2023-03-10",
			end:      "2023-03-13",
			expected: []string{"2023-03-10", "2023-03-13"},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			dates, err := TradingDates(tc.start, tc.end, tc.holidays)
			suite.Require().NoError(err)
			suite.Equal(tc.expected, dates)
		})
	}
}

func (suite *MarketTestSuite) TestTradingDatesErrors() {
	_, err := TradingDates("2023-01-24", "2023-01-23", nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidDate))

	_, err = TradingDates("bad", "2023-01-23", nil)
	suite.Error(err)
}
