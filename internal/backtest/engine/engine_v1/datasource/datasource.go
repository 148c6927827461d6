package datasource

import (
	"context"

	"github.com/rxtech-lab/intraday-backtester/internal/types"
	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
)

type Resolution string

const (
	Resolution1m  Resolution = "1m"
	Resolution5m  Resolution = "5m"
	Resolution15m Resolution = "15m"
	Resolution30m Resolution = "30m"
	Resolution1h  Resolution = "1h"
)

var AllResolutions = []any{
	Resolution1m,
	Resolution5m,
	Resolution15m,
	Resolution30m,
	Resolution1h,
}

// Minutes returns the bar length of the resolution.
func (r Resolution) Minutes() (int, error) {
	switch r {
	case Resolution1m:
		return 1, nil
	case Resolution5m:
		return 5, nil
	case Resolution15m:
		return 15, nil
	case Resolution30m:
		return 30, nil
	case Resolution1h:
		return 60, nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported resolution: %s", r)
	}
}

// CandleSource loads the regular-session candles of one trading date.
type CandleSource interface {
	// GetCandles returns the candles of symbol at resolution on date (YYYY-MM-DD) in
	// ascending timestamp order. An empty slice is valid and means the market did not trade.
	GetCandles(ctx context.Context, symbol string, resolution Resolution, date string) ([]types.Candle, error)
	// Close releases any resources held by the source
	Close() error
}
