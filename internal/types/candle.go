package types

import "time"

// Candle is a single OHLCV bar. Timestamp is in unix seconds.
type Candle struct {
	Timestamp int64   `yaml:"timestamp" json:"timestamp"`
	Open      float64 `yaml:"open" json:"open"`
	High      float64 `yaml:"high" json:"high"`
	Low       float64 `yaml:"low" json:"low"`
	Close     float64 `yaml:"close" json:"close"`
	Volume    int64   `yaml:"volume" json:"volume"`
}

// Time returns the candle timestamp as a UTC time.
func (c Candle) Time() time.Time {
	return time.Unix(c.Timestamp, 0).UTC()
}

type Direction string

const (
	// DirectionLong holds a long position
	DirectionLong Direction = "long"
	// DirectionShort holds a short position
	DirectionShort Direction = "short"
	// DirectionFlat holds nothing. Used during warm-up and when the indicator cannot decide.
	DirectionFlat Direction = "flat"
)

// IsTradable reports whether a window in this direction becomes a trade.
func (d Direction) IsTradable() bool {
	return d == DirectionLong || d == DirectionShort
}

// SignalSnapshot pairs a candle with the direction the indicator emitted for it.
type SignalSnapshot struct {
	Candle    Candle    `yaml:"candle" json:"candle"`
	Direction Direction `yaml:"direction" json:"direction"`
}
