package types

import "github.com/moznion/go-optional"

// ComputeResult is the signal pipeline output of one date for one indicator setting.
type ComputeResult struct {
	Date       string            `yaml:"date" json:"date"`
	Indicator  IndicatorSettings `yaml:"indicator" json:"indicator"`
	NumCandles int               `yaml:"num_candles" json:"num_candles"`
	Windows    []DirectionWindow `yaml:"windows" json:"windows"`
	// LatestWindow is None when the day has no direction change after warm-up.
	LatestWindow optional.Option[DirectionWindow] `yaml:"latest_window" json:"latest_window"`
	// LatestSnapshot is the snapshot that opened LatestWindow.
	LatestSnapshot optional.Option[SignalSnapshot] `yaml:"latest_snapshot" json:"latest_snapshot"`
	// IndicatorError holds the reason every snapshot fell back to Flat, if any.
	IndicatorError string `yaml:"indicator_error,omitempty" json:"indicator_error,omitempty"`
}
