package writer

import (
	"github.com/rxtech-lab/intraday-backtester/internal/types"
)

// CandleWriter stores downloaded candles at a destination.
type CandleWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists one candle of symbol.
	Write(symbol string, candle types.Candle) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}
