package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/intraday-backtester/internal/market"
	"github.com/rxtech-lab/intraday-backtester/internal/types"
)

// SessionCandles is the number of one-minute candles in a regular session.
const SessionCandles = 390

// CandleGenerator generates random-walk candles for tests and benchmarks.
type CandleGenerator struct {
	rng *rand.Rand
}

// NewCandleGenerator creates a new CandleGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewCandleGenerator(seed int64) *CandleGenerator {
	return &CandleGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how candles are generated.
type GeneratorConfig struct {
	// StartTime is the timestamp of the first candle
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of candles to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement per bar (0.001 = 0.1%)
	Volatility float64
	// Trend is the total drift over the series (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase int64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns one regular session of SPY-like minute candles on 2023-01-23.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:      time.Unix(1674484200, 0).UTC(),
		Interval:       time.Minute,
		Count:          SessionCandles,
		InitialPrice:   396.25,
		Volatility:     0.0008,
		Trend:          0.0,
		VolumeBase:     50000,
		VolumeVariance: 0.3,
	}
}

// Generate creates candles following a geometric Brownian motion.
func (g *CandleGenerator) Generate(config GeneratorConfig) []types.Candle {
	candles := make([]types.Candle, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a normal sample
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		close := open * (1 + config.Volatility*z + drift)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance

		volume := int64(float64(config.VolumeBase) * volumeVariation)
		if volume < 0 {
			volume = config.VolumeBase / 10
		}

		open, close = roundToDecimals(open, 4), roundToDecimals(close, 4)
		candles[i] = types.Candle{
			Timestamp: currentTime.Unix(),
			Open:      open,
			High:      math.Max(roundToDecimals(high, 4), math.Max(open, close)),
			Low:       math.Min(roundToDecimals(low, 4), math.Min(open, close)),
			Close:     close,
			Volume:    volume,
		}

		currentPrice = close
		currentTime = currentTime.Add(config.Interval)
	}

	return candles
}

// GenerateSession creates one full regular session of minute candles for date.
func (g *CandleGenerator) GenerateSession(date string, config GeneratorConfig) ([]types.Candle, error) {
	start, _, err := market.RegularSession(date)
	if err != nil {
		return nil, err
	}

	config.StartTime = start
	config.Interval = time.Minute
	config.Count = SessionCandles

	return g.Generate(config), nil
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
