package mocks

import (
	"testing"
)

func TestCandleGenerator_Generate(t *testing.T) {
	gen := NewCandleGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Count = 100

	candles := gen.Generate(config)

	if len(candles) != 100 {
		t.Errorf("expected 100 candles, got %d", len(candles))
	}

	for i := 1; i < len(candles); i++ {
		if candles[i].Timestamp-candles[i-1].Timestamp != 60 {
			t.Errorf("unexpected interval at index %d: %d", i, candles[i].Timestamp-candles[i-1].Timestamp)
		}
	}

	for i, c := range candles {
		if c.Low > c.Open || c.Low > c.Close || c.High < c.Open || c.High < c.Close {
			t.Errorf("invalid OHLC at index %d: O=%f H=%f L=%f C=%f", i, c.Open, c.High, c.Low, c.Close)
		}

		if c.Low <= 0 || c.Volume < 0 {
			t.Errorf("invalid price or volume at index %d", i)
		}
	}
}

func TestCandleGenerator_Reproducibility(t *testing.T) {
	config := DefaultConfig()
	config.Count = 10

	data1 := NewCandleGenerator(42).Generate(config)
	data2 := NewCandleGenerator(42).Generate(config)

	for i := range data1 {
		if data1[i] != data2[i] {
			t.Errorf("candles not reproducible at index %d", i)
		}
	}
}

func TestCandleGenerator_GenerateSession(t *testing.T) {
	candles, err := NewCandleGenerator(7).GenerateSession("2023-01-23", DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candles) != SessionCandles {
		t.Fatalf("expected %d candles, got %d", SessionCandles, len(candles))
	}

	if candles[0].Timestamp != 1674484200 {
		t.Errorf("expected session to open at 1674484200, got %d", candles[0].Timestamp)
	}

	if candles[len(candles)-1].Timestamp != 1674507540 {
		t.Errorf("expected last candle at 1674507540, got %d", candles[len(candles)-1].Timestamp)
	}

	if _, err := NewCandleGenerator(7).GenerateSession("not-a-date", DefaultConfig()); err == nil {
		t.Error("expected an error for an invalid date")
	}
}
