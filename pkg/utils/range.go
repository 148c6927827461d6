package utils

import (
	"math"

	"github.com/rxtech-lab/intraday-backtester/pkg/errors"
	"github.com/shopspring/decimal"
)

// MaxRangeValues caps how many values a single range may expand to.
const MaxRangeValues = 100_000

// DecimalRange returns every multiple of step from min up to and including max.
// Stepping is done in decimal arithmetic so 0.0005..0.01 yields exactly 20 values.
func DecimalRange(min, max, step float64) ([]float64, error) {
	for _, v := range []float64{min, max, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Newf(errors.ErrCodeInvalidRange, "range bounds must be finite, got %v", v)
		}
	}

	if step <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidRange, "step must be positive, got %v", step)
	}

	if min > max {
		return nil, errors.Newf(errors.ErrCodeInvalidRange, "min %v is greater than max %v", min, max)
	}

	dMin := decimal.NewFromFloat(min)
	dMax := decimal.NewFromFloat(max)
	dStep := decimal.NewFromFloat(step)

	count := dMax.Sub(dMin).Div(dStep).IntPart() + 1
	if count > MaxRangeValues {
		return nil, errors.Newf(errors.ErrCodeInvalidRange, "range %v..%v by %v has more than %d values", min, max, step, MaxRangeValues)
	}

	values := make([]float64, 0, count)
	for v := dMin; v.LessThanOrEqual(dMax); v = v.Add(dStep) {
		values = append(values, v.InexactFloat64())
	}

	return values, nil
}

// IntRange returns min, min+step, ... up to and including max.
func IntRange(min, max, step int) ([]int, error) {
	if step <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidRange, "step must be positive, got %d", step)
	}

	if min > max {
		return nil, errors.Newf(errors.ErrCodeInvalidRange, "min %d is greater than max %d", min, max)
	}

	// unsigned difference cannot overflow for min <= max
	steps := (uint64(max) - uint64(min)) / uint64(step)
	if steps >= MaxRangeValues {
		return nil, errors.Newf(errors.ErrCodeInvalidRange, "range %d..%d by %d has more than %d values", min, max, step, MaxRangeValues)
	}

	values := make([]int, 0, steps+1)
	for i := 0; i <= int(steps); i++ {
		values = append(values, min+i*step)
	}

	return values, nil
}
