package engine

import (
	"sync/atomic"
	"time"

	"github.com/rxtech-lab/intraday-backtester/internal/logger"
	"go.uber.org/zap"
)

// progressTracker counts finished combinations across workers and logs the rate
// every `every` completions.
type progressTracker struct {
	total     int
	every     int
	completed atomic.Int64
	startedAt time.Time
	log       *logger.Logger
}

func newProgressTracker(total int, every int, log *logger.Logger) *progressTracker {
	return &progressTracker{
		total:     total,
		every:     every,
		startedAt: time.Now(),
		log:       log,
	}
}

// Done marks one combination as finished and returns the number finished so far.
func (p *progressTracker) Done() int {
	completed := int(p.completed.Add(1))

	if p.every > 0 && (completed%p.every == 0 || completed == p.total) {
		elapsed := time.Since(p.startedAt)
		rate := float64(completed) / elapsed.Seconds()

		var eta time.Duration
		if rate > 0 {
			eta = time.Duration(float64(p.total-completed) / rate * float64(time.Second))
		}

		p.log.Info("Sweep progress",
			zap.Int("completed", completed),
			zap.Int("total", p.total),
			zap.Float64("combinations_per_second", rate),
			zap.Duration("elapsed", elapsed.Round(time.Millisecond)),
			zap.Duration("eta", eta.Round(time.Second)),
		)
	}

	return completed
}

// Completed returns the number of finished combinations.
func (p *progressTracker) Completed() int {
	return int(p.completed.Load())
}
