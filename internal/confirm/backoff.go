package confirm

import (
	"math"
	"math/rand"
	"time"
)

// Backoff controls polling cadence.
type Backoff interface {
	Next(attempt int) time.Duration
}

type constantBackoff struct{ every time.Duration }

func (b constantBackoff) Next(int) time.Duration { return b.every }

type exponentialBackoff struct {
	initial    time.Duration
	multiplier float64
	max        time.Duration
	jitter     float64
	randFn     func() float64
}

func (b *exponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	// Cap before converting back to time.Duration to avoid overflow.
	maxDurationFloat := float64(math.MaxInt64) - 2048.0

	initial := b.initial
	if initial <= 0 {
		initial = DefaultInterval
	}
	base := float64(initial)
	if b.multiplier > 1 {
		base *= math.Pow(b.multiplier, float64(attempt-1))
	}
	if b.max > 0 && base > float64(b.max) {
		base = float64(b.max)
	}
	if base > maxDurationFloat {
		base = maxDurationFloat
	}

	jitter := math.Min(math.Max(b.jitter, 0), 1)
	if jitter > 0 {
		randFn := b.randFn
		if randFn == nil {
			randFn = rand.Float64
		}
		base *= 1 + (randFn()*2-1)*jitter
		base = math.Min(math.Max(base, 0), maxDurationFloat)
	}

	delay := time.Duration(base)
	if delay <= 0 {
		delay = time.Millisecond
	}
	return delay
}

// NewBackoff returns a constant backoff unless the config asks for growth or
// jitter.
func NewBackoff(cfg Config) Backoff {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if cfg.BackoffMultiplier > 1 || cfg.BackoffJitter > 0 || (cfg.BackoffMaxInterval > 0 && cfg.BackoffMaxInterval != interval) {
		return &exponentialBackoff{
			initial:    interval,
			multiplier: cfg.BackoffMultiplier,
			max:        cfg.BackoffMaxInterval,
			jitter:     cfg.BackoffJitter,
		}
	}
	return constantBackoff{every: interval}
}
