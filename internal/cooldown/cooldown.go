package cooldown

import (
	"context"
	"math"
	"time"
)

// DefaultDuration is how long an address waits after a successful airdrop.
const DefaultDuration = 30 * time.Second

// Store keeps per-key cooldown deadlines.
type Store interface {
	// Start sets the deadline for key, replacing any existing one.
	Start(ctx context.Context, key string, d time.Duration) error
	// TryStart sets the deadline for key only if none is active. When one is,
	// it reports false and the time left on it.
	TryStart(ctx context.Context, key string, d time.Duration) (time.Duration, bool, error)
	Release(ctx context.Context, key string) error
	Remaining(ctx context.Context, key string) (time.Duration, error)
}

// Countdown emits the whole seconds left in remaining, once per second, down
// to 0 and then closes the channel. It stops early when ctx is done.
func Countdown(ctx context.Context, remaining time.Duration) <-chan int {
	return countdown(ctx, remaining, time.Second)
}

func countdown(ctx context.Context, remaining time.Duration, tick time.Duration) <-chan int {
	secs := int(math.Ceil(remaining.Seconds()))
	if secs < 0 {
		secs = 0
	}

	ch := make(chan int, 1)
	go func() {
		defer close(ch)

		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ch <- secs:
			}
			if secs == 0 {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				secs--
			}
		}
	}()
	return ch
}
