package confirm

import (
	"testing"
	"time"
)

func TestExponentialBackoffSequence(t *testing.T) {
	b := &exponentialBackoff{
		initial:    time.Second,
		multiplier: 2,
		max:        5 * time.Second,
	}
	want := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		5 * time.Second,
		5 * time.Second,
	}
	for i, expected := range want {
		if got := b.Next(i + 1); got != expected {
			t.Fatalf("attempt %d: want %v; got %v", i+1, expected, got)
		}
	}
}

func TestExponentialBackoffJitter(t *testing.T) {
	base := time.Second
	b := &exponentialBackoff{
		initial: base,
		jitter:  0.5,
	}
	b.randFn = func() float64 { return 0 }
	if got := b.Next(1); got != base/2 {
		t.Fatalf("jitter low bound: want %v; got %v", base/2, got)
	}
	b.randFn = func() float64 { return 1 }
	if got := b.Next(1); got != base+base/2 {
		t.Fatalf("jitter high bound: want %v; got %v", base+base/2, got)
	}
}

func TestExponentialBackoffDefaults(t *testing.T) {
	b := &exponentialBackoff{}
	if got := b.Next(0); got != DefaultInterval {
		t.Fatalf("default initial: want %v; got %v", DefaultInterval, got)
	}

	b = &exponentialBackoff{multiplier: 0.5}
	if got := b.Next(3); got != DefaultInterval {
		t.Fatalf("multiplier <= 1 should not shrink delay: want %v; got %v", DefaultInterval, got)
	}
}

func TestNewBackoff(t *testing.T) {
	if _, ok := NewBackoff(DefaultConfig()).(constantBackoff); !ok {
		t.Fatalf("default config should give a constant backoff")
	}
	if _, ok := NewBackoff(Config{Interval: time.Second, BackoffMultiplier: 1.5}).(*exponentialBackoff); !ok {
		t.Fatalf("multiplier should give an exponential backoff")
	}
	if got := NewBackoff(Config{}).Next(7); got != DefaultInterval {
		t.Fatalf("zero interval: want %v; got %v", DefaultInterval, got)
	}
}
