package resilience

import (
	"testing"
	"time"
)

func TestExponentialBackoffGrowth(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0, // deterministic for the test
	}

	expected := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
	}
	for attempt, want := range expected {
		if got := backoff.NextDelay(attempt); got != want {
			t.Errorf("NextDelay(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestExponentialBackoffCapped(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  1 * time.Second,
		MaxDelay:   8 * time.Second,
		Multiplier: 2.0,
		Jitter:     0,
	}

	if got := backoff.NextDelay(10); got != 8*time.Second {
		t.Errorf("NextDelay(10) = %v, want cap %v", got, 8*time.Second)
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	backoff := DefaultExponentialBackoff()

	for attempt := 0; attempt < 6; attempt++ {
		base := float64(backoff.BaseDelay) * pow(backoff.Multiplier, attempt)
		if base > float64(backoff.MaxDelay) {
			base = float64(backoff.MaxDelay)
		}
		lo := time.Duration(base * (1 - backoff.Jitter))
		hi := time.Duration(base * (1 + backoff.Jitter))

		for i := 0; i < 50; i++ {
			delay := backoff.NextDelay(attempt)
			if delay < lo || delay > hi {
				t.Fatalf("NextDelay(%d) = %v outside jitter bounds [%v, %v]", attempt, delay, lo, hi)
			}
		}
	}
}

func TestNegativeAttemptReturnsBase(t *testing.T) {
	backoff := DefaultExponentialBackoff()
	if got := backoff.NextDelay(-1); got != backoff.BaseDelay {
		t.Errorf("NextDelay(-1) = %v, want %v", got, backoff.BaseDelay)
	}
}

func TestSettlementRetryBackoffCap(t *testing.T) {
	backoff := SettlementRetryBackoff()

	for attempt := 0; attempt < 10; attempt++ {
		max := time.Duration(float64(backoff.MaxDelay) * (1 + backoff.Jitter))
		if delay := backoff.NextDelay(attempt); delay > max {
			t.Errorf("NextDelay(%d) = %v exceeds cap %v", attempt, delay, max)
		}
	}
}

func TestFixedBackoff(t *testing.T) {
	backoff := &FixedBackoff{Delay: 5 * time.Second}
	for attempt := 0; attempt < 5; attempt++ {
		if got := backoff.NextDelay(attempt); got != 5*time.Second {
			t.Errorf("NextDelay(%d) = %v, want 5s", attempt, got)
		}
	}
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
