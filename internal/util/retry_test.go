// ABOUTME: Tests for retry backoff calculation
// ABOUTME: Validates exponential growth, jitter bounds, and the delay cap

package util

import (
	"testing"
	"time"
)

func TestCalculateBackoff_ZeroAttempt(t *testing.T) {
	if got := CalculateBackoff(time.Second, 0); got != 0 {
		t.Errorf("CalculateBackoff(_, 0) = %v, want 0", got)
	}
	if got := CalculateBackoff(time.Second, -1); got != 0 {
		t.Errorf("CalculateBackoff(_, -1) = %v, want 0", got)
	}
}

func TestCalculateBackoff_ExponentialGrowth(t *testing.T) {
	base := 100 * time.Millisecond

	for attempt := 1; attempt <= 5; attempt++ {
		expected := base * time.Duration(1<<uint(attempt))
		minAllowed := expected * 3 / 4
		maxAllowed := expected * 5 / 4

		got := CalculateBackoff(base, attempt)
		if got < minAllowed || got > maxAllowed {
			t.Errorf("attempt %d: backoff %v outside [%v, %v]", attempt, got, minAllowed, maxAllowed)
		}
	}
}

func TestCalculateBackoff_Capped(t *testing.T) {
	// A huge attempt count must stay within the cap plus jitter headroom
	got := CalculateBackoff(time.Second, 60)
	if got > 30*time.Second*5/4 {
		t.Errorf("backoff %v exceeds cap with jitter", got)
	}
}
