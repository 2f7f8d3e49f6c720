// ABOUTME: Retry utilities for capability calls with exponential backoff
// ABOUTME: Used by the OpenAI client for embedding, completion, and transcription retries
package util

import (
	"math/rand/v2"
	"time"
)

// maxBackoff caps a single retry delay regardless of attempt count
const maxBackoff = 30 * time.Second

// CalculateBackoff returns exponential backoff with jitter.
// Base delay is doubled each attempt, with random jitter up to 25%.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in the bit shift
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	// Jitter: -25% to +25%
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
