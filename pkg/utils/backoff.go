package utils

import (
	"math"
	"math/rand"
	"time"
)

// CalculateExponentialBackoffWithJitter computes a jittered exponential backoff delay.
// - attempt: retry attempt number (1-based)
// - base: base delay (e.g., 200 * time.Millisecond)
// - max: cap on the returned delay
func CalculateExponentialBackoffWithJitter(attempt int, base time.Duration, max time.Duration) time.Duration {
	if attempt <= 0 || base <= 0 {
		return 0
	}

	// base * 2^(attempt-1), saturating before overflow
	exp := math.Pow(2, float64(attempt-1))
	if exp > float64(max/base) {
		return max
	}
	baseDelay := base * time.Duration(exp)

	// ±12.5% jitter to avoid synchronized retries
	spread := int64(baseDelay / 4)
	if spread <= 0 {
		return baseDelay
	}
	jitter := time.Duration(rand.Int63n(spread)) - (baseDelay / 8)
	delay := baseDelay + jitter

	if delay > max {
		delay = max
	}
	return delay
}
