// Package reliability classifies upstream failures. The core never retries;
// callers use these classifications to decide whether a retry is worth it.
package reliability

import "time"

// RetryableStatus reports whether an HTTP status from a model or speech
// vendor is worth retrying.
func RetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// RetryableStreamCode reports whether an error code from a realtime
// synthesis stream is worth retrying.
func RetryableStreamCode(code string) bool {
	switch code {
	case "rate_limited", "resource_exhausted", "queue_overflow", "error":
		return true
	default:
		return false
	}
}

// Backoff computes a deterministic capped exponential backoff duration for
// callers that choose to retry.
func Backoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}
