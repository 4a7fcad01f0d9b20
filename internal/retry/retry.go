// Package retry provides exponential backoff for transient failures.
package retry

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

// Do executes fn with exponential backoff until it succeeds or maxAttempts
// is reached. The backoff doubles after each failed attempt starting from
// initialBackoff. Non-retryable errors return immediately.
func Do(fn func() error, maxAttempts int, initialBackoff time.Duration) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !IsRetryable(lastErr) && !IsRateLimited(lastErr) {
			return lastErr
		}

		if attempt < maxAttempts {
			sleep := backoff
			if IsRateLimited(lastErr) {
				// Rate limits deserve a longer pause
				sleep = backoff * 2
			}
			time.Sleep(sleep)
			backoff *= 2
		}
	}

	return lastErr
}

var transientMessages = []string{
	"status 500", "status 502", "status 503", "status 504",
	"connection reset", "connection refused", "no such host",
	"i/o timeout", "temporary failure",
}

// IsRetryable returns true for transient errors: network timeouts,
// connection failures and 5xx server responses.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	msg := err.Error()
	for _, marker := range transientMessages {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting (HTTP 429).
func IsRateLimited(err error) bool {
	return err != nil && strings.Contains(err.Error(), "status 429")
}
