package retry

import (
	"errors"
	"testing"
	"time"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"server error 500", errors.New("API error (status 500): internal"), true},
		{"bad gateway", errors.New("API error (status 502): upstream"), true},
		{"service unavailable", errors.New("API error (status 503)"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"dns failure", errors.New("lookup api.example.com: no such host"), true},
		{"io timeout", errors.New("read tcp: i/o timeout"), true},
		{"client error 404", errors.New("API error (status 404): not found"), false},
		{"auth error 401", errors.New("API error (status 401): invalid key"), false},
		{"parse error", errors.New("failed to decode response"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRateLimited(t *testing.T) {
	if !IsRateLimited(errors.New("API error (status 429): too many requests")) {
		t.Error("expected 429 to be rate limited")
	}
	if IsRateLimited(errors.New("API error (status 500)")) {
		t.Error("500 is not a rate limit")
	}
	if IsRateLimited(nil) {
		t.Error("nil is not a rate limit")
	}
}

func TestDoRetriesTransientFailures(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errors.New("API error (status 503)")
		}
		return nil
	}, 5, time.Millisecond)

	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestDoStopsOnPermanentFailure(t *testing.T) {
	calls := 0
	permanent := errors.New("API error (status 404): not found")
	err := Do(func() error {
		calls++
		return permanent
	}, 5, time.Millisecond)

	if !errors.Is(err, permanent) {
		t.Fatalf("expected the permanent error back, got %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent failure should not be retried, got %d attempts", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errors.New("API error (status 500)")
	}, 3, time.Millisecond)

	if err == nil {
		t.Fatal("expected failure after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}
