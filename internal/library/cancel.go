package library

import "sync/atomic"

// CancelToken is a per-scan cancellation handle. Cancel may be called from
// any goroutine and is idempotent; cancelling a finished scan is a no-op.
// The scan loop reads the flag once at the top of each file iteration, so a
// cancel request takes effect within at most one file's worth of work.
type CancelToken struct {
	cancelled atomic.Bool
}

// NewCancelToken creates a token for a single scan invocation.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel requests cancellation of the scan holding this token.
func (t *CancelToken) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether cancellation has been requested.
func (t *CancelToken) Cancelled() bool {
	return t.cancelled.Load()
}
