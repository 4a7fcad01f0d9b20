package library

import (
	"github.com/google/uuid"

	"github.com/olivier-w/libcat/internal/store"
)

// ScanResult is one per-file outcome of a scan. Skipped marks a file that
// was already cataloged; its Movie is the existing record.
type ScanResult struct {
	Movie   *store.Movie
	Skipped bool
}

// ScanProgressEvent is fired once per processed file, including skipped
// ones. Current increases monotonically from 1 to Total.
type ScanProgressEvent struct {
	ScanID   uuid.UUID
	Current  int
	Total    int
	FileName string
}

// ScanCancelledEvent is fired at most once per scan, as its terminal
// signal. Processed counts the non-skipped results accumulated before the
// cancellation took effect.
type ScanCancelledEvent struct {
	ScanID    uuid.UUID
	Processed int
	Total     int
}

// EventSink receives scan events. Delivery is fire-and-forget from the
// scan loop; implementations must not block.
type EventSink interface {
	OnProgress(ScanProgressEvent)
	OnCancelled(ScanCancelledEvent)
}

// SinkFuncs adapts plain functions to the EventSink interface. Nil fields
// are simply not called.
type SinkFuncs struct {
	Progress  func(ScanProgressEvent)
	Cancelled func(ScanCancelledEvent)
}

func (s SinkFuncs) OnProgress(ev ScanProgressEvent) {
	if s.Progress != nil {
		s.Progress(ev)
	}
}

func (s SinkFuncs) OnCancelled(ev ScanCancelledEvent) {
	if s.Cancelled != nil {
		s.Cancelled(ev)
	}
}
