// Package library drives the catalog: it walks folders, deduplicates
// against the store, generates thumbnails and optionally enriches new
// entries with remote metadata.
package library

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/olivier-w/libcat/internal/metadata"
	"github.com/olivier-w/libcat/internal/scanner"
	"github.com/olivier-w/libcat/internal/store"
	"github.com/olivier-w/libcat/internal/thumbs"
)

var (
	// ErrNotReady is returned when no unlocked workspace is bound.
	ErrNotReady = errors.New("no active workspace")

	// ErrScanInProgress is returned when a scan is requested while
	// another one is still running. Only one scan runs per workspace.
	ErrScanInProgress = errors.New("a scan is already in progress")
)

// Store is the catalog persistence consumed by the orchestrator.
type Store interface {
	FindByPath(path string) (*store.Movie, error)
	Insert(m *store.Movie) error
	Update(id int64, patch store.MoviePatch) (*store.Movie, error)
	List() ([]*store.Movie, error)
}

// Thumbnailer produces a still image and duration for a video file.
type Thumbnailer interface {
	Generate(ctx context.Context, filePath string, force bool) (*thumbs.Result, error)
}

// Matcher reconciles a parsed title/year against the remote metadata
// service. A nil Matcher on the service disables enrichment.
type Matcher interface {
	Match(ctx context.Context, title string, year int) (int64, error)
	FetchFull(ctx context.Context, candidateID int64) (*metadata.Enrichment, error)
}

// Service is the scan orchestrator for one workspace.
type Service struct {
	mu      sync.RWMutex
	store   Store
	thumbs  Thumbnailer
	matcher Matcher

	walker *scanner.Walker
	sink   EventSink

	scanActive atomic.Bool
}

// Config holds the service collaborators.
type Config struct {
	Walker *scanner.Walker
	Sink   EventSink
}

// New creates a Service with no workspace bound; Bind must be called with
// an unlocked workspace's collaborators before scanning.
func New(cfg Config) *Service {
	walker := cfg.Walker
	if walker == nil {
		walker = scanner.NewWalker(defaultExtensions())
	}
	return &Service{walker: walker, sink: cfg.Sink}
}

// Bind attaches an unlocked workspace's store and thumbnail generator.
// The matcher may be nil, which disables enrichment.
func (s *Service) Bind(st Store, th Thumbnailer, m Matcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = st
	s.thumbs = th
	s.matcher = m
}

// Release detaches the workspace. An in-flight scan fails fast on its next
// file rather than touching stale handles.
func (s *Service) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = nil
	s.thumbs = nil
	s.matcher = nil
}

// Ready reports whether an unlocked workspace is bound.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store != nil && s.thumbs != nil
}

// collaborators snapshots the current workspace binding.
func (s *Service) collaborators() (Store, Thumbnailer, Matcher) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store, s.thumbs, s.matcher
}

func (s *Service) emitProgress(ev ScanProgressEvent) {
	if s.sink != nil {
		s.sink.OnProgress(ev)
	}
}

func (s *Service) emitCancelled(ev ScanCancelledEvent) {
	if s.sink != nil {
		s.sink.OnCancelled(ev)
	}
}

func defaultExtensions() []string {
	return []string{".mp4", ".mkv", ".avi", ".mov", ".wmv", ".webm", ".m4v", ".flv"}
}
