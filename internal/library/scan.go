package library

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/olivier-w/libcat/internal/metadata"
	"github.com/olivier-w/libcat/internal/scanner"
	"github.com/olivier-w/libcat/internal/store"
)

// ScanFolder walks the tree under rootPath and catalogs every video file
// found. One ScanProgressEvent fires per file; on cancellation the results
// accumulated so far are returned together with a single
// ScanCancelledEvent. token may be nil for a non-cancellable scan.
func (s *Service) ScanFolder(ctx context.Context, rootPath string, token *CancelToken) ([]ScanResult, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	if !s.scanActive.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.scanActive.Store(false)

	files, err := s.walker.Walk(rootPath)
	if err != nil {
		return nil, err
	}
	slog.Info("folder walk complete", "root", rootPath, "files_found", len(files))

	return s.runScan(ctx, files, token)
}

// ImportFiles catalogs a caller-supplied list of paths through the same
// per-file pipeline as ScanFolder. Paths that do not exist or are not
// video files are silently dropped.
func (s *Service) ImportFiles(ctx context.Context, paths []string, token *CancelToken) ([]ScanResult, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	if !s.scanActive.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.scanActive.Store(false)

	var files []scanner.DiscoveredFile
	for _, p := range paths {
		f, ok := s.walker.Stat(p)
		if !ok {
			slog.Debug("ignoring non-video path", "path", p)
			continue
		}
		files = append(files, f)
	}

	return s.runScan(ctx, files, token)
}

// runScan is the shared per-file pipeline behind both entry points.
func (s *Service) runScan(ctx context.Context, files []scanner.DiscoveredFile, token *CancelToken) ([]ScanResult, error) {
	scanID := uuid.New()
	total := len(files)
	results := make([]ScanResult, 0, total)
	cataloged := 0

	for i, f := range files {
		// Cancellation is checked before any per-file work so a cancel
		// request never interrupts a file mid-pipeline.
		if cancelRequested(ctx, token) {
			s.emitCancelled(ScanCancelledEvent{ScanID: scanID, Processed: cataloged, Total: total})
			slog.Info("scan cancelled", "scan_id", scanID, "processed", cataloged, "total", total)
			return results, nil
		}

		res, err := s.processFile(ctx, f)
		if err != nil {
			// Storage is gone (workspace locked mid-scan or the database
			// failed); fail fast instead of grinding through stale handles.
			return results, err
		}

		results = append(results, res)
		if !res.Skipped {
			cataloged++
		}
		s.emitProgress(ScanProgressEvent{
			ScanID:   scanID,
			Current:  i + 1,
			Total:    total,
			FileName: filepath.Base(f.Path),
		})
	}

	slog.Info("scan complete", "scan_id", scanID, "total", total, "cataloged", cataloged, "skipped", total-cataloged)
	return results, nil
}

// processFile runs one discovered file through dedupe, thumbnail, insert
// and optional enrichment. Thumbnail and enrichment failures are logged
// and recovered; only storage failures surface as errors.
func (s *Service) processFile(ctx context.Context, f scanner.DiscoveredFile) (ScanResult, error) {
	st, th, matcher := s.collaborators()
	if st == nil || th == nil {
		return ScanResult{}, ErrNotReady
	}

	existing, err := st.FindByPath(f.Path)
	if err != nil {
		return ScanResult{}, err
	}
	if existing != nil {
		slog.Debug("already cataloged", "path", f.Path, "id", existing.ID)
		return ScanResult{Movie: existing, Skipped: true}, nil
	}

	movie := &store.Movie{
		FilePath: f.Path,
		Title:    f.BaseName,
		FileSize: &f.Size,
	}

	if thumb, thumbErr := th.Generate(ctx, f.Path, false); thumbErr != nil {
		slog.Warn("thumbnail generation failed", "file", f.BaseName, "error", thumbErr)
	} else {
		movie.ThumbnailPath = &thumb.ThumbnailPath
		movie.Duration = &thumb.DurationSeconds
	}

	if err := st.Insert(movie); err != nil {
		if errors.Is(err, store.ErrDuplicatePath) {
			// Raced with another writer; treat as already cataloged.
			existing, findErr := st.FindByPath(f.Path)
			if findErr != nil {
				return ScanResult{}, findErr
			}
			if existing != nil {
				return ScanResult{Movie: existing, Skipped: true}, nil
			}
		}
		return ScanResult{}, err
	}

	if matcher != nil {
		if enriched := s.enrich(ctx, st, matcher, movie, f.BaseName); enriched != nil {
			movie = enriched
		}
	}

	return ScanResult{Movie: movie}, nil
}

// enrich looks the file up on the remote service and applies the match to
// the stored record. Any failure leaves the base catalog entry untouched
// and returns nil.
func (s *Service) enrich(ctx context.Context, st Store, matcher Matcher, movie *store.Movie, baseName string) *store.Movie {
	title, year := metadata.ParseFilename(baseName)

	candidateID, err := matcher.Match(ctx, title, year)
	if err != nil {
		if errors.Is(err, metadata.ErrNoMatch) {
			slog.Debug("no remote match", "title", title, "year", year)
		} else {
			slog.Warn("remote match failed", "title", title, "error", err)
		}
		return nil
	}

	enr, err := matcher.FetchFull(ctx, candidateID)
	if err != nil {
		slog.Warn("metadata fetch failed", "candidate_id", candidateID, "error", err)
		return nil
	}

	patch := store.MoviePatch{
		Title:       &enr.Title,
		TMDBID:      &enr.TMDBID,
		PosterPath:  &enr.PosterPath,
		TMDBRating:  &enr.Rating,
		Overview:    &enr.Overview,
		Director:    &enr.Director,
		Cast:        &enr.Cast,
		ReleaseDate: &enr.ReleaseDate,
		Genres:      &enr.Genres,
	}
	if enr.Year > 0 {
		patch.Year = &enr.Year
	}

	updated, err := st.Update(movie.ID, patch)
	if err != nil {
		slog.Warn("failed to apply enrichment", "id", movie.ID, "error", err)
		return nil
	}

	slog.Info("enriched", "file", baseName, "match", enr)
	return updated
}

func cancelRequested(ctx context.Context, token *CancelToken) bool {
	if token != nil && token.Cancelled() {
		return true
	}
	return ctx.Err() != nil
}
