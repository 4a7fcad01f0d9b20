package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/olivier-w/libcat/internal/config"
	"github.com/olivier-w/libcat/internal/library"
	"github.com/olivier-w/libcat/internal/scanner"
)

// runWatch keeps the library in sync with the configured directories: new
// files are imported as they settle, and a full rescan runs at the
// configured interval to catch anything the watcher missed.
func runWatch(ctx context.Context, cfg *config.Config, svc *library.Service) {
	if len(cfg.Library.Directories) == 0 {
		fmt.Fprintln(os.Stderr, "watch mode requires library.directories in the config")
		os.Exit(1)
	}

	watcher, err := scanner.NewWatcher(scanner.WatcherConfig{
		Directories:   cfg.Library.Directories,
		Extensions:    cfg.Library.Extensions,
		ExcludeDirs:   cfg.Library.ExcludeDirs,
		DebounceDelay: time.Duration(cfg.Watch.DebounceSec) * time.Second,
		Recursive:     cfg.Watch.Recursive,
	}, func(path string) error {
		_, err := svc.ImportFiles(ctx, []string{path}, nil)
		return err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start watcher: %v\n", err)
		os.Exit(1)
	}

	if err := watcher.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start watcher: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Stop()

	interval := time.Duration(cfg.Watch.RescanInterval) * time.Minute
	slog.Info("periodic rescans enabled", "interval_minutes", cfg.Watch.RescanInterval)

	// Initial sweep on startup
	runScheduledScan(ctx, cfg, svc)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runScheduledScan(ctx, cfg, svc)
		case <-ctx.Done():
			slog.Info("watch mode stopped")
			return
		}
	}
}

// runScheduledScan sweeps every configured directory once. The service
// serializes scans itself; a sweep that collides with an in-flight import
// is skipped and the next tick retries.
func runScheduledScan(ctx context.Context, cfg *config.Config, svc *library.Service) {
	start := time.Now()
	for _, dir := range cfg.Library.Directories {
		results, err := svc.ScanFolder(ctx, dir, nil)
		if errors.Is(err, library.ErrScanInProgress) {
			slog.Warn("rescan skipped: previous scan still running", "dir", dir)
			continue
		}
		if err != nil {
			slog.Error("rescan failed", "dir", dir, "error", err)
			continue
		}

		var added int
		for _, r := range results {
			if !r.Skipped {
				added++
			}
		}
		if added > 0 {
			slog.Info("rescan cataloged new files", "dir", dir, "added", added)
		}
	}
	slog.Debug("rescan sweep complete", "duration_sec", time.Since(start).Seconds())
}
