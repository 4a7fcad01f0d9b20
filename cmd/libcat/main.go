package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/olivier-w/libcat/internal/config"
	"github.com/olivier-w/libcat/internal/library"
	"github.com/olivier-w/libcat/internal/metadata"
	"github.com/olivier-w/libcat/internal/metadata/cache"
	"github.com/olivier-w/libcat/internal/scanner"
	"github.com/olivier-w/libcat/internal/thumbs"
)

var (
	configPath = flag.String("config", "./config/config.yaml", "Path to configuration file")
	scanDir    = flag.String("scan", "", "Scan a folder into the library")
	importMode = flag.Bool("import", false, "Import the files listed as arguments")
	watchMode  = flag.Bool("watch", false, "Watch configured directories and rescan periodically")
	dupReport  = flag.Bool("duplicates", false, "Report duplicate library entries")
	dryRun     = flag.Bool("dry-run", false, "With -scan, list what would be cataloged without writing")
	password   = flag.String("password", "", "Workspace password (defaults to $LIBCAT_PASSWORD)")
	verbose    = flag.Bool("verbose", false, "Show detailed logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	pw := *password
	if pw == "" {
		pw = os.Getenv("LIBCAT_PASSWORD")
	}

	gen := thumbs.NewGenerator(thumbs.Config{
		FFmpegPath:  cfg.Thumbnails.FFmpegPath,
		FFprobePath: cfg.Thumbnails.FFprobePath,
		OutputDir:   cfg.Thumbnails.Dir,
		SeekPercent: cfg.Thumbnails.SeekPercent,
		Timeout:     time.Duration(cfg.Thumbnails.TimeoutSec) * time.Second,
	})

	ws, err := library.OpenWorkspace(cfg.Library.DataDir, pw, gen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error unlocking workspace: %v\n", err)
		os.Exit(1)
	}
	defer ws.Lock()

	matcher := buildMatcher(cfg)

	svc := library.New(library.Config{
		Walker: scanner.NewWalkerWithExclusions(cfg.Library.Extensions, cfg.Library.ExcludeDirs),
		Sink:   consoleSink(),
	})
	svc.Bind(ws.Store, ws.Thumbs, matcher)
	defer svc.Release()

	// Ctrl-C requests cancellation of the active scan; a second Ctrl-C
	// kills the process via the restored default handler.
	token := library.NewCancelToken()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("cancellation requested, finishing current file")
		token.Cancel()
		signal.Stop(sigChan)
	}()

	ctx := context.Background()

	switch {
	case *scanDir != "" && *dryRun:
		runDryRun(ws, cfg, *scanDir)

	case *scanDir != "":
		runFolderScan(ctx, svc, *scanDir, token)

	case *importMode:
		results, err := svc.ImportFiles(ctx, flag.Args(), token)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}
		printSummary(results)

	case *dupReport:
		sets, err := svc.FindDuplicates()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Duplicate report failed: %v\n", err)
			os.Exit(1)
		}
		printDuplicates(sets)

	case *watchMode:
		runWatch(ctx, cfg, svc)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func buildMatcher(cfg *config.Config) library.Matcher {
	if cfg.TMDB.APIKey == "" {
		slog.Info("no TMDB API key configured, enrichment disabled")
		return nil
	}

	apiCache, err := cache.NewSQLiteCache(filepath.Join(cfg.Library.DataDir, "tmdb_cache.db"))
	if err != nil {
		slog.Warn("failed to open metadata cache, continuing without", "error", err)
		apiCache = nil
	}

	clientCfg := metadata.ClientConfig{
		APIKey:           cfg.TMDB.APIKey,
		Language:         cfg.TMDB.Language,
		RateLimitDelayMs: cfg.TMDB.RateLimitDelay,
		MaxAttempts:      cfg.TMDB.MaxAttempts,
		InitialBackoffMs: cfg.TMDB.InitialBackoff,
		CacheTTLDays:     cfg.TMDB.CacheTTLDays,
	}
	if apiCache != nil {
		clientCfg.Cache = apiCache
	}
	return metadata.NewMatcher(metadata.NewClient(clientCfg))
}

func consoleSink() library.EventSink {
	return library.SinkFuncs{
		Progress: func(ev library.ScanProgressEvent) {
			fmt.Printf("[%d/%d] %s\n", ev.Current, ev.Total, ev.FileName)
		},
		Cancelled: func(ev library.ScanCancelledEvent) {
			fmt.Printf("Scan cancelled: %d of %d files cataloged\n", ev.Processed, ev.Total)
		},
	}
}

// runDryRun walks the folder and reports what a real scan would do, without
// touching thumbnails or the catalog.
func runDryRun(ws *library.Workspace, cfg *config.Config, dir string) {
	walker := scanner.NewWalkerWithExclusions(cfg.Library.Extensions, cfg.Library.ExcludeDirs)
	files, err := walker.Walk(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}

	var newFiles, known int
	for _, f := range files {
		existing, err := ws.Store.FindByPath(f.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
			os.Exit(1)
		}
		if existing != nil {
			known++
			continue
		}
		newFiles++
		fmt.Printf("would catalog: %s\n", f.Path)
	}
	fmt.Printf("\nDry run: %d file(s) found, %d new, %d already cataloged\n", len(files), newFiles, known)
}

func runFolderScan(ctx context.Context, svc *library.Service, dir string, token *library.CancelToken) {
	results, err := svc.ScanFolder(ctx, dir, token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}

func printSummary(results []library.ScanResult) {
	var added, skipped, enriched int
	for _, r := range results {
		if r.Skipped {
			skipped++
			continue
		}
		added++
		if r.Movie.TMDBID != nil {
			enriched++
		}
	}
	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Files seen:   %d\n", len(results))
	fmt.Printf("  Cataloged:    %d\n", added)
	fmt.Printf("  Enriched:     %d\n", enriched)
	fmt.Printf("  Already knew: %d\n", skipped)
}

func printDuplicates(sets []library.DuplicateSet) {
	if len(sets) == 0 {
		fmt.Println("No duplicates found.")
		return
	}

	fmt.Printf("Found %d duplicate set(s):\n\n", len(sets))
	for i, set := range sets {
		fmt.Printf("--- Duplicate Set %d (%s %s) ---\n", i+1, set.KeyType, set.Key)
		for _, e := range set.Entries {
			marker := ""
			if e.Recommended {
				marker = " * RECOMMENDED"
			}
			fmt.Printf("  %s%s\n", e.Movie.FilePath, marker)
			if e.Resolution != "" || e.Source != "" {
				fmt.Printf("      Quality: %s %s (score %d)\n", e.Resolution, e.Source, e.QualityScore)
			}
		}
		fmt.Println()
	}
}
