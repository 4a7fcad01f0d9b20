package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Library    LibraryConfig    `yaml:"library"`
	TMDB       TMDBConfig       `yaml:"tmdb"`
	Thumbnails ThumbnailsConfig `yaml:"thumbnails"`
	Watch      WatchConfig      `yaml:"watch"`
}

// LibraryConfig holds workspace and scan settings
type LibraryConfig struct {
	DataDir     string   `yaml:"data_dir"`
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// TMDBConfig holds TMDB API configuration. An empty APIKey disables
// metadata enrichment entirely.
type TMDBConfig struct {
	APIKey         string `yaml:"api_key"`
	Language       string `yaml:"language"`
	RateLimitDelay int    `yaml:"rate_limit_delay"`
	MaxAttempts    int    `yaml:"max_attempts"`
	InitialBackoff int    `yaml:"initial_backoff_ms"`
	CacheTTLDays   int    `yaml:"cache_ttl_days"`
}

// ThumbnailsConfig holds thumbnail generation settings
type ThumbnailsConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	Dir         string `yaml:"dir"`
	SeekPercent int    `yaml:"seek_percent"`
	TimeoutSec  int    `yaml:"timeout_sec"`
}

// WatchConfig holds file watcher and rescan settings
type WatchConfig struct {
	DebounceSec    int  `yaml:"debounce_sec"`
	Recursive      bool `yaml:"recursive"`
	RescanInterval int  `yaml:"rescan_interval_min"`
}

// DefaultExtensions is the video extension allow-list used when the
// config does not override it.
var DefaultExtensions = []string{".mp4", ".mkv", ".avi", ".mov", ".wmv", ".webm", ".m4v", ".flv"}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	// Expand ~ to home directory if present
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	// Read the config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Library.DataDir == "" {
		return fmt.Errorf("library.data_dir is required")
	}

	if len(cfg.Library.Extensions) == 0 {
		cfg.Library.Extensions = DefaultExtensions
	}

	if cfg.TMDB.Language == "" {
		cfg.TMDB.Language = "en-US"
	}
	if cfg.TMDB.MaxAttempts <= 0 {
		cfg.TMDB.MaxAttempts = 3
	}
	if cfg.TMDB.InitialBackoff <= 0 {
		cfg.TMDB.InitialBackoff = 1000
	}
	if cfg.TMDB.CacheTTLDays <= 0 {
		cfg.TMDB.CacheTTLDays = 30
	}

	if cfg.Thumbnails.FFmpegPath == "" {
		cfg.Thumbnails.FFmpegPath = "ffmpeg"
	}
	if cfg.Thumbnails.FFprobePath == "" {
		cfg.Thumbnails.FFprobePath = "ffprobe"
	}
	if cfg.Thumbnails.Dir == "" {
		cfg.Thumbnails.Dir = filepath.Join(cfg.Library.DataDir, "thumbnails")
	}
	if cfg.Thumbnails.SeekPercent <= 0 || cfg.Thumbnails.SeekPercent >= 100 {
		cfg.Thumbnails.SeekPercent = 10
	}
	if cfg.Thumbnails.TimeoutSec <= 0 {
		cfg.Thumbnails.TimeoutSec = 120
	}

	if cfg.Watch.DebounceSec <= 0 {
		cfg.Watch.DebounceSec = 5
	}
	if cfg.Watch.RescanInterval <= 0 {
		cfg.Watch.RescanInterval = 60
	}

	// Ensure workspace directories exist
	if err := os.MkdirAll(cfg.Library.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.Thumbnails.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create thumbnails directory: %w", err)
	}

	return nil
}
