// Package thumbs extracts still-image thumbnails and durations from video
// files using the ffmpeg/ffprobe tools.
package thumbs

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// GenerationError wraps a thumbnail extraction failure. Callers catalog the
// file without a thumbnail when they see one.
type GenerationError struct {
	Path string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("thumbnail generation failed for %s: %v", e.Path, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Result holds the outcome of a successful generation.
type Result struct {
	ThumbnailPath   string
	DurationSeconds float64
}

// Generator produces JPEG thumbnails into a flat output directory, one per
// source path, named by a hash of the absolute path.
type Generator struct {
	ffmpegPath  string
	ffprobePath string
	outputDir   string
	seekPercent int
	timeout     time.Duration
}

// Config holds generator settings.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	OutputDir   string
	SeekPercent int
	Timeout     time.Duration
}

// NewGenerator creates a thumbnail generator.
func NewGenerator(cfg Config) *Generator {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.SeekPercent <= 0 || cfg.SeekPercent >= 100 {
		cfg.SeekPercent = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Generator{
		ffmpegPath:  cfg.FFmpegPath,
		ffprobePath: cfg.FFprobePath,
		outputDir:   cfg.OutputDir,
		seekPercent: cfg.SeekPercent,
		timeout:     cfg.Timeout,
	}
}

// thumbPath derives the output path for a source video file.
func (g *Generator) thumbPath(filePath string) string {
	sum := md5.Sum([]byte(filePath))
	return filepath.Join(g.outputDir, fmt.Sprintf("%x.jpg", sum))
}

// Generate extracts a poster frame and the duration for the given video.
// An existing thumbnail is reused unless force is set. Failures come back
// as *GenerationError.
func (g *Generator) Generate(ctx context.Context, filePath string, force bool) (*Result, error) {
	duration, err := g.probeDuration(ctx, filePath)
	if err != nil {
		return nil, &GenerationError{Path: filePath, Err: err}
	}

	outPath := g.thumbPath(filePath)
	if !force {
		if _, statErr := os.Stat(outPath); statErr == nil {
			return &Result{ThumbnailPath: outPath, DurationSeconds: duration}, nil
		}
	}

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return nil, &GenerationError{Path: filePath, Err: err}
	}

	// Seek a little way into the video so we don't capture studio logos
	seekTo := int(duration) * g.seekPercent / 100
	if seekTo < 1 {
		seekTo = 1
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.ffmpegPath,
		"-ss", fmt.Sprintf("%d", seekTo),
		"-i", filePath,
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		outPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			slog.Warn("thumbnail generation timed out", "path", filePath, "timeout", g.timeout)
			return nil, &GenerationError{Path: filePath, Err: ctx.Err()}
		}
		slog.Debug("ffmpeg output", "output", string(output))
		return nil, &GenerationError{Path: filePath, Err: err}
	}

	return &Result{ThumbnailPath: outPath, DurationSeconds: duration}, nil
}

// CopyCustom installs a user-supplied image as the thumbnail for a video
// file and returns the installed path.
func (g *Generator) CopyCustom(videoPath, imagePath string) (string, error) {
	src, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open custom image: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	outPath := g.thumbPath(videoPath)
	dst, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create thumbnail file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy custom image: %w", err)
	}
	return outPath, nil
}
