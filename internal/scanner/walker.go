// Package scanner enumerates video files on disk.
package scanner

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DiscoveredFile is one video file found during a walk. BaseName has the
// extension stripped; nothing here is persisted directly.
type DiscoveredFile struct {
	Path     string
	BaseName string
	Size     int64
}

// Walker enumerates video files under directory trees, filtering by a
// case-insensitive extension allow-list.
type Walker struct {
	extensions  []string
	excludeDirs []string
}

// NewWalker creates a Walker for the given extension allow-list.
func NewWalker(extensions []string) *Walker {
	return &Walker{extensions: extensions}
}

// NewWalkerWithExclusions creates a Walker that also skips directories
// whose names match any of the exclusion patterns.
func NewWalkerWithExclusions(extensions, excludeDirs []string) *Walker {
	return &Walker{extensions: extensions, excludeDirs: excludeDirs}
}

// IsVideoFile checks if a filename has an allowed video extension.
func (w *Walker) IsVideoFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range w.extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// isExcludedDir checks if a directory matches an exclusion pattern.
func (w *Walker) isExcludedDir(dirPath string) bool {
	dirName := strings.ToLower(filepath.Base(dirPath))
	for _, pattern := range w.excludeDirs {
		pattern = strings.ToLower(pattern)
		if dirName == pattern || strings.Contains(dirName, pattern) {
			return true
		}
	}
	return false
}

// Walk recursively enumerates video files under root in a stable order.
// An unreadable or missing root is an error; unreadable subtrees below it
// are logged and skipped.
func (w *Walker) Walk(root string) ([]DiscoveredFile, error) {
	var files []DiscoveredFile

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// An unreadable root means there is nothing to scan at all;
			// deeper failures only skip their subtree.
			if p == root {
				return err
			}
			slog.Warn("skipping unreadable path", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if p != root && w.isExcludedDir(p) {
				slog.Debug("skipping excluded directory", "path", p)
				return filepath.SkipDir
			}
			return nil
		}

		if !w.IsVideoFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("skipping unstattable file", "path", p, "error", err)
			return nil
		}

		files = append(files, DiscoveredFile{
			Path:     p,
			BaseName: strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Stat validates a single caller-supplied path: the file must exist and
// carry an allowed video extension. Used by the ad-hoc import path.
func (w *Walker) Stat(path string) (DiscoveredFile, bool) {
	if !w.IsVideoFile(filepath.Base(path)) {
		return DiscoveredFile{}, false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return DiscoveredFile{}, false
	}
	name := filepath.Base(path)
	return DiscoveredFile{
		Path:     path,
		BaseName: strings.TrimSuffix(name, filepath.Ext(name)),
		Size:     info.Size(),
	}, true
}
