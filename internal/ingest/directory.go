// Package ingest turns files on disk into documents for the import pipeline.
package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/specs-importer/constants"
	"github.com/joseph-ayodele/specs-importer/internal/ocr"
)

// maxFileBytes caps a single document read from disk.
const maxFileBytes = 64 << 20

type DirStats struct {
	Scanned int
	Matched int
	Skipped int
	Failed  int
}

// FileError is a file that matched but could not be read.
type FileError struct {
	Path string
	Err  error
}

// Allowed reports whether path has an extension the importer accepts.
func Allowed(path string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// ReadDocument loads one file. PDFs keep their bytes; text files are decoded as UTF-8.
func ReadDocument(path string) (ocr.Document, error) {
	doc := ocr.Document{Name: filepath.Base(path)}
	info, err := os.Stat(path)
	if err != nil {
		return doc, err
	}
	if info.Size() > maxFileBytes {
		return doc, fmt.Errorf("%s: file exceeds %d bytes", doc.Name, maxFileBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.PDF:
		doc.Data = data
	case constants.TEXT:
		doc.Text = string(data)
	default:
		return doc, fmt.Errorf("%s: unsupported file type", doc.Name)
	}
	return doc, nil
}

// CollectDirectory walks root and reads every accepted file, sorted by path so batches are repeatable.
// Unreadable files are reported and skipped; the walk itself only fails on a bad root.
func CollectDirectory(root string, skipHidden bool, logger *slog.Logger) ([]ocr.Document, []FileError, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, nil, stats, errors.New("root directory is required")
	}

	var paths []string
	var failures []FileError
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			failures = append(failures, FileError{Path: path, Err: walkErr})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !Allowed(path) {
			stats.Skipped++
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, failures, stats, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)

	docs := make([]ocr.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := ReadDocument(p)
		if err != nil {
			logger.Warn("ingest.read.failed", "path", p, "error", err)
			failures = append(failures, FileError{Path: p, Err: err})
			stats.Failed++
			continue
		}
		docs = append(docs, doc)
		stats.Matched++
	}
	logger.Info("ingest.directory.ok", "root", root, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	return docs, failures, stats, nil
}
