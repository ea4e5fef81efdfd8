package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/llehouerou/mediapick/internal/media"
)

// fileInfo holds information about a discovered media file.
type fileInfo struct {
	path      string
	relPath   string
	name      string
	mediaType media.Type
}

// checkRoot verifies that root is an existing directory.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("folder %q: %w", root, ErrNotFound)
		}
		return fmt.Errorf("%w: stat %s: %w", ErrIO, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("folder %q is not a directory: %w", root, ErrNotFound)
	}
	return nil
}

// discoverFiles walks root and returns every video or photo found.
// Unreadable entries below root are skipped.
func discoverFiles(root string) ([]fileInfo, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}

	var files []fileInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			// Skip unreadable directories and files, keep scanning the rest
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		mt, ok := media.Classify(path)
		if !ok {
			return nil
		}
		files = append(files, fileInfo{
			path:      path,
			relPath:   relativePath(root, path),
			name:      filepath.Base(path),
			mediaType: mt,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %w", ErrIO, root, err)
	}
	return files, nil
}
