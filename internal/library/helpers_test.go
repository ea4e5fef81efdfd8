package library

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/llehouerou/mediapick/internal/media"
)

// newTestStore creates an empty store persisted under a temp directory.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return Open(Options{
		Path:      filepath.Join(dir, "library.json"),
		BackupDir: filepath.Join(dir, "backups"),
	})
}

// writeFiles creates empty files (and parent dirs) under root.
func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}

func video(sourceID, path string) Item {
	return Item{
		SourceID:     sourceID,
		FullPath:     path,
		RelativePath: filepath.Base(path),
		FileName:     filepath.Base(path),
		MediaType:    media.Video,
		Tags:         []string{},
	}
}

func photo(sourceID, path string) Item {
	it := video(sourceID, path)
	it.MediaType = media.Photo
	return it
}

func minutes(n int) *time.Duration {
	return ptr(time.Duration(n) * time.Minute)
}
