package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Load replaces the in-memory library with the persisted document.
// A missing document is an empty library; an unreadable or corrupt one is
// logged and also yields an empty library.
func (s *Store) Load() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	idx, err := readIndex(s.path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("path", s.path).Msg("no library file yet, starting empty")
		idx = NewIndex()
	default:
		log.Error().Err(err).Str("path", s.path).Msg("failed to load library, starting empty")
		idx = NewIndex()
	}

	s.mu.Lock()
	s.index = idx
	s.reindex()
	s.mu.Unlock()
}

// Save writes the library document. The full document is written to a
// sibling temporary file which then replaces the destination.
func (s *Store) Save() error {
	if s.path == "" {
		return fmt.Errorf("save library: no path configured: %w", ErrInvalidArgument)
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	// Encoding under the read lock yields a consistent document; writers
	// wait only for the encode, not for the disk.
	s.mu.RLock()
	data, err := json.MarshalIndent(s.index, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("%w: encode library: %w", ErrIO, err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return err
	}
	log.Debug().Str("path", s.path).Int("bytes", len(data)).Msg("library saved")
	return nil
}

func readIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fs.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}

	idx := NewIndex()
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptData, path, err)
	}
	sanitize(idx)
	return idx, nil
}

// sanitize fixes up documents written by older or hand-edited files:
// nil collections become empty and duplicate paths keep their first entry.
func sanitize(idx *Index) {
	if idx.Sources == nil {
		idx.Sources = []Source{}
	}
	if idx.Items == nil {
		idx.Items = []Item{}
	}
	seen := make(map[string]bool, len(idx.Items))
	kept := idx.Items[:0]
	for _, it := range idx.Items {
		key := pathKey(it.FullPath)
		if it.FullPath == "" || seen[key] {
			log.Warn().Str("path", it.FullPath).Msg("dropping duplicate or empty library item")
			continue
		}
		seen[key] = true
		if it.PlayCount < 0 {
			it.PlayCount = 0
		}
		kept = append(kept, it)
	}
	idx.Items = kept
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, dir, err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, tmp, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: write %s: %w", ErrIO, tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: sync %s: %w", ErrIO, tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: close %s: %w", ErrIO, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: replace %s: %w", ErrIO, path, err)
	}
	return nil
}

func defaultBackupDir(libraryPath string) string {
	return filepath.Join(filepath.Dir(libraryPath), "backups")
}
