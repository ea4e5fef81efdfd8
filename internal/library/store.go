package library

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// BackupPolicy controls rotating backups of the library document.
type BackupPolicy struct {
	Enabled    bool
	MinGap     time.Duration
	MaxBackups int
}

// Options configures a Store.
type Options struct {
	Path      string // library document
	BackupDir string // defaults to a "backups" folder next to Path
	Backup    BackupPolicy
}

// Store owns the in-memory library and its persisted document.
//
// mu guards index and byPath. persistMu serializes disk I/O (save, load,
// backups) and is always acquired before mu when both are needed.
type Store struct {
	path      string
	backupDir string
	policy    BackupPolicy

	mu     sync.RWMutex
	index  *Index
	byPath map[string]int // pathKey -> slot in index.Items

	persistMu sync.Mutex
	now       func() time.Time
}

// Open creates a store for opts.Path and loads it. A missing or unreadable
// document yields an empty library.
func Open(opts Options) *Store {
	s := newStore(opts)
	s.Load()
	return s
}

func newStore(opts Options) *Store {
	backupDir := opts.BackupDir
	if backupDir == "" && opts.Path != "" {
		backupDir = defaultBackupDir(opts.Path)
	}
	s := &Store{
		path:      opts.Path,
		backupDir: backupDir,
		policy:    opts.Backup,
		index:     NewIndex(),
		now:       time.Now,
	}
	s.reindex()
	return s
}

// Path returns the library document path.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a deep copy of the current index. Callers may read and
// modify it freely without affecting the store.
func (s *Store) Snapshot() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Clone()
}

// Sources returns all sources in import order.
func (s *Store) Sources() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Source, len(s.index.Sources))
	copy(out, s.index.Sources)
	return out
}

// Source returns the source with the given id.
func (s *Store) Source(id string) (Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.sourceIndex(id)
	if i < 0 {
		return Source{}, fmt.Errorf("source %q: %w", id, ErrNotFound)
	}
	return s.index.Sources[i], nil
}

// UpdateSource replaces the source with the same id.
func (s *Store) UpdateSource(src Source) error {
	if src.ID == "" {
		return fmt.Errorf("update source: empty id: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.sourceIndex(src.ID)
	if i < 0 {
		return fmt.Errorf("source %q: %w", src.ID, ErrNotFound)
	}
	s.index.Sources[i] = src
	return nil
}

// SetSourceEnabled enables or disables a source. Items of a disabled
// source stay in the library but are never eligible.
func (s *Store) SetSourceEnabled(id string, enabled bool) error {
	if id == "" {
		return fmt.Errorf("set source enabled: empty id: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.sourceIndex(id)
	if i < 0 {
		return fmt.Errorf("source %q: %w", id, ErrNotFound)
	}
	s.index.Sources[i].IsEnabled = enabled
	return nil
}

// RemoveSource deletes a source and every item that belongs to it.
// It returns the number of items removed, which may be zero.
func (s *Store) RemoveSource(id string) (int, error) {
	if id == "" {
		return 0, fmt.Errorf("remove source: empty id: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.sourceIndex(id)
	if i < 0 {
		return 0, fmt.Errorf("source %q: %w", id, ErrNotFound)
	}
	s.index.Sources = append(s.index.Sources[:i], s.index.Sources[i+1:]...)
	removed := s.removeItemsWhere(func(it *Item) bool { return it.SourceID == id })
	return removed, nil
}

// Item returns a copy of the item at fullPath (case-insensitive).
func (s *Store) Item(fullPath string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.byPath[pathKey(fullPath)]
	if !ok {
		return Item{}, fmt.Errorf("item %q: %w", fullPath, ErrNotFound)
	}
	return s.index.Items[slot].clone(), nil
}

// Items returns copies of all items in library order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.index.Items))
	for i := range s.index.Items {
		out[i] = s.index.Items[i].clone()
	}
	return out
}

// ItemCount returns the number of tracked items.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index.Items)
}

// UpdateItem upserts item by FullPath. An existing item keeps its slot, so
// the item count and ordering do not change.
func (s *Store) UpdateItem(item Item) error {
	if strings.TrimSpace(item.FullPath) == "" {
		return fmt.Errorf("update item: empty path: %w", ErrInvalidArgument)
	}
	if !item.MediaType.Valid() {
		return fmt.Errorf("update item %q: %s: %w", item.FullPath, item.MediaType, ErrInvalidArgument)
	}
	item = item.clone()
	item.Tags = normalizeTags(item.Tags)

	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.byPath[pathKey(item.FullPath)]; ok {
		s.index.Items[slot] = item
		return nil
	}
	s.appendItem(item)
	return nil
}

// RemoveItem deletes the item at fullPath.
func (s *Store) RemoveItem(fullPath string) error {
	if fullPath == "" {
		return fmt.Errorf("remove item: empty path: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pathKey(fullPath)
	if _, ok := s.byPath[key]; !ok {
		return fmt.Errorf("item %q: %w", fullPath, ErrNotFound)
	}
	s.removeItemsWhere(func(it *Item) bool { return pathKey(it.FullPath) == key })
	return nil
}

// The helpers below expect s.mu to be held for writing.

func (s *Store) sourceIndex(id string) int {
	for i := range s.index.Sources {
		if s.index.Sources[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) appendItem(item Item) {
	s.index.Items = append(s.index.Items, item)
	s.byPath[pathKey(item.FullPath)] = len(s.index.Items) - 1
}

// removeItemsWhere drops matching items, keeping the order of the rest.
func (s *Store) removeItemsWhere(match func(*Item) bool) int {
	kept := s.index.Items[:0]
	removed := 0
	for i := range s.index.Items {
		if match(&s.index.Items[i]) {
			removed++
			continue
		}
		kept = append(kept, s.index.Items[i])
	}
	clear(s.index.Items[len(kept):])
	s.index.Items = kept
	if removed > 0 {
		s.reindex()
	}
	return removed
}

func (s *Store) reindex() {
	s.byPath = make(map[string]int, len(s.index.Items))
	for i := range s.index.Items {
		s.byPath[pathKey(s.index.Items[i].FullPath)] = i
	}
}

// normalizeTags trims names, drops empties and removes case-insensitive
// duplicates, keeping the first spelling.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
