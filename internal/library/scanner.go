package library

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RefreshResult reports how a refresh changed one source.
type RefreshResult struct {
	Added   int
	Removed int
	Updated int
}

// Add accumulates other into r.
func (r *RefreshResult) Add(other RefreshResult) {
	r.Added += other.Added
	r.Removed += other.Removed
	r.Updated += other.Updated
}

// Changed reports whether anything was added, removed or updated.
func (r RefreshResult) Changed() bool {
	return r.Added+r.Removed+r.Updated > 0
}

// ImportFolder adds rootPath as a source (or reuses the source with the same
// root, ignoring case) and tracks every video and photo below it. Existing
// items keep their favorites, tags, stats and probed metadata.
// It returns the number of newly tracked items.
func (s *Store) ImportFolder(rootPath, displayName string) (int, error) {
	if strings.TrimSpace(rootPath) == "" {
		return 0, fmt.Errorf("import folder: empty path: %w", ErrInvalidArgument)
	}
	root, err := filepath.Abs(rootPath)
	if err != nil {
		return 0, fmt.Errorf("%w: resolve %s: %w", ErrIO, rootPath, err)
	}

	// Walk the disk before taking the lock
	files, err := discoverFiles(root)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.findOrCreateSource(root, displayName)
	added := 0
	for _, f := range files {
		if slot, ok := s.byPath[pathKey(f.path)]; ok {
			refreshPathFields(&s.index.Items[slot], src.ID, f)
			continue
		}
		s.appendItem(newItem(src.ID, f))
		added++
	}

	log.Info().
		Str("source", src.ID).
		Str("root", root).
		Int("files", len(files)).
		Int("added", added).
		Msg("folder imported")
	return added, nil
}

// RefreshSource reconciles one source with the disk: new files are added,
// vanished files removed, and items whose path changed case or whose
// classification changed are updated in place.
func (s *Store) RefreshSource(sourceID string) (RefreshResult, error) {
	if sourceID == "" {
		return RefreshResult{}, fmt.Errorf("refresh source: empty id: %w", ErrInvalidArgument)
	}
	src, err := s.Source(sourceID)
	if err != nil {
		return RefreshResult{}, err
	}

	files, err := discoverFiles(src.RootPath)
	if err != nil {
		return RefreshResult{}, err
	}
	discovered := make(map[string]fileInfo, len(files))
	for _, f := range files {
		discovered[pathKey(f.path)] = f
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The source may have been removed while the disk was scanned
	if s.sourceIndex(sourceID) < 0 {
		return RefreshResult{}, fmt.Errorf("source %q: %w", sourceID, ErrNotFound)
	}

	var result RefreshResult
	tracked := make(map[string]bool)
	for i := range s.index.Items {
		it := &s.index.Items[i]
		if it.SourceID != sourceID {
			continue
		}
		key := pathKey(it.FullPath)
		f, ok := discovered[key]
		if !ok {
			continue
		}
		tracked[key] = true
		if pathFieldsDiffer(it, f) {
			refreshPathFields(it, sourceID, f)
			result.Updated++
		}
	}

	result.Removed = s.removeItemsWhere(func(it *Item) bool {
		return it.SourceID == sourceID && !tracked[pathKey(it.FullPath)]
	})

	for _, f := range files {
		key := pathKey(f.path)
		if tracked[key] {
			continue
		}
		if _, owned := s.byPath[key]; owned {
			// Tracked by another source with an overlapping root
			continue
		}
		s.appendItem(newItem(sourceID, f))
		tracked[key] = true
		result.Added++
	}

	log.Info().
		Str("source", sourceID).
		Int("added", result.Added).
		Int("removed", result.Removed).
		Int("updated", result.Updated).
		Msg("source refreshed")
	return result, nil
}

// RefreshAll refreshes every source. Sources whose root is missing are
// logged and skipped; the first such error is returned with the totals.
func (s *Store) RefreshAll() (RefreshResult, error) {
	var total RefreshResult
	var firstErr error
	for _, src := range s.Sources() {
		r, err := s.RefreshSource(src.ID)
		if err != nil {
			log.Warn().Err(err).Str("source", src.ID).Str("root", src.RootPath).Msg("refresh failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		total.Add(r)
	}
	return total, firstErr
}

// findOrCreateSource expects s.mu to be held for writing.
func (s *Store) findOrCreateSource(root, displayName string) Source {
	for i := range s.index.Sources {
		src := &s.index.Sources[i]
		if sameRoot(src.RootPath, root) {
			if displayName != "" {
				src.DisplayName = displayName
			}
			return *src
		}
	}
	src := Source{
		ID:          uuid.NewString(),
		RootPath:    root,
		DisplayName: displayName,
		IsEnabled:   true,
	}
	s.index.Sources = append(s.index.Sources, src)
	return src
}

// refreshPathFields updates location and classification only. User metadata
// and probe results are left as they are.
func refreshPathFields(it *Item, sourceID string, f fileInfo) {
	it.SourceID = sourceID
	it.FullPath = f.path
	it.RelativePath = f.relPath
	it.FileName = f.name
	it.MediaType = f.mediaType
}

func pathFieldsDiffer(it *Item, f fileInfo) bool {
	return it.FullPath != f.path ||
		it.RelativePath != f.relPath ||
		it.FileName != f.name ||
		it.MediaType != f.mediaType
}

func newItem(sourceID string, f fileInfo) Item {
	return Item{
		SourceID:     sourceID,
		FullPath:     f.path,
		RelativePath: f.relPath,
		FileName:     f.name,
		MediaType:    f.mediaType,
		Tags:         []string{},
	}
}
