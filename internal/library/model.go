package library

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/llehouerou/mediapick/internal/media"
)

// UncategorizedID is the bucket key for tags whose category is unknown.
const UncategorizedID = ""

// TagCategory groups tags (e.g. "Genre").
type TagCategory struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

// Tag is a catalog tag. Names are unique case-insensitively.
type Tag struct {
	Name       string `json:"name"`
	CategoryID string `json:"categoryId"`
}

// Source is one imported root folder.
type Source struct {
	ID          string `json:"id"`
	RootPath    string `json:"rootPath"`
	DisplayName string `json:"displayName,omitempty"`
	IsEnabled   bool   `json:"isEnabled"`
}

// Name returns the display name, falling back to the root folder name.
func (s Source) Name() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return filepath.Base(s.RootPath)
}

// Item is one tracked media file. FullPath is its identity.
type Item struct {
	SourceID           string         `json:"sourceId"`
	FullPath           string         `json:"fullPath"`
	RelativePath       string         `json:"relativePath"`
	FileName           string         `json:"fileName"`
	MediaType          media.Type     `json:"mediaType"`
	Duration           *time.Duration `json:"duration,omitempty"`
	HasAudio           *bool          `json:"hasAudio,omitempty"`
	IntegratedLoudness *float64       `json:"integratedLoudness,omitempty"`
	PeakDB             *float64       `json:"peakDb,omitempty"`
	IsFavorite         bool           `json:"isFavorite"`
	IsBlacklisted      bool           `json:"isBlacklisted"`
	PlayCount          int            `json:"playCount"`
	LastPlayedUTC      *time.Time     `json:"lastPlayedUtc,omitempty"`
	Tags               []string       `json:"tags"`
}

// IsPhoto reports whether audio and duration predicates are inapplicable.
func (it *Item) IsPhoto() bool {
	return it.MediaType == media.Photo
}

// HasTag reports whether the item carries name, ignoring case.
func (it *Item) HasTag(name string) bool {
	for _, t := range it.Tags {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

func (it Item) clone() Item {
	c := it
	if it.Duration != nil {
		d := *it.Duration
		c.Duration = &d
	}
	if it.HasAudio != nil {
		b := *it.HasAudio
		c.HasAudio = &b
	}
	if it.IntegratedLoudness != nil {
		f := *it.IntegratedLoudness
		c.IntegratedLoudness = &f
	}
	if it.PeakDB != nil {
		f := *it.PeakDB
		c.PeakDB = &f
	}
	if it.LastPlayedUTC != nil {
		ts := *it.LastPlayedUTC
		c.LastPlayedUTC = &ts
	}
	c.Tags = slices.Clone(it.Tags)
	return c
}

// Index is the persisted library document.
type Index struct {
	Sources       []Source      `json:"sources"`
	Items         []Item        `json:"items"`
	Categories    []TagCategory `json:"categories,omitempty"`
	Tags          []Tag         `json:"tags,omitempty"`
	AvailableTags []string      `json:"availableTags,omitempty"`
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		Sources: []Source{},
		Items:   []Item{},
	}
}

// Clone returns a deep copy of the index.
func (idx *Index) Clone() *Index {
	c := &Index{
		Sources:       slices.Clone(idx.Sources),
		Items:         make([]Item, len(idx.Items)),
		Categories:    slices.Clone(idx.Categories),
		Tags:          slices.Clone(idx.Tags),
		AvailableTags: slices.Clone(idx.AvailableTags),
	}
	if c.Sources == nil {
		c.Sources = []Source{}
	}
	for i := range idx.Items {
		c.Items[i] = idx.Items[i].clone()
	}
	return c
}

// EnabledSources returns the set of enabled source ids.
func (idx *Index) EnabledSources() map[string]bool {
	enabled := make(map[string]bool, len(idx.Sources))
	for _, s := range idx.Sources {
		if s.IsEnabled {
			enabled[s.ID] = true
		}
	}
	return enabled
}

// TagScheme describes how tags are organised in an index.
// It is either LegacyFlatTags or CategorizedTags.
type TagScheme interface {
	isTagScheme()
}

// LegacyFlatTags is the uncategorized mode: tag names come from the items.
type LegacyFlatTags struct {
	Names []string
}

// CategorizedTags is the mode where every tag belongs to a category.
type CategorizedTags struct {
	Categories []TagCategory
	Tags       []Tag
}

func (LegacyFlatTags) isTagScheme()  {}
func (CategorizedTags) isTagScheme() {}

// Scheme returns the tag scheme in effect for idx.
// An index is categorized as soon as it defines at least one category.
func (idx *Index) Scheme() TagScheme {
	if len(idx.Categories) > 0 {
		return CategorizedTags{Categories: idx.Categories, Tags: idx.Tags}
	}
	return LegacyFlatTags{Names: distinctItemTags(idx.Items)}
}

// CategoryOf returns the bucket key for a tag name. Names without a tag
// record, or whose category no longer exists, map to UncategorizedID.
func (c CategorizedTags) CategoryOf(name string) string {
	for _, t := range c.Tags {
		if !strings.EqualFold(t.Name, name) {
			continue
		}
		for _, cat := range c.Categories {
			if cat.ID == t.CategoryID {
				return cat.ID
			}
		}
		return UncategorizedID
	}
	return UncategorizedID
}

// distinctItemTags returns every tag used by items, deduplicated ignoring
// case (first spelling wins) and sorted.
func distinctItemTags(items []Item) []string {
	seen := make(map[string]bool)
	var names []string
	for i := range items {
		for _, t := range items[i].Tags {
			key := strings.ToLower(t)
			if t == "" || seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, t)
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return names
}

// pathKey is the case-insensitive identity of a full path.
func pathKey(path string) string {
	return strings.ToLower(path)
}
