// Package filter selects the eligible subset of a library for random
// picking and library-view counts.
package filter

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/llehouerou/mediapick/internal/library"
)

// AudioFilter restricts videos by audio presence.
type AudioFilter string

const (
	AudioPlayAll          AudioFilter = "PlayAll"
	AudioWithAudioOnly    AudioFilter = "WithAudioOnly"
	AudioWithoutAudioOnly AudioFilter = "WithoutAudioOnly"
)

// MediaTypeFilter restricts items by media type.
type MediaTypeFilter string

const (
	MediaAll        MediaTypeFilter = "All"
	MediaVideosOnly MediaTypeFilter = "VideosOnly"
	MediaPhotosOnly MediaTypeFilter = "PhotosOnly"
)

// MatchMode combines tag matches.
type MatchMode string

const (
	MatchAnd MatchMode = "And"
	MatchOr  MatchMode = "Or"
)

// State is a complete, serializable filter configuration.
// Empty enum values mean the default (PlayAll, All, And).
//
// The zero State keeps blacklisted items. Use Default (or FromJSON, which
// decodes onto it) to get ExcludeBlacklisted set.
type State struct {
	FavoritesOnly      bool `json:"favoritesOnly"`
	ExcludeBlacklisted bool `json:"excludeBlacklisted"`
	OnlyNeverPlayed    bool `json:"onlyNeverPlayed"`
	OnlyKnownDuration  bool `json:"onlyKnownDuration"`
	OnlyKnownLoudness  bool `json:"onlyKnownLoudness"`

	AudioFilter     AudioFilter     `json:"audioFilter,omitempty"`
	MediaTypeFilter MediaTypeFilter `json:"mediaTypeFilter,omitempty"`

	MinDuration *time.Duration `json:"minDuration,omitempty"`
	MaxDuration *time.Duration `json:"maxDuration,omitempty"`

	SelectedTags []string `json:"selectedTags,omitempty"`
	ExcludedTags []string `json:"excludedTags,omitempty"`

	// TagMatchMode applies to indexes without categories.
	TagMatchMode MatchMode `json:"tagMatchMode,omitempty"`
	// CategoryLocalMatchModes maps category id to the mode used among the
	// selected tags of that category.
	CategoryLocalMatchModes map[string]MatchMode `json:"categoryLocalMatchModes,omitempty"`
	// GlobalMatchMode combines categories: true is AND, false is OR,
	// nil is AND.
	GlobalMatchMode *bool `json:"globalMatchMode,omitempty"`
}

// Default returns the filter applied when nothing was configured.
func Default() *State {
	return &State{ExcludeBlacklisted: true}
}

// LocalMode returns the match mode for a category (And when unset).
func (s *State) LocalMode(categoryID string) MatchMode {
	if m, ok := s.CategoryLocalMatchModes[categoryID]; ok && m == MatchOr {
		return MatchOr
	}
	return MatchAnd
}

// GlobalAnd reports whether categories are intersected.
func (s *State) GlobalAnd() bool {
	return s.GlobalMatchMode == nil || *s.GlobalMatchMode
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	c := *s
	if s.MinDuration != nil {
		d := *s.MinDuration
		c.MinDuration = &d
	}
	if s.MaxDuration != nil {
		d := *s.MaxDuration
		c.MaxDuration = &d
	}
	if s.GlobalMatchMode != nil {
		b := *s.GlobalMatchMode
		c.GlobalMatchMode = &b
	}
	c.SelectedTags = slices.Clone(s.SelectedTags)
	c.ExcludedTags = slices.Clone(s.ExcludedTags)
	c.CategoryLocalMatchModes = maps.Clone(s.CategoryLocalMatchModes)
	return &c
}

// Normalize trims and dedupes tag names (ignoring case, first spelling
// wins) and spells out default enum values.
func (s *State) Normalize() {
	s.SelectedTags = uniqueNames(s.SelectedTags)
	s.ExcludedTags = uniqueNames(s.ExcludedTags)
	if s.AudioFilter == "" {
		s.AudioFilter = AudioPlayAll
	}
	if s.MediaTypeFilter == "" {
		s.MediaTypeFilter = MediaAll
	}
	if s.TagMatchMode == "" {
		s.TagMatchMode = MatchAnd
	}
}

// Validate rejects unknown enum values.
func (s *State) Validate() error {
	switch s.AudioFilter {
	case "", AudioPlayAll, AudioWithAudioOnly, AudioWithoutAudioOnly:
	default:
		return fmt.Errorf("audio filter %q: %w", s.AudioFilter, library.ErrInvalidArgument)
	}
	switch s.MediaTypeFilter {
	case "", MediaAll, MediaVideosOnly, MediaPhotosOnly:
	default:
		return fmt.Errorf("media type filter %q: %w", s.MediaTypeFilter, library.ErrInvalidArgument)
	}
	if !validMode(s.TagMatchMode) {
		return fmt.Errorf("tag match mode %q: %w", s.TagMatchMode, library.ErrInvalidArgument)
	}
	for id, m := range s.CategoryLocalMatchModes {
		if !validMode(m) {
			return fmt.Errorf("match mode %q for category %q: %w", m, id, library.ErrInvalidArgument)
		}
	}
	if s.MinDuration != nil && s.MaxDuration != nil && *s.MinDuration > *s.MaxDuration {
		return fmt.Errorf("min duration above max duration: %w", library.ErrInvalidArgument)
	}
	return nil
}

// ToJSON serializes the filter.
func (s *State) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// FromJSON parses a filter. Fields absent from data keep their defaults.
func FromJSON(data []byte) (*State, error) {
	s := Default()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse filter: %w: %w", library.ErrCorruptData, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func validMode(m MatchMode) bool {
	return m == "" || m == MatchAnd || m == MatchOr
}

func uniqueNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
