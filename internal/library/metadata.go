package library

import (
	"fmt"
	"strings"
	"time"
)

// ProbeResult carries metadata measured by an external prober.
// Nil fields are unknown and leave the stored value untouched.
type ProbeResult struct {
	Duration           *time.Duration
	HasAudio           *bool
	IntegratedLoudness *float64
	PeakDB             *float64
}

// ApplyProbe stores probe results on a video. Photos have no duration or
// audio, so results for them are ignored.
func (s *Store) ApplyProbe(fullPath string, r ProbeResult) error {
	return s.withItem(fullPath, func(it *Item) {
		if it.IsPhoto() {
			return
		}
		if r.Duration != nil {
			d := *r.Duration
			it.Duration = &d
		}
		if r.HasAudio != nil {
			b := *r.HasAudio
			it.HasAudio = &b
		}
		if r.IntegratedLoudness != nil {
			f := *r.IntegratedLoudness
			it.IntegratedLoudness = &f
		}
		if r.PeakDB != nil {
			f := *r.PeakDB
			it.PeakDB = &f
		}
	})
}

// SetFavorite marks or unmarks an item as favorite.
func (s *Store) SetFavorite(fullPath string, favorite bool) error {
	return s.withItem(fullPath, func(it *Item) { it.IsFavorite = favorite })
}

// SetBlacklisted marks or unmarks an item as blacklisted.
func (s *Store) SetBlacklisted(fullPath string, blacklisted bool) error {
	return s.withItem(fullPath, func(it *Item) { it.IsBlacklisted = blacklisted })
}

// RecordPlay increments the play count and stamps the play time.
func (s *Store) RecordPlay(fullPath string, at time.Time) error {
	return s.withItem(fullPath, func(it *Item) {
		it.PlayCount++
		ts := at.UTC()
		it.LastPlayedUTC = &ts
	})
}

// ResetPlayStats clears play count and last played time.
func (s *Store) ResetPlayStats(fullPath string) error {
	return s.withItem(fullPath, func(it *Item) {
		it.PlayCount = 0
		it.LastPlayedUTC = nil
	})
}

// SetItemTags replaces the tags of an item.
func (s *Store) SetItemTags(fullPath string, tags []string) error {
	normalized := normalizeTags(tags)
	if normalized == nil {
		normalized = []string{}
	}
	return s.withItem(fullPath, func(it *Item) { it.Tags = normalized })
}

// AddItemTag adds a tag to an item unless it already has it (ignoring case).
func (s *Store) AddItemTag(fullPath, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fmt.Errorf("add item tag: empty tag: %w", ErrInvalidArgument)
	}
	return s.withItem(fullPath, func(it *Item) {
		if !it.HasTag(tag) {
			it.Tags = append(it.Tags, tag)
		}
	})
}

// RemoveItemTag removes a tag from an item (ignoring case).
func (s *Store) RemoveItemTag(fullPath, tag string) error {
	return s.withItem(fullPath, func(it *Item) {
		it.Tags = removeTag(it.Tags, tag)
	})
}

func (s *Store) withItem(fullPath string, fn func(*Item)) error {
	if fullPath == "" {
		return fmt.Errorf("empty item path: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.byPath[pathKey(fullPath)]
	if !ok {
		return fmt.Errorf("item %q: %w", fullPath, ErrNotFound)
	}
	fn(&s.index.Items[slot])
	return nil
}

func removeTag(tags []string, name string) []string {
	out := tags[:0]
	for _, t := range tags {
		if !strings.EqualFold(t, name) {
			out = append(out, t)
		}
	}
	return out
}
