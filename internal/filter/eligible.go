package filter

import (
	"fmt"
	"os"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/llehouerou/mediapick/internal/library"
	"github.com/llehouerou/mediapick/internal/media"
)

// fileExists is replaced in tests.
var fileExists = func(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// BuildEligibleSet returns the items of idx that satisfy st, in library
// order. Items whose file is missing on disk are excluded.
//
// The returned items share tag slices with idx; pass a snapshot.
func BuildEligibleSet(st *State, idx *library.Index) ([]library.Item, error) {
	return build(st, idx, true)
}

// BuildEligibleSetWithoutFileCheck is BuildEligibleSet without touching
// the disk. Callers re-validate existence at the point of use.
func BuildEligibleSetWithoutFileCheck(st *State, idx *library.Index) ([]library.Item, error) {
	return build(st, idx, false)
}

// Count returns the size of the eligible set without checking the disk.
func Count(st *State, idx *library.Index) (int, error) {
	set, err := eligible(st, idx, false)
	if err != nil {
		return 0, err
	}
	return int(set.GetCardinality()), nil
}

func build(st *State, idx *library.Index, checkFiles bool) ([]library.Item, error) {
	set, err := eligible(st, idx, checkFiles)
	if err != nil {
		return nil, err
	}
	out := make([]library.Item, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		out = append(out, idx.Items[it.Next()])
	}
	return out, nil
}

// eligible runs the narrowing pipeline and returns the surviving item slots.
func eligible(st *State, idx *library.Index, checkFiles bool) (*roaring.Bitmap, error) {
	if st == nil || idx == nil {
		return nil, fmt.Errorf("build eligible set: nil argument: %w", library.ErrInvalidArgument)
	}
	p := newPipeline(idx)

	enabled := idx.EnabledSources()
	p.keep(func(it *library.Item) bool { return enabled[it.SourceID] })

	if checkFiles {
		p.keep(func(it *library.Item) bool { return fileExists(it.FullPath) })
	}
	if st.ExcludeBlacklisted {
		p.keep(func(it *library.Item) bool { return !it.IsBlacklisted })
	}
	if st.FavoritesOnly {
		p.keep(func(it *library.Item) bool { return it.IsFavorite })
	}
	if st.OnlyNeverPlayed {
		p.keep(func(it *library.Item) bool { return it.PlayCount == 0 })
	}

	switch st.AudioFilter {
	case AudioWithAudioOnly:
		p.keepVideos(func(it *library.Item) bool { return it.HasAudio != nil && *it.HasAudio })
	case AudioWithoutAudioOnly:
		p.keepVideos(func(it *library.Item) bool { return it.HasAudio != nil && !*it.HasAudio })
	}

	if st.MinDuration != nil {
		lo := *st.MinDuration
		p.keepVideos(func(it *library.Item) bool { return it.Duration != nil && *it.Duration >= lo })
	}
	if st.MaxDuration != nil {
		hi := *st.MaxDuration
		p.keepVideos(func(it *library.Item) bool { return it.Duration != nil && *it.Duration <= hi })
	}

	if st.OnlyKnownDuration {
		p.keepVideos(func(it *library.Item) bool { return it.Duration != nil })
	}
	if st.OnlyKnownLoudness {
		p.keepVideos(func(it *library.Item) bool { return it.IntegratedLoudness != nil })
	}

	if selected := uniqueNames(st.SelectedTags); len(selected) > 0 {
		p.set = matchTags(st, idx, p.set, selected)
	}

	if excluded := uniqueNames(st.ExcludedTags); len(excluded) > 0 {
		p.keep(func(it *library.Item) bool {
			for _, t := range it.Tags {
				if containsFold(excluded, t) {
					return false
				}
			}
			return true
		})
	}

	switch st.MediaTypeFilter {
	case MediaVideosOnly:
		p.keep(func(it *library.Item) bool { return it.MediaType == media.Video })
	case MediaPhotosOnly:
		p.keep(func(it *library.Item) bool { return it.MediaType == media.Photo })
	}

	return p.set, nil
}

// pipeline holds the slots of idx.Items that survived the stages so far.
type pipeline struct {
	items []library.Item
	set   *roaring.Bitmap
}

func newPipeline(idx *library.Index) *pipeline {
	set := roaring.New()
	set.AddRange(0, uint64(len(idx.Items)))
	return &pipeline{items: idx.Items, set: set}
}

func (p *pipeline) keep(pred func(*library.Item) bool) {
	next := roaring.New()
	it := p.set.Iterator()
	for it.HasNext() {
		slot := it.Next()
		if pred(&p.items[slot]) {
			next.Add(slot)
		}
	}
	p.set = next
}

// keepVideos applies pred to videos only; photos pass.
func (p *pipeline) keepVideos(pred func(*library.Item) bool) {
	p.keep(func(it *library.Item) bool { return it.IsPhoto() || pred(it) })
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
