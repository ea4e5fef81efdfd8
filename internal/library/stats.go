package library

import (
	"fmt"
	"time"

	"github.com/llehouerou/mediapick/internal/media"
)

// SourceStatistics aggregates the items of one source.
// Audio and duration figures only count videos.
type SourceStatistics struct {
	Videos          int
	Photos          int
	WithAudio       int
	WithoutAudio    int
	KnownDuration   int
	TotalDuration   time.Duration
	AverageDuration time.Duration
}

// SourceStatistics computes statistics for the source with the given id.
func (s *Store) SourceStatistics(sourceID string) (SourceStatistics, error) {
	if sourceID == "" {
		return SourceStatistics{}, fmt.Errorf("source statistics: empty id: %w", ErrInvalidArgument)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sourceIndex(sourceID) < 0 {
		return SourceStatistics{}, fmt.Errorf("source %q: %w", sourceID, ErrNotFound)
	}

	var st SourceStatistics
	var total int64
	for i := range s.index.Items {
		it := &s.index.Items[i]
		if it.SourceID != sourceID {
			continue
		}
		if it.MediaType == media.Photo {
			st.Photos++
			continue
		}
		st.Videos++
		if it.HasAudio != nil {
			if *it.HasAudio {
				st.WithAudio++
			} else {
				st.WithoutAudio++
			}
		}
		if it.Duration != nil {
			st.KnownDuration++
			total += int64(*it.Duration)
		}
	}
	st.TotalDuration = time.Duration(total)
	if st.KnownDuration > 0 {
		st.AverageDuration = time.Duration(total / int64(st.KnownDuration))
	}
	return st, nil
}
