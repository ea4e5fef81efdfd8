// Test program to scan a folder into a throwaway library and report what
// the filter engine sees.
package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/mediapick/internal/filter"
	"github.com/llehouerou/mediapick/internal/library"
	"github.com/llehouerou/mediapick/internal/logging"
	"github.com/llehouerou/mediapick/internal/media"
)

func main() {
	log.Logger = logging.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, zerolog.DebugLevel)

	if len(os.Args) < 2 {
		log.Fatal().Msg("usage: testscan <folder>")
	}
	root := os.Args[1]

	tmp, err := os.MkdirTemp("", "mediapick-testscan-")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create temp dir")
	}
	defer os.RemoveAll(tmp)

	store := library.Open(library.Options{Path: filepath.Join(tmp, "library.json")})

	start := time.Now()
	added, err := store.ImportFolder(root, "")
	if err != nil {
		log.Fatal().Err(err).Str("root", root).Msg("import failed")
	}
	log.Info().Int("added", added).Dur("took", time.Since(start)).Msg("scan done")

	src := store.Sources()[0]
	stats, err := store.SourceStatistics(src.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("statistics failed")
	}
	log.Info().Int("videos", stats.Videos).Int("photos", stats.Photos).Msg("source statistics")

	// Refresh right away; nothing should change
	result, err := store.RefreshSource(src.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("refresh failed")
	}
	if result.Changed() {
		log.Warn().Interface("result", result).Msg("refresh after import changed the library")
	}

	snap := store.Snapshot()
	for _, mt := range []filter.MediaTypeFilter{filter.MediaAll, filter.MediaVideosOnly, filter.MediaPhotosOnly} {
		st := filter.Default()
		st.MediaTypeFilter = mt
		start := time.Now()
		items, err := filter.BuildEligibleSet(st, snap)
		if err != nil {
			log.Fatal().Err(err).Msg("filter failed")
		}
		log.Info().Str("media", string(mt)).Int("eligible", len(items)).Dur("took", time.Since(start)).Msg("eligible set")
	}

	// Show a few items
	for i, it := range snap.Items {
		if i == 5 {
			break
		}
		kind := "video"
		if it.MediaType == media.Photo {
			kind = "photo"
		}
		log.Debug().Str("kind", kind).Str("path", it.RelativePath).Msg("item")
	}

	if err := store.Save(); err != nil {
		log.Fatal().Err(err).Msg("save failed")
	}
	info, err := os.Stat(store.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("stat failed")
	}
	log.Info().Int64("bytes", info.Size()).Msg("library document written")
}
