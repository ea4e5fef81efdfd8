package filter

import (
	"testing"
	"time"

	"github.com/llehouerou/mediapick/internal/library"
	"github.com/llehouerou/mediapick/internal/media"
)

func ptr[T any](v T) *T {
	return &v
}

func mins(n int) *time.Duration {
	return ptr(time.Duration(n) * time.Minute)
}

func item(path string, mt media.Type, tags ...string) library.Item {
	if tags == nil {
		tags = []string{}
	}
	return library.Item{
		SourceID:  "src",
		FullPath:  path,
		FileName:  path,
		MediaType: mt,
		Tags:      tags,
	}
}

func newIndex(items ...library.Item) *library.Index {
	idx := library.NewIndex()
	idx.Sources = []library.Source{{ID: "src", RootPath: "/m", IsEnabled: true}}
	idx.Items = items
	return idx
}

// stubFiles makes fileExists report only the given paths as present.
func stubFiles(t *testing.T, present ...string) {
	t.Helper()
	set := make(map[string]bool, len(present))
	for _, p := range present {
		set[p] = true
	}
	orig := fileExists
	fileExists = func(path string) bool { return set[path] }
	t.Cleanup(func() { fileExists = orig })
}

func paths(items []library.Item) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].FullPath
	}
	return out
}

func mustBuild(t *testing.T, st *State, idx *library.Index) []string {
	t.Helper()
	items, err := BuildEligibleSetWithoutFileCheck(st, idx)
	if err != nil {
		t.Fatalf("BuildEligibleSetWithoutFileCheck failed: %v", err)
	}
	return paths(items)
}
