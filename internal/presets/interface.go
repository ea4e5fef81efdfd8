package presets

import (
	"github.com/llehouerou/mediapick/internal/filter"
)

// Interface defines the preset store contract for dependency injection and testing.
type Interface interface {
	GetCurrentFilter() (*CurrentFilter, error)
	SaveCurrentFilter(cur CurrentFilter)
	ListPresets() ([]Preset, error)
	SavePreset(name string, st *filter.State) (int64, error)
	DeletePreset(id int64) error
	PresetByName(name string) (*Preset, error)
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
