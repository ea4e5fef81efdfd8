package presets

import (
	"fmt"
	"strings"

	"github.com/llehouerou/mediapick/internal/filter"
	"github.com/llehouerou/mediapick/internal/library"
)

// Mock is a test double for Manager.
type Mock struct {
	current *CurrentFilter
	presets []Preset
	nextID  int64
	closed  bool
}

// NewMock creates a new mock preset store for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) GetCurrentFilter() (*CurrentFilter, error) {
	return m.current, nil
}

func (m *Mock) SaveCurrentFilter(cur CurrentFilter) {
	m.current = &cur
}

func (m *Mock) ListPresets() ([]Preset, error) {
	return m.presets, nil
}

func (m *Mock) SavePreset(name string, st *filter.State) (int64, error) {
	for i, p := range m.presets {
		if strings.EqualFold(p.Name, name) {
			m.presets[i].State = st
			return p.ID, nil
		}
	}
	m.nextID++
	m.presets = append(m.presets, Preset{ID: m.nextID, Name: name, State: st})
	return m.nextID, nil
}

func (m *Mock) DeletePreset(id int64) error {
	for i, p := range m.presets {
		if p.ID == id {
			m.presets = append(m.presets[:i], m.presets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("preset %d: %w", id, library.ErrNotFound)
}

func (m *Mock) PresetByName(name string) (*Preset, error) {
	for i := range m.presets {
		if strings.EqualFold(m.presets[i].Name, name) {
			return &m.presets[i], nil
		}
	}
	return nil, fmt.Errorf("preset %q: %w", name, library.ErrNotFound)
}

func (m *Mock) Close() error {
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) IsClosed() bool { return m.closed }

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
