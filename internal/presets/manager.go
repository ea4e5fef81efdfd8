// Package presets stores the current filter and named filter presets.
package presets

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/mediapick/internal/filter"
)

var (
	saveDebounce = 500 * time.Millisecond
	// writeCurrent is replaced in tests to observe debounced writes.
	writeCurrent = saveCurrentFilter
)

// Manager is the SQLite-backed preset store.
type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *CurrentFilter
	closed    bool
	// inflight counts scheduled or running debounce callbacks.
	inflight sync.WaitGroup
}

// Open opens (creating if needed) the preset database at path.
func Open(path string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	// Pragmas in the DSN apply to every pooled connection
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

// Close flushes a pending current filter, waits for a debounced write
// already in progress and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	m.closed = true
	m.stopTimer()
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		if err := writeCurrent(m.db, *pending); err != nil {
			log.Warn().Err(err).Msg("failed to flush current filter")
		}
	}

	m.inflight.Wait()
	return m.db.Close()
}

// stopTimer expects saveMu to be held. A callback it prevents from running
// no longer counts as in flight.
func (m *Manager) stopTimer() {
	if m.saveTimer != nil && m.saveTimer.Stop() {
		m.inflight.Done()
	}
	m.saveTimer = nil
}

// GetCurrentFilter returns the last saved current filter, or nil on first run.
func (m *Manager) GetCurrentFilter() (*CurrentFilter, error) {
	return getCurrentFilter(m.db)
}

// SaveCurrentFilter stores the current filter after a short quiet period,
// so rapid edits cost a single write.
func (m *Manager) SaveCurrentFilter(cur CurrentFilter) {
	if cur.State != nil {
		cur.State = cur.State.Clone()
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	if m.closed {
		log.Warn().Msg("preset store closed, current filter not saved")
		return
	}
	m.pending = &cur
	m.stopTimer()

	m.inflight.Add(1)
	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		defer m.inflight.Done()

		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			if err := writeCurrent(m.db, *pending); err != nil {
				log.Warn().Err(err).Msg("failed to save current filter")
			}
		}
	})
}

// ListPresets returns all presets ordered by name.
func (m *Manager) ListPresets() ([]Preset, error) {
	return listPresets(m.db)
}

// SavePreset creates a preset or replaces the filter of the preset with
// the same name. It returns the preset id.
func (m *Manager) SavePreset(name string, st *filter.State) (int64, error) {
	return savePreset(m.db, name, st)
}

// DeletePreset deletes a preset by id.
func (m *Manager) DeletePreset(id int64) error {
	return deletePreset(m.db, id)
}

// PresetByName returns the preset with the given name (ignoring case).
func (m *Manager) PresetByName(name string) (*Preset, error) {
	return presetByName(m.db, name)
}
