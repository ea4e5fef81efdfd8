package presets

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/mediapick/internal/filter"
	"github.com/llehouerou/mediapick/internal/library"
)

// Preset is a named filter.
type Preset struct {
	ID        int64
	Name      string
	State     *filter.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

const presetColumns = `id, name, state_json, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(row scanner) (Preset, error) {
	var p Preset
	var stateJSON string
	var created, updated int64
	if err := row.Scan(&p.ID, &p.Name, &stateJSON, &created, &updated); err != nil {
		return Preset{}, err
	}
	st, err := filter.FromJSON([]byte(stateJSON))
	if err != nil {
		return Preset{}, err
	}
	p.State = st
	p.CreatedAt = time.Unix(created, 0)
	p.UpdatedAt = time.Unix(updated, 0)
	return p, nil
}

func listPresets(db *sql.DB) ([]Preset, error) {
	rows, err := db.Query(`SELECT ` + presetColumns + ` FROM filter_presets ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			// Skip invalid presets
			log.Warn().Err(err).Msg("skipping unreadable filter preset")
			continue
		}
		presets = append(presets, p)
	}

	return presets, rows.Err()
}

func presetByName(db *sql.DB, name string) (*Preset, error) {
	row := db.QueryRow(`SELECT `+presetColumns+` FROM filter_presets WHERE name = ?`, name)
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preset %q: %w", name, library.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func savePreset(db *sql.DB, name string, st *filter.State) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" || st == nil {
		return 0, fmt.Errorf("save preset: %w", library.ErrInvalidArgument)
	}
	stateJSON, err := st.ToJSON()
	if err != nil {
		return 0, err
	}

	now := time.Now().Unix()

	// Try to update existing preset with same name
	result, err := db.Exec(`
		UPDATE filter_presets
		SET state_json = ?, updated_at = ?
		WHERE name = ?
	`, string(stateJSON), now, name)
	if err != nil {
		return 0, err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		var id int64
		err := db.QueryRow("SELECT id FROM filter_presets WHERE name = ?", name).Scan(&id)
		return id, err
	}

	result, err = db.Exec(`
		INSERT INTO filter_presets (name, state_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, name, string(stateJSON), now, now)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

func deletePreset(db *sql.DB, id int64) error {
	result, err := db.Exec("DELETE FROM filter_presets WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("preset %d: %w", id, library.ErrNotFound)
	}
	return nil
}
