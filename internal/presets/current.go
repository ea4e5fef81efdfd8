package presets

import (
	"database/sql"
	"errors"

	dbutil "github.com/llehouerou/mediapick/internal/db"
	"github.com/llehouerou/mediapick/internal/filter"
)

// CurrentFilter is the filter in use, and the preset it was loaded from.
type CurrentFilter struct {
	State    *filter.State
	PresetID *int64
}

func getCurrentFilter(db *sql.DB) (*CurrentFilter, error) {
	row := db.QueryRow(`SELECT state_json, preset_id FROM current_filter WHERE id = 1`)

	var stateJSON string
	var presetID sql.NullInt64
	err := row.Scan(&stateJSON, &presetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved filter is valid on first run
	}
	if err != nil {
		return nil, err
	}

	st, err := filter.FromJSON([]byte(stateJSON))
	if err != nil {
		return nil, err
	}
	return &CurrentFilter{State: st, PresetID: dbutil.NullInt64ToPtr(presetID)}, nil
}

func saveCurrentFilter(db *sql.DB, cur CurrentFilter) error {
	st := cur.State
	if st == nil {
		st = filter.Default()
	}
	stateJSON, err := st.ToJSON()
	if err != nil {
		return err
	}

	return dbutil.WithTx(db, func(tx *sql.Tx) error {
		presetID := cur.PresetID
		if presetID != nil {
			// A deleted preset is not an error; the filter is kept unlinked
			var exists int
			err := tx.QueryRow(`SELECT COUNT(*) FROM filter_presets WHERE id = ?`, *presetID).Scan(&exists)
			if err != nil {
				return err
			}
			if exists == 0 {
				presetID = nil
			}
		}

		_, err := tx.Exec(`
			INSERT INTO current_filter (id, state_json, preset_id)
			VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				state_json = excluded.state_json,
				preset_id = excluded.preset_id
		`, string(stateJSON), dbutil.PtrToNullInt64(presetID))
		return err
	})
}
