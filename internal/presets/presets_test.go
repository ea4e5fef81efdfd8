package presets

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/llehouerou/mediapick/internal/filter"
	"github.com/llehouerou/mediapick/internal/library"
)

// setupTestDB creates an in-memory SQLite database with the schema initialized.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	// Every connection would get its own in-memory database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to set pragma: %v", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		t.Fatalf("failed to init schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndListPresets(t *testing.T) {
	db := setupTestDB(t)

	favs := &filter.State{FavoritesOnly: true, ExcludeBlacklisted: true}
	photos := &filter.State{MediaTypeFilter: filter.MediaPhotosOnly}

	favID, err := savePreset(db, "Favorites", favs)
	if err != nil {
		t.Fatalf("savePreset failed: %v", err)
	}
	if _, err := savePreset(db, "all photos", photos); err != nil {
		t.Fatalf("savePreset failed: %v", err)
	}

	presets, err := listPresets(db)
	if err != nil {
		t.Fatalf("listPresets failed: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("len(presets) = %d, want 2", len(presets))
	}
	if presets[0].Name != "all photos" || presets[1].Name != "Favorites" {
		t.Errorf("presets not ordered by name: %q, %q", presets[0].Name, presets[1].Name)
	}
	if presets[1].ID != favID || !presets[1].State.FavoritesOnly {
		t.Errorf("unexpected preset: %+v", presets[1])
	}
	if presets[0].State.MediaTypeFilter != filter.MediaPhotosOnly {
		t.Errorf("MediaTypeFilter = %q", presets[0].State.MediaTypeFilter)
	}
}

func TestSavePreset_UpsertsByName(t *testing.T) {
	db := setupTestDB(t)

	id1, err := savePreset(db, "Mine", &filter.State{FavoritesOnly: true})
	if err != nil {
		t.Fatalf("savePreset failed: %v", err)
	}
	id2, err := savePreset(db, "Mine", &filter.State{OnlyNeverPlayed: true})
	if err != nil {
		t.Fatalf("savePreset failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("upsert changed id: %d -> %d", id1, id2)
	}

	p, err := presetByName(db, "mine")
	if err != nil {
		t.Fatalf("presetByName failed: %v", err)
	}
	if p.State.FavoritesOnly || !p.State.OnlyNeverPlayed {
		t.Errorf("preset state not replaced: %+v", p.State)
	}
}

func TestSavePreset_InvalidArgument(t *testing.T) {
	db := setupTestDB(t)

	if _, err := savePreset(db, "  ", filter.Default()); !errors.Is(err, library.ErrInvalidArgument) {
		t.Errorf("empty name: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := savePreset(db, "x", nil); !errors.Is(err, library.ErrInvalidArgument) {
		t.Errorf("nil state: expected ErrInvalidArgument, got %v", err)
	}
}

func TestDeletePreset(t *testing.T) {
	db := setupTestDB(t)

	id, _ := savePreset(db, "Temp", filter.Default())
	if err := deletePreset(db, id); err != nil {
		t.Fatalf("deletePreset failed: %v", err)
	}
	if _, err := presetByName(db, "Temp"); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := deletePreset(db, id); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestListPresets_SkipsInvalid(t *testing.T) {
	db := setupTestDB(t)

	_, _ = savePreset(db, "Good", filter.Default())
	_, err := db.Exec(`INSERT INTO filter_presets (name, state_json, created_at, updated_at) VALUES ('Bad', '{oops', 0, 0)`)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	presets, err := listPresets(db)
	if err != nil {
		t.Fatalf("listPresets failed: %v", err)
	}
	if len(presets) != 1 || presets[0].Name != "Good" {
		t.Errorf("expected only the valid preset, got %+v", presets)
	}
}

func TestCurrentFilter(t *testing.T) {
	db := setupTestDB(t)

	cur, err := getCurrentFilter(db)
	if err != nil {
		t.Fatalf("getCurrentFilter failed: %v", err)
	}
	if cur != nil {
		t.Errorf("expected nil current filter on empty db, got %+v", cur)
	}

	id, _ := savePreset(db, "Linked", filter.Default())
	st := &filter.State{SelectedTags: []string{"Action"}, GlobalMatchMode: new(bool)}
	if err := saveCurrentFilter(db, CurrentFilter{State: st, PresetID: &id}); err != nil {
		t.Fatalf("saveCurrentFilter failed: %v", err)
	}

	cur, err = getCurrentFilter(db)
	if err != nil {
		t.Fatalf("getCurrentFilter failed: %v", err)
	}
	if cur.PresetID == nil || *cur.PresetID != id {
		t.Errorf("PresetID = %v, want %d", cur.PresetID, id)
	}
	if len(cur.State.SelectedTags) != 1 || cur.State.GlobalAnd() {
		t.Errorf("unexpected state: %+v", cur.State)
	}

	// Deleting the linked preset unlinks the current filter
	if err := deletePreset(db, id); err != nil {
		t.Fatalf("deletePreset failed: %v", err)
	}
	cur, _ = getCurrentFilter(db)
	if cur.PresetID != nil {
		t.Errorf("PresetID = %d, want nil after preset deletion", *cur.PresetID)
	}
}

func TestSaveCurrentFilter_UnknownPreset(t *testing.T) {
	db := setupTestDB(t)

	missing := int64(99)
	if err := saveCurrentFilter(db, CurrentFilter{State: filter.Default(), PresetID: &missing}); err != nil {
		t.Fatalf("saveCurrentFilter failed: %v", err)
	}
	cur, _ := getCurrentFilter(db)
	if cur.PresetID != nil {
		t.Errorf("PresetID = %d, want nil", *cur.PresetID)
	}
}

func TestManager_DebouncedCurrentFilterFlushedOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "presets.db")
	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	st := &filter.State{OnlyNeverPlayed: true}
	m.SaveCurrentFilter(CurrentFilter{State: filter.Default()})
	m.SaveCurrentFilter(CurrentFilter{State: st})
	st.FavoritesOnly = true // the pending copy must not change

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	m, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer m.Close()

	cur, err := m.GetCurrentFilter()
	if err != nil {
		t.Fatalf("GetCurrentFilter failed: %v", err)
	}
	if cur == nil || !cur.State.OnlyNeverPlayed || cur.State.FavoritesOnly {
		t.Errorf("expected last filter to be flushed, got %+v", cur)
	}
}

func TestManager_DebouncedSave(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "presets.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer m.Close()

	m.SaveCurrentFilter(CurrentFilter{State: &filter.State{FavoritesOnly: true}})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		cur, err := m.GetCurrentFilter()
		if err != nil {
			t.Fatalf("GetCurrentFilter failed: %v", err)
		}
		if cur != nil {
			if !cur.State.FavoritesOnly {
				t.Errorf("unexpected state: %+v", cur.State)
			}
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("current filter was not saved after the debounce delay")
}

func TestManager_CloseWaitsForRunningSave(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	origDebounce, origWrite := saveDebounce, writeCurrent
	saveDebounce = 10 * time.Millisecond
	writeCurrent = func(db *sql.DB, cur CurrentFilter) error {
		close(started)
		<-release
		return saveCurrentFilter(db, cur)
	}
	t.Cleanup(func() { saveDebounce, writeCurrent = origDebounce, origWrite })

	path := filepath.Join(t.TempDir(), "presets.db")
	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	m.SaveCurrentFilter(CurrentFilter{State: &filter.State{OnlyKnownDuration: true}})

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("debounced save did not start")
	}

	closed := make(chan error, 1)
	go func() { closed <- m.Close() }()

	select {
	case err := <-closed:
		t.Fatalf("Close returned while a save was running: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	if err := <-closed; err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	writeCurrent = origWrite

	m, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer m.Close()
	cur, err := m.GetCurrentFilter()
	if err != nil {
		t.Fatalf("GetCurrentFilter failed: %v", err)
	}
	if cur == nil || !cur.State.OnlyKnownDuration {
		t.Errorf("in-flight save was lost, got %+v", cur)
	}
}

func TestManager_SaveAfterCloseIsDropped(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "presets.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	m.SaveCurrentFilter(CurrentFilter{State: filter.Default()})
	if m.pending != nil || m.saveTimer != nil {
		t.Error("save after Close should not be scheduled")
	}
}

func TestMock(t *testing.T) {
	var store Interface = NewMock()

	id, _ := store.SavePreset("A", filter.Default())
	again, _ := store.SavePreset("a", &filter.State{FavoritesOnly: true})
	if id != again {
		t.Errorf("mock upsert changed id: %d -> %d", id, again)
	}
	p, err := store.PresetByName("A")
	if err != nil || !p.State.FavoritesOnly {
		t.Errorf("PresetByName = %+v, %v", p, err)
	}
	if err := store.DeletePreset(42); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_ = store.Close()
	if !store.(*Mock).IsClosed() {
		t.Error("mock not closed")
	}
}
