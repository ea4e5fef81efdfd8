package library

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setupBackups saves a library and creates backups with the given ages.
func setupBackups(t *testing.T, now time.Time, ages ...time.Duration) (*Store, []string) {
	t.Helper()
	s := newTestStore(t)
	s.now = func() time.Time { return now }
	_ = s.UpdateItem(video("src", "/m/a.mp4"))
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.MkdirAll(s.BackupDir(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var paths []string
	for _, age := range ages {
		created := now.Add(-age)
		p := filepath.Join(s.BackupDir(), "library-"+created.Format(backupTimeFormat)+".json")
		if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
			t.Fatalf("write backup: %v", err)
		}
		if err := os.Chtimes(p, created, created); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
		paths = append(paths, p)
	}
	return s, paths
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestCreateBackupIfNeeded_Disabled(t *testing.T) {
	s, _ := setupBackups(t, time.Now())
	s.CreateBackupIfNeeded(false, 15, 3)

	backups, err := s.Backups()
	if err != nil {
		t.Fatalf("Backups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}
}

func TestCreateBackupIfNeeded_NoLibraryFile(t *testing.T) {
	s := newTestStore(t)
	s.CreateBackupIfNeeded(true, 15, 3)

	if exists(s.BackupDir()) {
		entries, _ := os.ReadDir(s.BackupDir())
		if len(entries) != 0 {
			t.Errorf("expected no backups, got %d", len(entries))
		}
	}
}

func TestCreateBackupIfNeeded_CreatesCopy(t *testing.T) {
	s, _ := setupBackups(t, time.Now())
	s.CreateBackupIfNeeded(true, 15, 3)

	backups, err := s.Backups()
	if err != nil {
		t.Fatalf("Backups failed: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}
	want, _ := os.ReadFile(s.Path())
	got, _ := os.ReadFile(backups[0].Path)
	if string(got) != string(want) {
		t.Error("backup content differs from library file")
	}
}

func TestCreateBackupIfNeeded_ReplacesFreshNewest(t *testing.T) {
	now := time.Now()
	s, paths := setupBackups(t, now, 60*time.Minute, 30*time.Minute, 2*time.Minute)

	s.CreateBackupIfNeeded(true, 15, 3)

	backups, err := s.Backups()
	if err != nil {
		t.Fatalf("Backups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	if exists(paths[2]) {
		t.Error("newest backup was too fresh and should have been replaced")
	}
	if !exists(paths[0]) || !exists(paths[1]) {
		t.Error("older backups should be kept")
	}
	if backups[0].Path != paths[0] {
		t.Errorf("oldest backup = %s, want %s", backups[0].Path, paths[0])
	}
}

func TestCreateBackupIfNeeded_RotatesOldest(t *testing.T) {
	now := time.Now()
	s, paths := setupBackups(t, now, 3*time.Hour, 2*time.Hour, time.Hour)

	s.CreateBackupIfNeeded(true, 15, 3)

	backups, err := s.Backups()
	if err != nil {
		t.Fatalf("Backups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	if exists(paths[0]) {
		t.Error("oldest backup should have been rotated out")
	}
	if backups[0].Path != paths[1] {
		t.Errorf("oldest backup = %s, want %s", backups[0].Path, paths[1])
	}
}

func TestCreateBackupIfNeeded_TrimsExcess(t *testing.T) {
	now := time.Now()
	s, _ := setupBackups(t, now, 5*time.Hour, 4*time.Hour, 3*time.Hour, 2*time.Hour, time.Hour)

	s.CreateBackupIfNeeded(true, 15, 2)

	backups, err := s.Backups()
	if err != nil {
		t.Fatalf("Backups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected 2 backups, got %d", len(backups))
	}
}

func TestBackups_IgnoresForeignFiles(t *testing.T) {
	s, _ := setupBackups(t, time.Now(), time.Hour)
	writeFiles(t, s.BackupDir(), "notes.txt", "library-latest.json", "other-20260101-000000.json")

	backups, err := s.Backups()
	if err != nil {
		t.Fatalf("Backups failed: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d", len(backups))
	}
}

func TestNextBackupPath_AvoidsCollision(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 30, 0, 0, time.Local)
	s, _ := setupBackups(t, now)
	_ = os.MkdirAll(s.BackupDir(), 0o755)

	first := s.nextBackupPath()
	if err := os.WriteFile(first, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	second := s.nextBackupPath()
	if first == second {
		t.Fatal("expected a distinct path when the timestamp collides")
	}
	if !s.backupPattern().MatchString(filepath.Base(second)) {
		t.Errorf("%s does not match backup pattern", second)
	}
}

func TestBackupDir_DefaultsNextToLibrary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "elsewhere")
	s := Open(Options{Path: filepath.Join(dir, "library.json")})
	if want := filepath.Join(dir, "backups"); s.BackupDir() != want {
		t.Errorf("BackupDir() = %q, want %q", s.BackupDir(), want)
	}

	s = Open(Options{Path: filepath.Join(dir, "library.json"), BackupDir: "/custom/backups"})
	if s.BackupDir() != "/custom/backups" {
		t.Errorf("configured BackupDir() = %q", s.BackupDir())
	}
}
