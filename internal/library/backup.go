package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/otiai10/copy"
	"github.com/rs/zerolog/log"
)

const backupTimeFormat = "20060102-150405"

// BackupInfo describes one backup copy of the library document.
type BackupInfo struct {
	Path      string
	CreatedAt time.Time
}

// BackupDir returns the directory holding backups.
func (s *Store) BackupDir() string {
	return s.backupDir
}

// Backup applies the store's configured backup policy.
func (s *Store) Backup() {
	s.createBackup(s.policy.Enabled, s.policy.MinGap, s.policy.MaxBackups)
}

// CreateBackupIfNeeded rotates backups and copies the persisted document.
//
// When maxBackups is reached, the most recent backup is replaced if it is
// younger than minimumGapMinutes, otherwise the oldest one is dropped.
// Failures are logged and never returned.
func (s *Store) CreateBackupIfNeeded(enabled bool, minimumGapMinutes, maxBackups int) {
	s.createBackup(enabled, time.Duration(minimumGapMinutes)*time.Minute, maxBackups)
}

// Backups lists existing backups, oldest first.
func (s *Store) Backups() ([]BackupInfo, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.listBackups()
}

func (s *Store) createBackup(enabled bool, minGap time.Duration, maxBackups int) {
	if !enabled || s.path == "" || s.backupDir == "" {
		return
	}
	if maxBackups < 1 {
		maxBackups = 1
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if _, err := os.Stat(s.path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", s.path).Msg("cannot stat library for backup")
		}
		return
	}
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", s.backupDir).Msg("cannot create backup directory")
		return
	}

	backups, err := s.listBackups()
	if err != nil {
		log.Warn().Err(err).Msg("cannot list backups")
	}

	if len(backups) >= maxBackups {
		newest := backups[len(backups)-1]
		if s.now().Sub(newest.CreatedAt) < minGap {
			removeBackup(newest)
			backups = backups[:len(backups)-1]
		}
		for len(backups) >= maxBackups {
			removeBackup(backups[0])
			backups = backups[1:]
		}
	}

	dst := s.nextBackupPath()
	if err := copy.Copy(s.path, dst, copy.Options{Sync: true}); err != nil {
		log.Warn().Err(err).Str("path", dst).Msg("failed to create library backup")
		return
	}
	log.Debug().Str("path", dst).Msg("library backup created")
}

func removeBackup(b BackupInfo) {
	if err := os.Remove(b.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("path", b.Path).Msg("failed to remove old backup")
	}
}

// backupStem splits the library file name into the prefix and extension
// used for backup names: library.json -> "library", ".json".
func (s *Store) backupStem() (string, string) {
	base := filepath.Base(s.path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}

func (s *Store) backupPattern() *regexp.Regexp {
	stem, ext := s.backupStem()
	return regexp.MustCompile(`^` + regexp.QuoteMeta(stem) + `-\d{8}-\d{6}(-\d+)?` + regexp.QuoteMeta(ext) + `$`)
}

func (s *Store) listBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, s.backupDir, err)
	}

	pattern := s.backupPattern()
	var backups []BackupInfo
	for _, e := range entries {
		if e.IsDir() || !pattern.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(s.backupDir, e.Name()),
			CreatedAt: info.ModTime(),
		})
	}
	slices.SortFunc(backups, func(a, b BackupInfo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return backups, nil
}

// nextBackupPath returns an unused backup path stamped with local time.
func (s *Store) nextBackupPath() string {
	stem, ext := s.backupStem()
	stamp := s.now().Local().Format(backupTimeFormat)
	name := stem + "-" + stamp + ext
	for n := 1; ; n++ {
		p := filepath.Join(s.backupDir, name)
		if _, err := os.Stat(p); err != nil {
			return p
		}
		name = fmt.Sprintf("%s-%s-%d%s", stem, stamp, n, ext)
	}
}
