package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "mediapick"

type Config struct {
	LibraryFile    string   `koanf:"library_file"`    // library document (JSON)
	LibrarySources []string `koanf:"library_sources"` // folders imported by "refresh" when not yet tracked
	PresetsDB      string   `koanf:"presets_db"`      // filter presets database

	Backup BackupConfig `koanf:"backup"`
	Log    LogConfig    `koanf:"log"`
}

// BackupConfig controls rotating copies of the library document.
type BackupConfig struct {
	Enabled       *bool  `koanf:"enabled"`         // default: true
	Dir           string `koanf:"dir"`             // default: "backups" next to library_file
	MinGapMinutes int    `koanf:"min_gap_minutes"` // newest backup younger than this is replaced (default: 15)
	MaxBackups    int    `koanf:"max_backups"`     // default: 10
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level     string `koanf:"level"`       // "debug", "info", "warn", "error" (default: "info")
	File      string `koanf:"file"`        // default: <state dir>/mediapick/mediapick.log
	MaxSizeMB int    `koanf:"max_size_mb"` // rotate after this size (default: 16)
	MaxFiles  int    `koanf:"max_files"`   // rotated files kept (default: 3)
	Console   bool   `koanf:"console"`     // also log to stderr
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom loads the given config files in order (last wins). Missing
// files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.LibraryFile = expandPath(cfg.LibraryFile)
	cfg.PresetsDB = expandPath(cfg.PresetsDB)
	cfg.Backup.Dir = expandPath(cfg.Backup.Dir)
	cfg.Log.File = expandPath(cfg.Log.File)
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/mediapick/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetLibraryFile returns the library document path.
func (c *Config) GetLibraryFile() string {
	if c.LibraryFile != "" {
		return c.LibraryFile
	}
	return filepath.Join(xdg.DataHome, appName, "library.json")
}

// GetPresetsDB returns the presets database path.
func (c *Config) GetPresetsDB() string {
	if c.PresetsDB != "" {
		return c.PresetsDB
	}
	return filepath.Join(xdg.DataHome, appName, "presets.db")
}

// GetBackupConfig returns the backup configuration with defaults applied.
// Dir stays empty unless configured; the library store then keeps backups
// next to the library file.
func (c *Config) GetBackupConfig() BackupConfig {
	cfg := c.Backup

	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}
	if cfg.MinGapMinutes <= 0 {
		cfg.MinGapMinutes = 15
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 10
	}

	return cfg
}

// BackupEnabled reports whether backups are on (default: true).
func (b BackupConfig) BackupEnabled() bool {
	return b.Enabled == nil || *b.Enabled
}

// MinGap returns the minimum gap as a duration.
func (b BackupConfig) MinGap() time.Duration {
	return time.Duration(b.MinGapMinutes) * time.Minute
}

// GetLogConfig returns the logging configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log

	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		cfg.Level = "info"
	}
	if cfg.File == "" {
		cfg.File = filepath.Join(xdg.StateHome, appName, appName+".log")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 16
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 3
	}

	return cfg
}
