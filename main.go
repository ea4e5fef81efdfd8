package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/mediapick/internal/config"
	"github.com/llehouerou/mediapick/internal/errmsg"
	"github.com/llehouerou/mediapick/internal/library"
	"github.com/llehouerou/mediapick/internal/logging"
	"github.com/llehouerou/mediapick/internal/presets"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, errmsg.Format(errmsg.OpInitialize, err))
		return 1
	}

	logCloser := logging.Setup(cfg.GetLogConfig())
	defer logCloser.Close()

	backup := cfg.GetBackupConfig()
	store := library.Open(library.Options{
		Path:      cfg.GetLibraryFile(),
		BackupDir: backup.Dir,
		Backup: library.BackupPolicy{
			Enabled:    backup.BackupEnabled(),
			MinGap:     backup.MinGap(),
			MaxBackups: backup.MaxBackups,
		},
	})

	presetStore, err := presets.Open(cfg.GetPresetsDB())
	if err != nil {
		fmt.Fprintln(stderr, errmsg.Format(errmsg.OpPresetLoad, err))
		return 1
	}
	defer presetStore.Close()

	a := &app{
		cfg:     cfg,
		store:   store,
		presets: presetStore,
		out:     stdout,
	}
	if err := a.run(args); err != nil {
		log.Debug().Err(err).Strs("args", args).Msg("command failed")
		fmt.Fprintln(stderr, errorStyle.Render(err.Error()))
		if hint := errmsg.Hint(err); hint != "" {
			fmt.Fprintln(stderr, dimStyle.Render(hint))
		}
		return 1
	}
	return 0
}
