package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/rpggio/efxcreator/internal/artifact"
	"github.com/rpggio/efxcreator/internal/catalog"
	"github.com/rpggio/efxcreator/internal/config"
	"github.com/rpggio/efxcreator/internal/domain/activity"
	"github.com/rpggio/efxcreator/internal/domain/project"
	"github.com/rpggio/efxcreator/internal/efx"
	"github.com/rpggio/efxcreator/internal/fingerprint"
	"github.com/rpggio/efxcreator/internal/sqlite"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = &cfg
	})
	return c.config, c.configErr
}

// app holds the services one command works with.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	projects *project.Service
	activity *activity.Service
	codec    *efx.Codec
}

// withApp opens the stores, runs fn and closes everything again.
func (c *commandContext) withApp(cmd *cobra.Command, fn func(*app) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, closeLog := newLogger(cfg.Log, cmd.ErrOrStderr())
	defer closeLog()

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return err
	}

	settings := sqlite.NewSettingsRepository(db)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)

	fallback := artifact.ParseLocation(cfg.Storage.Location)
	current, previous, err := project.LoadLocation(cmd.Context(), settings, fallback)
	if err != nil {
		return err
	}

	var external artifact.ExternalResolver
	if len(cfg.Storage.External) > 0 {
		external = artifact.MapResolver(cfg.Storage.External)
	}
	codec := efx.NewCodec()
	projects := project.NewService(project.Config{
		Catalog:      catalog.New(cfg.Catalog.Path, logger),
		Store:        artifact.NewStore(cfg.Storage.DefaultDir, codec.Extension(), external, logger),
		Codec:        codec,
		Fingerprints: fingerprint.NewFileFingerprinter(cfg.Audio.SampleBytes),
		Activity:     activitySvc,
		Settings:     settings,
		Location:     current,
		Previous:     previous,
		Logger:       logger,
	})

	return fn(&app{
		cfg:      cfg,
		logger:   logger,
		projects: projects,
		activity: activitySvc,
		codec:    codec,
	})
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func newLogger(cfg config.LogConfig, stderr io.Writer) (*slog.Logger, func()) {
	writer := stderr
	closeFn := func() {}
	if cfg.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Path)
		if err != nil {
			fmt.Fprintf(stderr, "log file error: %v\n", err)
		} else {
			writer = fileWriter
			closeFn = func() { file.Close() }
		}
	}
	logger := slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}))
	return logger, closeFn
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
