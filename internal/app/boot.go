package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"nodebbs/internal/config"
	"nodebbs/internal/logger"
	"nodebbs/internal/nodes"
	"nodebbs/internal/store"
)

const Version = "0.2.000"

var (
	Config *config.Config
	Store  *store.Store
	Logger *slog.Logger
	Nodes  *nodes.Manager
)

// Boot loads configPath and swaps the globals. On failure the previous
// globals stay in place, so a bad hot reload keeps the old board running.
func Boot(configPath string, quiet bool) error {
	if configPath == "" {
		configPath = "config/example.yml"
	}

	newConfig, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dir := newConfig.Paths.Data
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data path: %w", err)
	}

	newStore, err := store.New(filepath.Clean(filepath.Join(dir, "data.sqlite3")), quiet)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}

	Config = newConfig
	Logger = logger.Setup(Config.Loggers, quiet)

	if Store != nil {
		if err := Store.Close(); err != nil {
			Logger.Error("Failed to close existing store", "err", err)
		}
	}
	Store = newStore

	// Nodes survive a reload; live sessions keep their slots.
	if Nodes == nil {
		Nodes = nodes.NewManager(Config.MaxNodes)
	}

	if !quiet {
		Logger.Info("Successfully loaded configuration", "file", configPath, "version", Version)
	}

	return nil
}
