// Package config resolves runtime settings from the environment, with a
// .env file as an optional convenience for development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries everything the composition root needs to wire the app.
type Config struct {
	// StorePath is the local database file. A .json extension selects
	// the JSON backend, anything else SQLite.
	StorePath string

	// ServiceAccountPath points at Firebase credentials. Empty disables
	// remote sync entirely.
	ServiceAccountPath string
	StorageBucket      string
	UserID             string

	BackupDir  string
	BackupKeep int

	Debug bool
}

// Load reads the environment, falling back to per-user defaults under
// the OS config directory.
func Load() (*Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	appDir := filepath.Join(configDir, "75progress")

	keep, err := strconv.Atoi(getEnv("PROGRESS75_BACKUP_KEEP", "5"))
	if err != nil || keep < 1 {
		keep = 5
	}

	return &Config{
		StorePath:          getEnv("PROGRESS75_STORE", filepath.Join(appDir, "75progress.db")),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT", ""),
		StorageBucket:      getEnv("FIREBASE_STORAGE_BUCKET", ""),
		UserID:             getEnv("PROGRESS75_USER", "local"),
		BackupDir:          getEnv("PROGRESS75_BACKUP_DIR", filepath.Join(appDir, "backups")),
		BackupKeep:         keep,
		Debug:              getEnv("PROGRESS75_DEBUG", "") != "",
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
