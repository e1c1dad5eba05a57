// Package backup creates and restores rotating snapshots of the local
// progress store. SQLite stores are snapshotted through VACUUM INTO so
// a live database copies cleanly; the JSON backend is a plain file copy.
package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	filePrefix      = "75progress-"
	timestampFormat = "20060102-150405"
)

// Info describes one snapshot on disk.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager snapshots the store file into a backup directory, keeping at
// most `keep` snapshots.
type Manager struct {
	storePath string
	backupDir string
	keep      int
}

func NewManager(storePath, backupDir string, keep int) *Manager {
	if keep < 1 {
		keep = 1
	}
	return &Manager{storePath: storePath, backupDir: backupDir, keep: keep}
}

// Dir returns the backup directory.
func (m *Manager) Dir() string {
	return m.backupDir
}

func (m *Manager) suffix() string {
	ext := filepath.Ext(m.storePath)
	if ext == "" {
		ext = ".db"
	}
	return ext
}

// Create snapshots the store and rotates old backups.
func (m *Manager) Create() (string, error) {
	return m.create(true)
}

func (m *Manager) create(rotate bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	if _, err := os.Stat(m.storePath); os.IsNotExist(err) {
		return "", fmt.Errorf("store does not exist: %s", m.storePath)
	}

	path, err := m.freePath()
	if err != nil {
		return "", err
	}

	if m.suffix() == ".db" {
		err = m.snapshotSQLite(path)
	} else {
		err = copyFile(m.storePath, path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to snapshot store: %w", err)
	}

	if rotate {
		if err := m.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to rotate old backups: %v\n", err)
		}
	}

	return path, nil
}

// freePath picks a timestamped filename, disambiguating with a counter
// when several snapshots land in the same second.
func (m *Manager) freePath() (string, error) {
	stamp := time.Now().Format(timestampFormat)
	path := filepath.Join(m.backupDir, filePrefix+stamp+m.suffix())
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}

	for counter := 1; counter <= 100; counter++ {
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d%s", filePrefix, stamp, counter, m.suffix()))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

// snapshotSQLite copies the database through VACUUM INTO, which yields
// a consistent single-file snapshot even while the source is open.
func (m *Manager) snapshotSQLite(destPath string) error {
	src, err := sql.Open("sqlite", m.storePath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer src.Close()

	var count int
	if err := src.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := src.Exec("VACUUM INTO ?", destPath); err != nil {
		// VACUUM INTO needs SQLite 3.27+; fall back to a raw copy.
		src.Close()
		return copyFile(m.storePath, destPath)
	}
	return nil
}

// List returns all snapshots, newest first.
func (m *Manager) List() ([]Info, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []Info{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, m.suffix()) {
			continue
		}

		stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), m.suffix())
		// Strip the collision counter, if any.
		if i := strings.LastIndex(stamp, "-"); i > len(timestampFormat)-1 {
			stamp = stamp[:i]
		}
		ts, err := time.Parse(timestampFormat, stamp)
		if err != nil {
			continue
		}

		path := filepath.Join(m.backupDir, name)
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		backups = append(backups, Info{Path: path, Timestamp: ts, Size: fi.Size()})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the store with a snapshot. The current store is
// snapshotted first so a bad restore is recoverable.
func (m *Manager) Restore(backupPath string) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if m.suffix() == ".db" {
		if err := verifySQLite(backupPath); err != nil {
			return fmt.Errorf("backup file is corrupted or invalid: %w", err)
		}
	}

	if _, err := os.Stat(m.storePath); err == nil {
		pre, err := m.create(false)
		if err != nil {
			return fmt.Errorf("failed to back up current store before restore: %w", err)
		}
		fmt.Printf("Created backup of current store: %s\n", filepath.Base(pre))
	}

	// Copy to a sibling temp file and rename so the swap is atomic.
	tempPath := m.storePath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tempPath, m.storePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to restore store: %w", err)
	}
	return nil
}

func verifySQLite(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
