package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/models"
)

// schemaMigrations are applied in order; PRAGMA user_version tracks the
// last applied step.
var schemaMigrations = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS entries (
		id          TEXT PRIMARY KEY,
		day         TEXT NOT NULL UNIQUE,
		summary     TEXT NOT NULL DEFAULT '',
		is_complete INTEGER NOT NULL DEFAULT 0,
		notes       TEXT NOT NULL DEFAULT '{}'
	);
	CREATE TABLE IF NOT EXISTS photos (
		id       TEXT PRIMARY KEY,
		entry_id TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
		url      TEXT NOT NULL,
		label    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_photos_entry ON photos(entry_id);`,
}

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

// dsn adds foreign key enforcement as a connection parameter so every
// pooled connection gets it, not just the first one opened.
func (s *SQLiteStore) dsn() string {
	return s.path + "?_pragma=foreign_keys(1)"
}

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '75progress init' first")
	}

	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	// Apply any schema steps added since the store was initialized.
	return s.runMigrations()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) runMigrations() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := version; i < len(schemaMigrations); i++ {
		if _, err := s.db.Exec(schemaMigrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("failed to record schema version %d: %w", i+1, err)
		}
	}

	return nil
}

func (s *SQLiteStore) GetProfile() (models.UserProfile, error) {
	var raw string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = 'profile'").Scan(&raw)
	if err == sql.ErrNoRows {
		return models.UserProfile{}, fmt.Errorf("profile not found")
	}
	if err != nil {
		return models.UserProfile{}, err
	}

	var profile models.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	return profile, nil
}

func (s *SQLiteStore) SaveProfile(profile models.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}
	_, err = s.db.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES ('profile', ?)", string(raw))
	return err
}

func (s *SQLiteStore) GetEntry(day time.Time) (*models.DayEntry, error) {
	iso := dateutil.ISO(day)

	row := s.db.QueryRow("SELECT id, day, summary, is_complete, notes FROM entries WHERE day = ?", iso)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachPhotos(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.DayEntry, error) {
	var entry models.DayEntry
	var dayISO, notesJSON string
	var complete bool

	if err := row.Scan(&entry.ID, &dayISO, &entry.Summary, &complete, &notesJSON); err != nil {
		return nil, err
	}

	day, err := dateutil.ParseISO(dayISO)
	if err != nil {
		return nil, fmt.Errorf("corrupt day key in store: %w", err)
	}
	entry.Day = day
	entry.IsComplete = complete

	if notesJSON != "" && notesJSON != "{}" {
		if err := json.Unmarshal([]byte(notesJSON), &entry.Notes); err != nil {
			return nil, fmt.Errorf("failed to parse notes for %s: %w", dayISO, err)
		}
	}

	return &entry, nil
}

func (s *SQLiteStore) attachPhotos(entry *models.DayEntry) error {
	rows, err := s.db.Query("SELECT id, url, label FROM photos WHERE entry_id = ?", entry.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.PhotoItem
		if err := rows.Scan(&p.ID, &p.URL, &p.Label); err != nil {
			return err
		}
		entry.Photos = append(entry.Photos, p)
	}
	return rows.Err()
}

func (s *SQLiteStore) UpsertEntry(entry models.DayEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	iso := dateutil.ISO(entry.Day)

	notesJSON := []byte("{}")
	if len(entry.Notes) > 0 {
		var err error
		notesJSON, err = json.Marshal(entry.Notes)
		if err != nil {
			return fmt.Errorf("failed to serialize notes: %w", err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Keep the id stable across edits of the same day.
	var existingID string
	err = tx.QueryRow("SELECT id FROM entries WHERE day = ?", iso).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if existingID != "" {
		entry.ID = existingID
	}

	_, err = tx.Exec(`
		INSERT INTO entries (id, day, summary, is_complete, notes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET summary = excluded.summary,
			is_complete = excluded.is_complete, notes = excluded.notes`,
		entry.ID, iso, entry.Summary, entry.IsComplete, string(notesJSON))
	if err != nil {
		return err
	}

	// Photos are replaced wholesale; the entry is the unit of save.
	if _, err := tx.Exec("DELETE FROM photos WHERE entry_id = ?", entry.ID); err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO photos (id, entry_id, url, label) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range entry.Photos {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, err := stmt.Exec(p.ID, entry.ID, p.URL, p.Label); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) DeleteEntry(day time.Time) error {
	res, err := s.db.Exec("DELETE FROM entries WHERE day = ?", dateutil.ISO(day))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no entry found for %s", dateutil.ISO(day))
	}
	return nil
}

func (s *SQLiteStore) QueryRange(start, end time.Time) ([]models.DayEntry, error) {
	rows, err := s.db.Query(
		"SELECT id, day, summary, is_complete, notes FROM entries WHERE day >= ? AND day <= ? ORDER BY day ASC",
		dateutil.ISO(start), dateutil.ISO(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.DayEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		if err := s.attachPhotos(&entries[i]); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func (s *SQLiteStore) EarliestDate() (*time.Time, error) {
	var iso sql.NullString
	if err := s.db.QueryRow("SELECT MIN(day) FROM entries").Scan(&iso); err != nil {
		return nil, err
	}
	if !iso.Valid || iso.String == "" {
		return nil, nil
	}

	day, err := dateutil.ParseISO(iso.String)
	if err != nil {
		return nil, fmt.Errorf("corrupt day key in store: %w", err)
	}
	return &day, nil
}

func (s *SQLiteStore) ClearEntries() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM photos"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetChallengeStart() (*time.Time, error) {
	var iso string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = 'challenge_start'").Scan(&iso)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	day, err := dateutil.ParseISO(iso)
	if err != nil {
		return nil, fmt.Errorf("corrupt challenge start in store: %w", err)
	}
	return &day, nil
}

func (s *SQLiteStore) SetChallengeStart(day time.Time) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES ('challenge_start', ?)", dateutil.ISO(day))
	return err
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}
