package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/models"
)

// Store is the on-disk shape of the JSON backend: entries keyed by
// their yyyy-MM-dd day.
type Store struct {
	Version        int                        `json:"version"`
	Profile        *models.UserProfile        `json:"profile,omitempty"`
	ChallengeStart string                     `json:"challenge_start,omitempty"`
	Entries        map[string]models.DayEntry `json:"entries"`
}

type JSONStore struct {
	path  string
	store *Store
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &Store{
		Version: 1,
		Entries: make(map[string]models.DayEntry),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	if s.store != nil {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run '75progress init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &Store{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.store.Entries == nil {
		s.store.Entries = make(map[string]models.DayEntry)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) GetProfile() (models.UserProfile, error) {
	if s.store == nil || s.store.Profile == nil {
		return models.UserProfile{}, fmt.Errorf("profile not found")
	}
	return *s.store.Profile, nil
}

func (s *JSONStore) SaveProfile(profile models.UserProfile) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.store.Profile = &profile
	return s.save()
}

func (s *JSONStore) GetEntry(day time.Time) (*models.DayEntry, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	entry, ok := s.store.Entries[dateutil.ISO(day)]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (s *JSONStore) UpsertEntry(entry models.DayEntry) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	iso := dateutil.ISO(entry.Day)
	entry.Day = dateutil.Normalize(entry.Day)

	// Keep the id stable across edits of the same day.
	if existing, ok := s.store.Entries[iso]; ok {
		entry.ID = existing.ID
	} else if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	for i := range entry.Photos {
		if entry.Photos[i].ID == "" {
			entry.Photos[i].ID = uuid.NewString()
		}
	}

	s.store.Entries[iso] = entry
	return s.save()
}

func (s *JSONStore) DeleteEntry(day time.Time) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	iso := dateutil.ISO(day)
	if _, ok := s.store.Entries[iso]; !ok {
		return fmt.Errorf("no entry found for %s", iso)
	}

	delete(s.store.Entries, iso)
	return s.save()
}

func (s *JSONStore) QueryRange(start, end time.Time) ([]models.DayEntry, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	startISO := dateutil.ISO(start)
	endISO := dateutil.ISO(end)

	var entries []models.DayEntry
	for iso, entry := range s.store.Entries {
		if iso >= startISO && iso <= endISO {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Day.Before(entries[j].Day)
	})

	return entries, nil
}

func (s *JSONStore) EarliestDate() (*time.Time, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	earliest := ""
	for iso := range s.store.Entries {
		if earliest == "" || iso < earliest {
			earliest = iso
		}
	}
	if earliest == "" {
		return nil, nil
	}

	day, err := dateutil.ParseISO(earliest)
	if err != nil {
		return nil, fmt.Errorf("corrupt day key in store: %w", err)
	}
	return &day, nil
}

func (s *JSONStore) ClearEntries() error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	s.store.Entries = make(map[string]models.DayEntry)
	return s.save()
}

func (s *JSONStore) GetChallengeStart() (*time.Time, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	if s.store.ChallengeStart == "" {
		return nil, nil
	}

	day, err := dateutil.ParseISO(s.store.ChallengeStart)
	if err != nil {
		return nil, fmt.Errorf("corrupt challenge start in store: %w", err)
	}
	return &day, nil
}

func (s *JSONStore) SetChallengeStart(day time.Time) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	s.store.ChallengeStart = dateutil.ISO(day)
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
