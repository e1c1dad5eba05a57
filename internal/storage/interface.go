package storage

import (
	"time"

	"github.com/happi2206/75progress/internal/models"
)

// Provider is the durable Day Entry Store. It is the single source of
// truth for logged days and streak computation; the session cache
// layers over it for unsaved edits only.
//
// Entry lookups return (nil, nil) for days with no entry: a missing
// day is ordinary, not an error.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Profile
	GetProfile() (models.UserProfile, error)
	SaveProfile(models.UserProfile) error

	// Day entries
	GetEntry(day time.Time) (*models.DayEntry, error)
	UpsertEntry(models.DayEntry) error
	DeleteEntry(day time.Time) error
	QueryRange(start, end time.Time) ([]models.DayEntry, error)
	EarliestDate() (*time.Time, error)
	ClearEntries() error

	// Challenge start (user-chosen; callers lower it, never raise it
	// automatically)
	GetChallengeStart() (*time.Time, error)
	SetChallengeStart(day time.Time) error

	// Utils
	GetConfigPath() string
}
