package models

import (
	"strings"
	"time"
)

// PhotoItem is a single photo attached to a day entry. Label is the
// storage key of the task slot the photo answers.
type PhotoItem struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Label string `json:"label"`
}

// DayEntry is the durable record for one calendar day. Day is always
// normalized (midnight UTC); the store enforces one entry per day.
type DayEntry struct {
	ID         string            `json:"id"`
	Day        time.Time         `json:"day"`
	Photos     []PhotoItem       `json:"photos,omitempty"`
	Notes      map[string]string `json:"notes,omitempty"` // task storage key -> note text
	Summary    string            `json:"summary,omitempty"`
	IsComplete bool              `json:"is_complete"`
}

// HasSummary reports whether the entry carries a non-blank summary.
func (e DayEntry) HasSummary() bool {
	return strings.TrimSpace(e.Summary) != ""
}

// PhotoForTask returns the entry's photo for a task slot, if any.
func (e DayEntry) PhotoForTask(key string) (PhotoItem, bool) {
	for _, p := range e.Photos {
		if p.Label == key {
			return p, true
		}
	}
	return PhotoItem{}, false
}
