package models

import "time"

// UserProfile holds the local user record created during init. StartDate
// is the user-chosen challenge start; the effective start may be lowered
// when earlier entries are discovered, never raised.
type UserProfile struct {
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Goal      string    `json:"goal,omitempty"`
	StartDate time.Time `json:"start_date"`
}
