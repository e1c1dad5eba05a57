package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error for propagation policy: only
// persistence failures on the local write path block the user; network
// and auth failures from the sync path are logged and surfaced as
// non-blocking notices.
type Kind int

const (
	Unknown Kind = iota
	Network
	Authentication
	Validation
	Persistence
)

func (k Kind) String() string {
	switch k {
	case Network:
		return "network"
	case Authentication:
		return "authentication"
	case Validation:
		return "validation"
	case Persistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with its classification.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns the advisory text shown to the user.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case Network:
		return "Please check your internet connection and try again."
	case Authentication:
		return "There was an issue signing you in. Please try again."
	case Validation:
		return e.Msg
	case Persistence:
		return "There was an issue saving your data. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// UserMessage renders err for display, appending the advisory text of
// its classification when it carries one.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return fmt.Sprintf("%v\n%s", err, ae.UserMessage())
	}
	return err.Error()
}

// KindOf extracts the classification of err, or Unknown when err was
// never classified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Unknown
}

// IsBlocking reports whether err should interrupt the local flow.
// Remote sync errors never block; local persistence failures do.
func IsBlocking(err error) bool {
	return KindOf(err) == Persistence
}
