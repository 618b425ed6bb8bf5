// Package errs defines the error kinds surfaced by the attendance domain.
//
// Every domain error wraps exactly one of the kind sentinels below, so callers
// can branch with errors.Is without knowing which controller produced it.
package errs

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on uniqueness or duplicate-state violations
	// (duplicate rfid, duplicate membership, duplicate attendance).
	ErrConflict = errors.New("conflict")

	// ErrInvalidState is returned when an operation is not legal in the current
	// lifecycle state, e.g. marking attendance on an ended session.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation is returned for malformed input such as an empty required field.
	ErrValidation = errors.New("validation failed")
)

// New returns an error of the given kind carrying msg.
func New(kind error, msg string) error {
	return errors.Wrap(kind, msg)
}

// Newf is New with formatting.
func Newf(kind error, format string, args ...any) error {
	return errors.Wrapf(kind, format, args...)
}

// Kind returns the kind sentinel wrapped by err, or nil if err carries none.
func Kind(err error) error {
	for _, kind := range []error{ErrNotFound, ErrConflict, ErrInvalidState, ErrValidation} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}

// Name returns a short machine readable name for the kind of err.
func Name(err error) string {
	switch Kind(err) {
	case ErrNotFound:
		return "not_found"
	case ErrConflict:
		return "conflict"
	case ErrInvalidState:
		return "invalid_state"
	case ErrValidation:
		return "validation"
	default:
		return "internal"
	}
}

// IsDuplicate reports whether err is a unique constraint violation raised by
// one of the supported gorm engines.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") || // postgres
		strings.Contains(msg, "duplicate entry") // mysql
}
