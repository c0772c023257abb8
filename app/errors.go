package app

import (
	"errors"
	"fmt"
)

// Error kinds the transport and CLI layers branch on. All are local,
// recoverable conditions the caller surfaces to the user; none are fatal.
var (
	// ErrPlanNotFound is returned when a plan name is not in the catalog.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrAccountNotFound is returned for an unknown account ID.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccount is returned when a signup ID is taken.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrOutOfRange is returned for an invalid subscription or catalog index.
	ErrOutOfRange = errors.New("index out of range")

	// ErrEmptyWindow is returned for a usage query with no recorded data.
	// Callers surface "no data" rather than a zero summary.
	ErrEmptyWindow = errors.New("no usage recorded")

	// ErrNotActive is returned when renewing or upgrading a record that is
	// cancelled or expired.
	ErrNotActive = errors.New("subscription is not active")

	// ErrInvalidTerm is returned for a renewal term outside 1-24 months.
	ErrInvalidTerm = errors.New("renewal term must be between 1 and 24 months")
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
