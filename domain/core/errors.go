package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrMalformedInput  = errors.New("malformed input")
	ErrMissingColumn   = fmt.Errorf("%w: missing required column", ErrMalformedInput)
	ErrBadTimestamp    = fmt.Errorf("%w: unparseable timestamp", ErrMalformedInput)
	ErrOffGridTime     = fmt.Errorf("%w: timestamp not on the hourly grid", ErrMalformedInput)
	ErrBadNumber       = fmt.Errorf("%w: unparseable numeric value", ErrMalformedInput)
	ErrUnsupportedFile = fmt.Errorf("%w: unsupported file type", ErrMalformedInput)

	// Integrity errors
	ErrIntegrity  = errors.New("integrity violation")
	ErrEmptyGroup = fmt.Errorf("%w: unit group has no readings", ErrIntegrity)

	// Configuration errors
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidHorizon    = fmt.Errorf("%w: invalid label horizon", ErrInvalidConfig)
	ErrInvalidTestPeriod = fmt.Errorf("%w: test period must be at least one day", ErrInvalidConfig)
)

// Error constructors with context
func NewMissingColumnError(source, column string) error {
	return fmt.Errorf("%w %q in %s", ErrMissingColumn, column, source)
}

func NewCellError(base error, source string, row int, column, value string) error {
	return fmt.Errorf("%w: %s row %d column %q value %q", base, source, row, column, value)
}

func NewEmptyGroupError(unitID string) error {
	return fmt.Errorf("%w (unit %q)", ErrEmptyGroup, unitID)
}

// Error checking helpers
func IsMalformedInputError(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrIntegrity)
}
