/*
errors.go - Error types for the Faraid engine boundary

PURPOSE:
  The calculation itself never fails: unrecognized heirs are excluded and
  odd totals are reported as data (Distribution.AwlRequired, Residual).
  Errors only exist at the parsing boundary (labels, gender) and for the
  optional estate value check callers run before calculating.

USAGE:
  if _, err := faraid.ParseRelationship("cousin"); errors.Is(err, faraid.ErrUnknownRelationship) {
      // show as non-eligible
  }
*/
package faraid

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRelationship is returned when a label names no Faraid role.
	ErrUnknownRelationship = errors.New("unknown relationship")

	// ErrUnknownGender is returned when an owner gender is neither male nor female.
	ErrUnknownGender = errors.New("unknown gender")

	// ErrNegativeEstateValue is returned by ValidateEstateValue.
	ErrNegativeEstateValue = errors.New("estate value must not be negative")
)

// LabelError carries the label that failed to parse.
type LabelError struct {
	Label string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("unknown relationship %q", e.Label)
}

func (e *LabelError) Unwrap() error {
	return ErrUnknownRelationship
}

// GenderError carries the value that failed to parse.
type GenderError struct {
	Value string
}

func (e *GenderError) Error() string {
	return fmt.Sprintf("unknown gender %q (valid: male, female)", e.Value)
}

func (e *GenderError) Unwrap() error {
	return ErrUnknownGender
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownRelationship) ||
		errors.Is(err, ErrUnknownGender) ||
		errors.Is(err, ErrNegativeEstateValue)
}
