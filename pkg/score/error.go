package score

import (
	"errors"
	"fmt"
)

// ErrInvalidInput matches any *InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError names the answer field holding an out-of-range or unknown
// value, or the field a caller left out entirely.
type InvalidInputError struct {
	Field   string
	Value   string
	Missing bool
}

// MissingField reports a questionnaire field absent from the caller's input.
func MissingField(field string) *InvalidInputError {
	return &InvalidInputError{Field: field, Missing: true}
}

func (e *InvalidInputError) Error() string {
	if e.Missing {
		return fmt.Sprintf("invalid input: %s is required", e.Field)
	}
	return fmt.Sprintf("invalid input: %s=%q", e.Field, e.Value)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
