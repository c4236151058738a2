package frames

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is matched by every *MalformedInputError via errors.Is.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError reports a sequence that is absent or too short to hold
// the requested value.
type MalformedInputError struct {
	Field string
	Want  int
	Got   int
}

func (e *MalformedInputError) Error() string {
	if e.Got == 0 {
		return fmt.Sprintf("malformed %s: missing, want %d components", e.Field, e.Want)
	}
	return fmt.Sprintf("malformed %s: got %d components, want %d", e.Field, e.Got, e.Want)
}

// Is lets callers test with errors.Is(err, ErrMalformedInput).
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

func checkLen(field string, s []float64, want int) error {
	if len(s) < want {
		return &MalformedInputError{Field: field, Want: want, Got: len(s)}
	}
	return nil
}
