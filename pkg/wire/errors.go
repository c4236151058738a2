package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned for buffers too short to hold a root table.
	ErrTruncated = errors.New("buffer truncated")
	// ErrMissingField is returned when a required struct field is absent.
	ErrMissingField = errors.New("missing field")
	// ErrCorrupt wraps a panic raised while walking a malformed buffer.
	ErrCorrupt = errors.New("corrupt buffer")
)

// DecodeError reports which message and field could not be decoded.
type DecodeError struct {
	Message string
	Field   string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("decode %s.%s: %v", e.Message, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func missing(msg, field string) error {
	return &DecodeError{Message: msg, Field: field, Err: ErrMissingField}
}

// recoverDecode turns an out-of-range read inside the flatbuffers runtime
// into a DecodeError. It must be deferred directly.
func recoverDecode(msg string, err *error) {
	if r := recover(); r != nil {
		*err = &DecodeError{Message: msg, Err: fmt.Errorf("%w: %v", ErrCorrupt, r)}
	}
}

// minBufferSize is the root offset plus the smallest possible table.
const minBufferSize = 8

func checkBuffer(msg string, buf []byte) error {
	if len(buf) < minBufferSize {
		return &DecodeError{Message: msg, Err: fmt.Errorf("%w: %d bytes", ErrTruncated, len(buf))}
	}
	return nil
}
