package page

import (
	"errors"
	"fmt"
)

// ErrInvalidTimestamp is matched by every *TimestampError.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// TimestampError reports a request timestamp that is not a valid instant.
type TimestampError struct {
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("invalid timestamp %q: %v", e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error { return e.Err }

func (e *TimestampError) Is(target error) bool { return target == ErrInvalidTimestamp }
