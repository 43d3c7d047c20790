package models

import "fmt"

// LockoutError is returned when the guard blocks an attempt. It
// matches ErrLockedOut under errors.Is and carries the seconds the
// caller must wait, surfaced to clients on the 429 response.
type LockoutError struct {
	RetryAfter int
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %ds", e.RetryAfter)
}

func (e *LockoutError) Is(target error) bool {
	return target == ErrLockedOut
}
