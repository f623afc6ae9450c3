package orders

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrAccessDenied  = errors.New("access denied")
	ErrConflict      = errors.New("order changed concurrently") // retryable
	ErrCodeTaken     = errors.New("order code already taken")   // retryable with a fresh code
	ErrCodeMissing   = errors.New("missing order code")
	ErrCodeUnknown   = errors.New("unknown order code")
	ErrTotalMismatch = errors.New("confirmed total does not match computed total")
)

type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}
