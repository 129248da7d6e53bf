package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrConflict      = errors.New("conflicting operation in flight")
	ErrNoSession     = errors.New("no active session")
	ErrVMNotFound    = errors.New("virtual machine not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrBillNotFound  = errors.New("bill not found")
	ErrPlanNotFound  = errors.New("subscription plan not found")
)

// RemoteError classifies a failed exchange with the remote authority:
// a non-2xx status, a success=false envelope, or a transport failure.
type RemoteError struct {
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Message != "" && e.Status > 0:
		return fmt.Sprintf("remote authority rejected request (%d): %s", e.Status, e.Message)
	case e.Message != "":
		return fmt.Sprintf("remote authority rejected request: %s", e.Message)
	case e.Status > 0:
		return fmt.Sprintf("remote authority returned status %d", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("remote request failed: %v", e.Err)
	default:
		return "remote request failed"
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
