package tracking

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrAcquisitionTimeout  = errors.New("position acquisition timed out")
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTransportClosed     = errors.New("transport is not open")
	ErrMissingActorID      = errors.New("actor id is required")
)

// AcquisitionError is a failed position acquisition
type AcquisitionError struct {
	Attempt int
	Err     error
}

func (e *AcquisitionError) Error() string {
	if e.Attempt > 0 {
		return fmt.Sprintf("acquisition failed (attempt %d): %v", e.Attempt, e.Err)
	}
	return fmt.Sprintf("acquisition failed: %v", e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a recoverable acquisition timeout
func IsTimeout(err error) bool {
	return errors.Is(err, ErrAcquisitionTimeout) || errors.Is(err, context.DeadlineExceeded)
}
