package service

import (
	"errors"
	"fmt"
)

var (
	// ErrConfirmationRequired is returned when a permanent delete is not explicitly confirmed
	ErrConfirmationRequired = errors.New("permanent delete must be confirmed")
	ErrNotConfigured        = errors.New("service not configured")
)

// ExternalServiceError wraps a failure of PDF generation, email or object storage.
// Quote data is never modified when one is returned.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
