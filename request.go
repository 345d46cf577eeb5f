package parley

import (
	"fmt"
	"strings"
	"time"
)

// SendRequest is one user submission to the assistant backend.
type SendRequest struct {
	UserID          string
	Message         string
	IsSpecificUser  bool
	CurrentDateTime time.Time
}

// Validate checks universal constraints on SendRequest.
func (r SendRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("message must not be empty: %w", ErrInvalidInput)
	}
	if r.CurrentDateTime.IsZero() {
		return fmt.Errorf("current date time must be set: %w", ErrValidation)
	}
	return nil
}
