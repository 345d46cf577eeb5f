package parley

import (
	"fmt"
	"time"
)

// Status is the lifecycle status of a single message.
type Status string

const (
	StatusPending   Status = "pending"
	StatusStreaming Status = "streaming"
	StatusComplete  Status = "complete"
	StatusErrored   Status = "errored"
)

// Message is one entry in a conversation transcript.
//
// ID is opaque and unique within a transcript. Content is mutated only by
// the transcript reducer, and only while the message is the active one.
type Message struct {
	ID         string
	Role       Role
	Content    string
	Status     Status
	StopReason StopReason
	CreatedAt  time.Time
}

// Validate checks that the message can be placed in a transcript.
func (m Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message id must not be empty: %w", ErrValidation)
	}
	if !m.Role.Valid() {
		return fmt.Errorf("unknown role %q: %w", m.Role, ErrValidation)
	}
	switch m.Status {
	case StatusPending, StatusStreaming, StatusComplete, StatusErrored:
	default:
		return fmt.Errorf("unknown status %q: %w", m.Status, ErrValidation)
	}
	return nil
}
