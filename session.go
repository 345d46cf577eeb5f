package parley

// SessionStatus is the lifecycle state of one submit-to-completion
// streaming interaction.
type SessionStatus int

const (
	SessionIdle      SessionStatus = iota // No request in flight.
	SessionSending                        // Request sent, awaiting the response headers.
	SessionStreaming                      // Receiving frames.
	SessionClosed                         // Ended normally or by cancellation.
	SessionFailed                         // Ended by a transport error.
)

func (s SessionStatus) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionSending:
		return "sending"
	case SessionStreaming:
		return "streaming"
	case SessionClosed:
		return "closed"
	case SessionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Active reports whether a stream is in flight.
func (s SessionStatus) Active() bool {
	return s == SessionSending || s == SessionStreaming
}

// SessionState is the observable state of the session controller.
// ActiveMessageID names the assistant message receiving deltas; it is
// empty when no submit has happened yet.
type SessionState struct {
	Status          SessionStatus
	ActiveMessageID string
}

// Snapshot pairs an immutable transcript with the session state at the
// moment it was produced. Snapshots are what presentation layers receive.
type Snapshot struct {
	Transcript Transcript
	State      SessionState
}
