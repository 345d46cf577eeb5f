package parley

// StopReason indicates why a streamed message stopped growing.
// Messages that were never streamed carry the empty StopReason.
type StopReason string

const (
	StopNone    StopReason = ""
	StopEndTurn StopReason = "end_turn"
	StopAborted StopReason = "aborted"
	StopError   StopReason = "error"
)
