package parley

// Event is a sealed interface representing one decoded stream frame.
// Every frame maps to exactly one Event; frames that cannot be classified
// become EventUnrecognized rather than an error.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventContentDelta carries an incremental fragment of assistant text.
type EventContentDelta struct {
	Text string
}

func (EventContentDelta) event() {}

// EventDone signals a terminal control frame.
type EventDone struct{}

func (EventDone) event() {}

// EventUnrecognized carries a frame payload that could not be classified.
// Err is non-nil when the payload failed structural parsing.
type EventUnrecognized struct {
	Raw string
	Err error
}

func (EventUnrecognized) event() {}

// Interface compliance checks.
var (
	_ Event = EventContentDelta{}
	_ Event = EventDone{}
	_ Event = EventUnrecognized{}
)
