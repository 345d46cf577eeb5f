package parley_test

import (
	"testing"

	"github.com/fwojciec/parley"
	"github.com/stretchr/testify/assert"
)

func TestEventTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	events := []parley.Event{
		parley.EventContentDelta{Text: "hello"},
		parley.EventDone{},
		parley.EventUnrecognized{Raw: "{bad"},
	}
	assert.Len(t, events, 3, "update slice and switch when adding new Event types")
	for _, e := range events {
		switch e.(type) {
		case parley.EventContentDelta:
		case parley.EventDone:
		case parley.EventUnrecognized:
		default:
			t.Fatalf("unexpected event type: %T", e)
		}
	}
}
