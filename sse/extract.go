package sse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/parley"
)

// doneMarker is the bare terminal payload some backends send instead of a
// typed control frame.
const doneMarker = "[DONE]"

// payload is the structured record carried by a frame.
type payload struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// Parse classifies one frame payload. It is total: every input maps to an
// event and Parse never panics.
//
//   - {"type":"chunk","content":"..."} is an EventContentDelta.
//   - A control type (done, end, stop, complete, message_stop) or the bare
//     payload [DONE] is an EventDone.
//   - Anything else is an EventUnrecognized. Err wraps
//     [parley.ErrFrameParse] when the payload is structurally invalid and
//     is nil for well-formed frames of an unknown type.
func Parse(data string) parley.Event {
	trimmed := strings.TrimSpace(data)
	if trimmed == doneMarker {
		return parley.EventDone{}
	}

	var p payload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return parley.EventUnrecognized{Raw: data, Err: fmt.Errorf("%w: %v", parley.ErrFrameParse, err)}
	}

	switch p.Type {
	case "chunk":
		var text string
		if len(p.Content) == 0 || p.Content[0] != '"' || json.Unmarshal(p.Content, &text) != nil {
			return parley.EventUnrecognized{Raw: data, Err: fmt.Errorf("%w: chunk content is not a string", parley.ErrFrameParse)}
		}
		return parley.EventContentDelta{Text: text}
	case "done", "end", "stop", "complete", "message_stop":
		return parley.EventDone{}
	case "":
		return parley.EventUnrecognized{Raw: data, Err: fmt.Errorf("%w: missing type", parley.ErrFrameParse)}
	default:
		return parley.EventUnrecognized{Raw: data}
	}
}
