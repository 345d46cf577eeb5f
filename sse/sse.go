// Package sse decodes the assistant's line-delimited event stream.
//
// The wire format is a sequence of newline-terminated lines. Only lines
// starting with "data: " carry a payload; every other line is padding and
// is dropped without error. Each payload is a JSON object with a "type"
// discriminator, classified by Parse into a [parley.Event].
//
// Decoding is split in two steps so each can be tested on its own:
// [Split] and [Decoder] turn arbitrary byte chunks into frames, and
// [Parse] turns one frame payload into an event.
package sse

// dataPrefix marks a line that carries a frame payload.
const dataPrefix = "data: "

// Frame is one decoded protocol unit: the text after "data: " on a single
// line. Frames are ephemeral and never stored.
type Frame struct {
	Payload string
}
