package json

import "encoding/json"

// frameDTO is the payload of one event-stream frame.
type frameDTO struct {
	Type    string  `json:"type"`
	Content *string `json:"content,omitempty"`
}

// MarshalChunk encodes a content frame payload carrying text.
func MarshalChunk(text string) ([]byte, error) {
	return json.Marshal(frameDTO{Type: "chunk", Content: &text})
}

// MarshalDone encodes the end-of-reply frame payload.
func MarshalDone() ([]byte, error) {
	return json.Marshal(frameDTO{Type: "done"})
}
