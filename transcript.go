package parley

import "fmt"

// Transcript is an immutable, ordered snapshot of a conversation.
// Insertion order is conversation order and no two messages share an ID.
//
// Every operation that changes a Transcript returns a new value backed by
// a freshly allocated slice, so a Transcript handed to a presentation
// layer never changes underneath it. The zero value is an empty transcript.
type Transcript struct {
	msgs []Message
}

// NewTranscript builds a transcript from msgs. It fails if any message is
// invalid or two messages share an ID.
func NewTranscript(msgs ...Message) (Transcript, error) {
	return Transcript{}.Append(msgs...)
}

// Len returns the number of messages.
func (t Transcript) Len() int { return len(t.msgs) }

// At returns the message at index i. It panics if i is out of range.
func (t Transcript) At(i int) Message { return t.msgs[i] }

// Messages returns a copy of the messages in conversation order.
func (t Transcript) Messages() []Message {
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Index returns the position of the message with the given ID, or -1.
func (t Transcript) Index(id string) int {
	if id == "" {
		return -1
	}
	for i := len(t.msgs) - 1; i >= 0; i-- {
		if t.msgs[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the message with the given ID.
func (t Transcript) Find(id string) (Message, bool) {
	i := t.Index(id)
	if i < 0 {
		return Message{}, false
	}
	return t.msgs[i], true
}

// Last returns the final message, if any.
func (t Transcript) Last() (Message, bool) {
	if len(t.msgs) == 0 {
		return Message{}, false
	}
	return t.msgs[len(t.msgs)-1], true
}

// Append returns a new transcript with msgs added at the end.
func (t Transcript) Append(msgs ...Message) (Transcript, error) {
	seen := make(map[string]struct{}, len(t.msgs)+len(msgs))
	for _, m := range t.msgs {
		seen[m.ID] = struct{}{}
	}
	for _, m := range msgs {
		if err := m.Validate(); err != nil {
			return t, err
		}
		if _, dup := seen[m.ID]; dup {
			return t, fmt.Errorf("duplicate message id %q: %w", m.ID, ErrValidation)
		}
		seen[m.ID] = struct{}{}
	}
	out := make([]Message, 0, len(t.msgs)+len(msgs))
	out = append(out, t.msgs...)
	out = append(out, msgs...)
	return Transcript{msgs: out}, nil
}

// Streaming returns the message currently in StatusStreaming, if any.
func (t Transcript) Streaming() (Message, bool) {
	for _, m := range t.msgs {
		if m.Status == StatusStreaming {
			return m, true
		}
	}
	return Message{}, false
}

// Same reports whether t and other are the same snapshot, i.e. share
// backing storage. Reducers return the same snapshot for events they
// ignore, so Same is a cheap change-detection check.
func (t Transcript) Same(other Transcript) bool {
	if len(t.msgs) != len(other.msgs) {
		return false
	}
	if len(t.msgs) == 0 {
		return true
	}
	return &t.msgs[0] == &other.msgs[0]
}

// update returns a copy of t with the message at i replaced by fn(msg).
func (t Transcript) update(i int, fn func(Message) Message) Transcript {
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	out[i] = fn(out[i])
	return Transcript{msgs: out}
}
