package parley

// Reduce applies one stream event to the message identified by activeID
// and returns the resulting transcript.
//
// Deltas are concatenated in call order. The first delta promotes a
// pending message to streaming. EventDone marks the message complete.
// When activeID does not match an in-flight message, or the event is not
// a delta or EventDone, Reduce returns t itself. A delta always yields a
// new transcript, even an empty one. It never modifies t.
func Reduce(t Transcript, evt Event, activeID string) Transcript {
	i := t.Index(activeID)
	if i < 0 || !inFlight(t.msgs[i]) {
		return t
	}
	switch e := evt.(type) {
	case EventContentDelta:
		return t.update(i, func(m Message) Message {
			m.Content += e.Text
			if m.Status == StatusPending {
				m.Status = StatusStreaming
			}
			return m
		})
	case EventDone:
		return Finish(t, activeID, StopEndTurn)
	default:
		return t
	}
}

// MarkStreaming moves the message with the given id from pending to
// streaming. Any other status is left alone.
func MarkStreaming(t Transcript, id string) Transcript {
	i := t.Index(id)
	if i < 0 || t.msgs[i].Status != StatusPending {
		return t
	}
	return t.update(i, func(m Message) Message {
		m.Status = StatusStreaming
		return m
	})
}

// Finish marks the message complete with the given stop reason, keeping
// whatever content it has accumulated. Messages already complete or
// errored are left alone.
func Finish(t Transcript, id string, reason StopReason) Transcript {
	i := t.Index(id)
	if i < 0 || !inFlight(t.msgs[i]) {
		return t
	}
	return t.update(i, func(m Message) Message {
		m.Status = StatusComplete
		m.StopReason = reason
		return m
	})
}

// MarkErrored marks an in-flight message errored. Partial content is kept.
func MarkErrored(t Transcript, id string) Transcript {
	i := t.Index(id)
	if i < 0 || !inFlight(t.msgs[i]) {
		return t
	}
	return t.update(i, func(m Message) Message {
		m.Status = StatusErrored
		m.StopReason = StopError
		return m
	})
}

func inFlight(m Message) bool {
	return m.Status == StatusPending || m.Status == StatusStreaming
}
