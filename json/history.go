package json

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fwojciec/parley"
)

// historyEnvelope is the GET /user/chats response body.
type historyEnvelope struct {
	Data []historyDTO `json:"data"`
}

// historyDTO is one stored message. Type is "ai" for assistant messages;
// every other value is treated as a user message.
type historyDTO struct {
	ID      string `json:"_id"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

const aiType = "ai"

// UnmarshalHistory decodes a history envelope into complete messages in
// stored order. Entries without an id get a positional one so the result
// can always be placed in a transcript.
func UnmarshalHistory(data []byte) ([]parley.Message, error) {
	var env historyEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	// The first entry carrying a given id keeps it. Those ids are reserved
	// up front so a positional id never shadows a later real one.
	taken := make(map[string]bool, len(env.Data))
	keeps := make([]bool, len(env.Data))
	for i, dto := range env.Data {
		if dto.ID != "" && !taken[dto.ID] {
			taken[dto.ID] = true
			keeps[i] = true
		}
	}
	msgs := make([]parley.Message, 0, len(env.Data))
	for i, dto := range env.Data {
		id := dto.ID
		if !keeps[i] {
			id = positionalID(i, taken)
			taken[id] = true
		}
		role := parley.RoleUser
		if dto.Type == aiType {
			role = parley.RoleAssistant
		}
		msgs = append(msgs, parley.Message{
			ID:      id,
			Role:    role,
			Content: dto.Content,
			Status:  parley.StatusComplete,
		})
	}
	return msgs, nil
}

// positionalID returns "history-<i>", suffixed until it is not taken.
func positionalID(i int, taken map[string]bool) string {
	base := "history-" + strconv.Itoa(i)
	id := base
	for n := 1; taken[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	return id
}

// MarshalHistory encodes messages as a history envelope.
func MarshalHistory(msgs []parley.Message) ([]byte, error) {
	env := historyEnvelope{Data: make([]historyDTO, len(msgs))}
	for i, m := range msgs {
		typ := "human"
		if m.Role == parley.RoleAssistant {
			typ = aiType
		}
		env.Data[i] = historyDTO{ID: m.ID, Type: typ, Content: m.Content}
	}
	return json.Marshal(env)
}
