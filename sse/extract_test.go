package sse_test

import (
	"testing"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want parley.Event
	}{
		{"chunk", `{"type":"chunk","content":"hi"}`, parley.EventContentDelta{Text: "hi"}},
		{"empty chunk", `{"type":"chunk","content":""}`, parley.EventContentDelta{Text: ""}},
		{"chunk with escapes", `{"type":"chunk","content":"a\nb é"}`, parley.EventContentDelta{Text: "a\nb é"}},
		{"chunk with extra fields", `{"type":"chunk","content":"x","index":3}`, parley.EventContentDelta{Text: "x"}},
		{"surrounding whitespace", `  {"type":"chunk","content":"x"} `, parley.EventContentDelta{Text: "x"}},
		{"done", `{"type":"done"}`, parley.EventDone{}},
		{"end", `{"type":"end"}`, parley.EventDone{}},
		{"stop", `{"type":"stop"}`, parley.EventDone{}},
		{"complete", `{"type":"complete"}`, parley.EventDone{}},
		{"message_stop", `{"type":"message_stop"}`, parley.EventDone{}},
		{"bare done marker", `[DONE]`, parley.EventDone{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sse.Parse(tt.in))
		})
	}
}

func TestParse_Unrecognized(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		in         string
		parseError bool
	}{
		{"truncated json", `{bad`, true},
		{"empty payload", ``, true},
		{"not an object", `[1,2]`, true},
		{"plain text", `hello`, true},
		{"missing type", `{"content":"x"}`, true},
		{"null", `null`, true},
		{"numeric type", `{"type":1}`, true},
		{"chunk without content", `{"type":"chunk"}`, true},
		{"chunk with numeric content", `{"type":"chunk","content":42}`, true},
		{"chunk with null content", `{"type":"chunk","content":null}`, true},
		{"unknown type", `{"type":"ping"}`, false},
		{"metadata frame", `{"type":"metadata","content":"x"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			evt := sse.Parse(tt.in)
			u, ok := evt.(parley.EventUnrecognized)
			require.True(t, ok, "got %T", evt)
			assert.Equal(t, tt.in, u.Raw)
			if tt.parseError {
				assert.ErrorIs(t, u.Err, parley.ErrFrameParse)
			} else {
				assert.NoError(t, u.Err)
			}
		})
	}
}
