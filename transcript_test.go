package parley_test

import (
	"testing"

	"github.com/fwojciec/parley"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userMsg(id, content string) parley.Message {
	return parley.Message{ID: id, Role: parley.RoleUser, Content: content, Status: parley.StatusComplete}
}

func placeholder(id string) parley.Message {
	return parley.Message{ID: id, Role: parley.RoleAssistant, Status: parley.StatusPending}
}

func TestTranscript_ZeroValue(t *testing.T) {
	t.Parallel()
	var tr parley.Transcript
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Messages())
	_, ok := tr.Last()
	assert.False(t, ok)
	assert.Equal(t, -1, tr.Index("x"))
	assert.True(t, tr.Same(parley.Transcript{}))
}

func TestTranscript_Append(t *testing.T) {
	t.Parallel()

	t.Run("preserves insertion order", func(t *testing.T) {
		t.Parallel()
		tr, err := parley.NewTranscript(userMsg("1", "a"), userMsg("2", "b"))
		require.NoError(t, err)
		tr, err = tr.Append(userMsg("3", "c"))
		require.NoError(t, err)

		require.Equal(t, 3, tr.Len())
		assert.Equal(t, "1", tr.At(0).ID)
		assert.Equal(t, "2", tr.At(1).ID)
		assert.Equal(t, "3", tr.At(2).ID)
		last, ok := tr.Last()
		require.True(t, ok)
		assert.Equal(t, "c", last.Content)
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		t.Parallel()
		tr, err := parley.NewTranscript(userMsg("1", "a"))
		require.NoError(t, err)
		got, err := tr.Append(userMsg("1", "again"))
		assert.ErrorIs(t, err, parley.ErrValidation)
		assert.True(t, got.Same(tr))
	})

	t.Run("rejects duplicate ids within one call", func(t *testing.T) {
		t.Parallel()
		_, err := parley.NewTranscript(userMsg("1", "a"), userMsg("1", "b"))
		assert.ErrorIs(t, err, parley.ErrValidation)
	})

	t.Run("rejects invalid messages", func(t *testing.T) {
		t.Parallel()
		_, err := parley.NewTranscript(parley.Message{ID: "1", Role: "robot", Status: parley.StatusComplete})
		assert.ErrorIs(t, err, parley.ErrValidation)
	})

	t.Run("does not alias the previous snapshot", func(t *testing.T) {
		t.Parallel()
		base, err := parley.NewTranscript(userMsg("1", "a"))
		require.NoError(t, err)
		a, err := base.Append(userMsg("2", "b"))
		require.NoError(t, err)
		b, err := base.Append(userMsg("3", "c"))
		require.NoError(t, err)

		assert.Equal(t, 1, base.Len())
		assert.Equal(t, "2", a.At(1).ID)
		assert.Equal(t, "3", b.At(1).ID)
	})
}

func TestTranscript_Messages_ReturnsCopy(t *testing.T) {
	t.Parallel()
	tr, err := parley.NewTranscript(userMsg("1", "a"))
	require.NoError(t, err)

	msgs := tr.Messages()
	msgs[0].Content = "changed"

	assert.Equal(t, "a", tr.At(0).Content)
}

func TestTranscript_FindAndStreaming(t *testing.T) {
	t.Parallel()
	tr, err := parley.NewTranscript(userMsg("1", "hi"), placeholder("2"))
	require.NoError(t, err)

	m, ok := tr.Find("2")
	require.True(t, ok)
	assert.Equal(t, parley.RoleAssistant, m.Role)
	_, ok = tr.Find("missing")
	assert.False(t, ok)
	_, ok = tr.Find("")
	assert.False(t, ok)

	_, ok = tr.Streaming()
	assert.False(t, ok)
	tr = parley.MarkStreaming(tr, "2")
	m, ok = tr.Streaming()
	require.True(t, ok)
	assert.Equal(t, "2", m.ID)
}
