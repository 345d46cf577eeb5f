package sse_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/fwojciec/parley/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStream = ": keep-alive\n" +
	"data: {\"type\":\"chunk\",\"content\":\"H\"}\n" +
	"\n" +
	"event: message\n" +
	"data: {\"type\":\"chunk\",\"content\":\"i!\"}\r\n" +
	"id: 7\n" +
	"data: {\"type\":\"done\"}\n"

func payloads(frames []sse.Frame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Payload
	}
	return out
}

// decodeChunks feeds chunks through a Decoder and flushes at the end.
func decodeChunks(chunks ...[]byte) []sse.Frame {
	var dec sse.Decoder
	var frames []sse.Frame
	for _, c := range chunks {
		frames = append(frames, slices.Collect(dec.Feed(c))...)
	}
	if f, ok := dec.Flush(); ok {
		frames = append(frames, f)
	}
	return frames
}

func TestSplit(t *testing.T) {
	t.Parallel()

	t.Run("keeps only data lines", func(t *testing.T) {
		t.Parallel()
		frames, rest := sse.Split(nil, []byte(sampleStream))
		assert.Equal(t, []string{
			`{"type":"chunk","content":"H"}`,
			`{"type":"chunk","content":"i!"}`,
			`{"type":"done"}`,
		}, payloads(slices.Collect(frames)))
		assert.Empty(t, rest)
	})

	t.Run("retains the tail after the last newline", func(t *testing.T) {
		t.Parallel()
		frames, rest := sse.Split([]byte("data: a\nda"), []byte("ta: b"))
		assert.Equal(t, []string{"a"}, payloads(slices.Collect(frames)))
		assert.Equal(t, "data: b", string(rest))
	})

	t.Run("no newline yields nothing and keeps everything", func(t *testing.T) {
		t.Parallel()
		frames, rest := sse.Split([]byte("data: "), []byte("partial"))
		assert.Empty(t, slices.Collect(frames))
		assert.Equal(t, "data: partial", string(rest))
	})

	t.Run("prefix must match exactly", func(t *testing.T) {
		t.Parallel()
		frames, _ := sse.Split(nil, []byte("data:no-space\nDATA: upper\n data: indented\ndata: \n"))
		assert.Equal(t, []string{""}, payloads(slices.Collect(frames)))
	})

	t.Run("sequence stops when the consumer stops", func(t *testing.T) {
		t.Parallel()
		frames, _ := sse.Split(nil, []byte("data: 1\ndata: 2\ndata: 3\n"))
		var got []string
		for f := range frames {
			got = append(got, f.Payload)
			if len(got) == 2 {
				break
			}
		}
		assert.Equal(t, []string{"1", "2"}, got)
	})

	t.Run("does not alias its inputs", func(t *testing.T) {
		t.Parallel()
		chunk := []byte("data: abc\ndata: tail")
		frames, rest := sse.Split(nil, chunk)
		for i := range chunk {
			chunk[i] = 'x'
		}
		assert.Equal(t, []string{"abc"}, payloads(slices.Collect(frames)))
		assert.Equal(t, "data: tail", string(rest))
	})
}

func TestDecoder_BoundaryIndependence(t *testing.T) {
	t.Parallel()

	input := []byte(sampleStream + "data: {\"type\":\"chunk\",\"content\":\"tail\"}")
	want := decodeChunks(input)
	require.Len(t, want, 4)

	t.Run("every single split point", func(t *testing.T) {
		t.Parallel()
		for i := 0; i <= len(input); i++ {
			got := decodeChunks(input[:i], input[i:])
			require.Equal(t, want, got, "split at %d", i)
		}
	})

	t.Run("every pair of split points", func(t *testing.T) {
		t.Parallel()
		for i := 0; i <= len(input); i++ {
			for j := i; j <= len(input); j++ {
				got := decodeChunks(input[:i], input[i:j], input[j:])
				require.Equal(t, want, got, "split at %d,%d", i, j)
			}
		}
	})

	t.Run("byte at a time", func(t *testing.T) {
		t.Parallel()
		chunks := make([][]byte, len(input))
		for i := range input {
			chunks[i] = input[i : i+1]
		}
		assert.Equal(t, want, decodeChunks(chunks...))
	})
}

func TestDecoder_Flush(t *testing.T) {
	t.Parallel()

	t.Run("emits an unterminated data line", func(t *testing.T) {
		t.Parallel()
		var dec sse.Decoder
		assert.Empty(t, slices.Collect(dec.Feed([]byte("data: last"))))
		assert.Equal(t, len("data: last"), dec.Buffered())

		f, ok := dec.Flush()
		require.True(t, ok)
		assert.Equal(t, "last", f.Payload)
		assert.Equal(t, 0, dec.Buffered())
	})

	t.Run("drops an unterminated non-data line", func(t *testing.T) {
		t.Parallel()
		var dec sse.Decoder
		_ = slices.Collect(dec.Feed([]byte("data: a\n: comment")))
		_, ok := dec.Flush()
		assert.False(t, ok)
	})

	t.Run("empty decoder", func(t *testing.T) {
		t.Parallel()
		var dec sse.Decoder
		_, ok := dec.Flush()
		assert.False(t, ok)
	})
}

func TestDecoder_MaxLine(t *testing.T) {
	t.Parallel()

	t.Run("a tail at the limit is kept", func(t *testing.T) {
		t.Parallel()
		dec := sse.Decoder{MaxLine: 10}
		_ = slices.Collect(dec.Feed([]byte("data: ")))
		_ = slices.Collect(dec.Feed([]byte("abcd")))
		require.NoError(t, dec.Err())
		assert.Equal(t, 10, dec.Buffered())
		assert.Equal(t, []string{"abcd"}, payloads(slices.Collect(dec.Feed([]byte("\n")))))
	})

	t.Run("a growing line fails once it passes the limit", func(t *testing.T) {
		t.Parallel()
		dec := sse.Decoder{MaxLine: 10}
		for _, c := range []string{"data: ", "abcd", "e"} {
			_ = slices.Collect(dec.Feed([]byte(c)))
		}
		assert.ErrorIs(t, dec.Err(), sse.ErrLineTooLong)
		assert.Equal(t, 0, dec.Buffered())
		assert.Empty(t, slices.Collect(dec.Feed([]byte("\ndata: ok\n"))))
	})

	t.Run("frames before an overlong tail are still yielded", func(t *testing.T) {
		t.Parallel()
		dec := sse.Decoder{MaxLine: 10}
		frames := dec.Feed([]byte("data: a\ndata: " + strings.Repeat("x", 20)))
		assert.Equal(t, []string{"a"}, payloads(slices.Collect(frames)))
		assert.ErrorIs(t, dec.Err(), sse.ErrLineTooLong)
	})

	t.Run("zero value uses the default limit", func(t *testing.T) {
		t.Parallel()
		var dec sse.Decoder
		_ = slices.Collect(dec.Feed([]byte(strings.Repeat("x", sse.MaxLineSize))))
		require.NoError(t, dec.Err())
		_ = slices.Collect(dec.Feed([]byte("x")))
		assert.ErrorIs(t, dec.Err(), sse.ErrLineTooLong)
	})
}
