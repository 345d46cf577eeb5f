package sse

import (
	"bytes"
	"errors"
	"iter"
)

// Split segments buf+chunk on newlines. It returns a lazy sequence of the
// frames carried by every complete line, and the unterminated remainder
// that must be passed back as buf with the next chunk.
//
// Lines without the "data: " prefix are discarded. A trailing "\r" is
// stripped so CRLF streams decode the same as LF streams. Neither buf nor
// chunk is retained. Split copies buf on every call and puts no bound on
// the remainder; [Decoder] does both for a running stream.
func Split(buf, chunk []byte) (iter.Seq[Frame], []byte) {
	data := make([]byte, 0, len(buf)+len(chunk))
	data = append(data, buf...)
	data = append(data, chunk...)

	cut := bytes.LastIndexByte(data, '\n')
	if cut < 0 {
		return noFrames, data
	}
	complete := data[:cut+1]
	rest := bytes.Clone(data[cut+1:])

	return func(yield func(Frame) bool) {
		lines := complete
		for len(lines) > 0 {
			i := bytes.IndexByte(lines, '\n')
			line := lines[:i]
			lines = lines[i+1:]
			if f, ok := parseLine(line); ok {
				if !yield(f) {
					return
				}
			}
		}
	}, rest
}

// parseLine returns the frame carried by a single line, if any.
func parseLine(line []byte) (Frame, bool) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	payload, ok := bytes.CutPrefix(line, []byte(dataPrefix))
	if !ok {
		return Frame{}, false
	}
	return Frame{Payload: string(payload)}, true
}

// MaxLineSize is the default limit on a single buffered line.
const MaxLineSize = 1 << 20

// ErrLineTooLong is reported once an unterminated line outgrows the
// decoder's limit.
var ErrLineTooLong = errors.New("sse: line too long")

// Decoder carries the unconsumed tail of a stream between chunks.
// The zero value is ready to use.
type Decoder struct {
	// MaxLine bounds the unterminated tail in bytes. Zero means
	// MaxLineSize.
	MaxLine int

	buf []byte
	err error
}

// Feed appends chunk to the buffered tail and returns the frames completed
// by it. The buffered tail is advanced immediately; the returned sequence
// may be ranged over once, at any time.
//
// Once the tail exceeds MaxLine it is dropped, Err reports
// [ErrLineTooLong] and every later Feed yields nothing.
func (d *Decoder) Feed(chunk []byte) iter.Seq[Frame] {
	if d.err != nil {
		return noFrames
	}
	var frames iter.Seq[Frame]
	if bytes.IndexByte(chunk, '\n') < 0 {
		// Still inside one line: grow the tail in place.
		d.buf = append(d.buf, chunk...)
		frames = noFrames
	} else {
		frames, d.buf = Split(d.buf, chunk)
	}
	if len(d.buf) > d.limit() {
		d.buf = nil
		d.err = ErrLineTooLong
	}
	return frames
}

// Err returns [ErrLineTooLong] if a line outgrew the limit, or nil.
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) limit() int {
	if d.MaxLine > 0 {
		return d.MaxLine
	}
	return MaxLineSize
}

func noFrames(func(Frame) bool) {}

// Flush ends the stream. If the unterminated tail is itself a data line it
// is returned as a final frame. The decoder is empty afterwards.
func (d *Decoder) Flush() (Frame, bool) {
	tail := d.buf
	d.buf = nil
	return parseLine(tail)
}

// Buffered returns the number of bytes held for the next chunk.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}
