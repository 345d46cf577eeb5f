package sse

import (
	"errors"
	"io"
)

const defaultChunkSize = 4096

// Reader pulls frames from an io.Reader one at a time.
//
// Next reads fixed-size chunks from the source and feeds them through a
// Decoder. It returns io.EOF once the source is exhausted and the final
// unterminated line, if it was a data line, has been returned. Any other
// source error is returned as-is after the frames completed before it;
// a partial line at the point of failure is discarded.
type Reader struct {
	src     io.Reader
	dec     Decoder
	chunk   []byte
	pending []Frame
	err     error
}

// NewReader returns a Reader with the default chunk size.
func NewReader(src io.Reader) *Reader {
	return NewReaderSize(src, defaultChunkSize)
}

// NewReaderSize returns a Reader that reads at most size bytes per chunk.
func NewReaderSize(src io.Reader, size int) *Reader {
	if size <= 0 {
		size = defaultChunkSize
	}
	return &Reader{src: src, chunk: make([]byte, size)}
}

// Buffer sets the longest line the Reader will hold, in bytes. It must be
// called before the first Next.
func (r *Reader) Buffer(size int) {
	r.dec.MaxLine = size
}

// Next returns the next frame in arrival order.
func (r *Reader) Next() (Frame, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return Frame{}, r.err
		}
		n, err := r.src.Read(r.chunk)
		if n > 0 {
			for f := range r.dec.Feed(r.chunk[:n]) {
				r.pending = append(r.pending, f)
			}
			if err := r.dec.Err(); err != nil {
				r.err = err
				continue
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if f, ok := r.dec.Flush(); ok {
					r.pending = append(r.pending, f)
				}
				err = io.EOF
			}
			r.err = err
		}
	}
	f := r.pending[0]
	r.pending = r.pending[1:]
	return f, nil
}
