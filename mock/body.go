package mock

import "io"

// Interface compliance check.
var _ io.ReadCloser = (*Body)(nil)

// Body is a test double for a response body.
// ReadFn panics when nil. CloseFn is nil-safe because callers always
// defer Close.
type Body struct {
	ReadFn  func(p []byte) (int, error)
	CloseFn func() error
}

// Read delegates to ReadFn.
func (b *Body) Read(p []byte) (int, error) {
	return b.ReadFn(p)
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (b *Body) Close() error {
	if b.CloseFn == nil {
		return nil
	}
	return b.CloseFn()
}
