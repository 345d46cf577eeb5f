// Package mock provides test doubles for parley interfaces using function
// fields.
package mock

import (
	"context"
	"io"

	"github.com/fwojciec/parley"
)

// Interface compliance check.
var _ parley.Backend = (*Backend)(nil)

// Backend is a test double for parley.Backend.
// Set the function fields for the methods you need; calling a method whose
// field is nil panics to catch missing setup.
type Backend struct {
	SendMessageFn  func(ctx context.Context, req parley.SendRequest) (io.ReadCloser, error)
	FetchHistoryFn func(ctx context.Context) ([]parley.Message, error)
	ClearHistoryFn func(ctx context.Context, userID string) error
}

// SendMessage delegates to SendMessageFn.
func (b *Backend) SendMessage(ctx context.Context, req parley.SendRequest) (io.ReadCloser, error) {
	return b.SendMessageFn(ctx, req)
}

// FetchHistory delegates to FetchHistoryFn.
func (b *Backend) FetchHistory(ctx context.Context) ([]parley.Message, error) {
	return b.FetchHistoryFn(ctx)
}

// ClearHistory delegates to ClearHistoryFn.
func (b *Backend) ClearHistory(ctx context.Context, userID string) error {
	return b.ClearHistoryFn(ctx, userID)
}
