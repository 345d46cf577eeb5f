package parley

import (
	"context"
	"io"
)

// Backend is the transport to the assistant service. Implementations own
// token attachment and HTTP status handling; the session controller only
// sees bodies and errors.
type Backend interface {
	// SendMessage posts a user message and returns the streaming response
	// body. Cancelling ctx must unblock reads on the returned body.
	SendMessage(ctx context.Context, req SendRequest) (io.ReadCloser, error)

	// FetchHistory returns the stored conversation in order.
	FetchHistory(ctx context.Context) ([]Message, error)

	// ClearHistory deletes all stored conversation for userID.
	ClearHistory(ctx context.Context, userID string) error
}

// TokenSource supplies the current bearer token.
type TokenSource interface {
	Token() (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func() (string, error)

// Token calls f.
func (f TokenSourceFunc) Token() (string, error) { return f() }

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns the token, or ErrNoToken when it is empty.
func (s StaticToken) Token() (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// UnauthorizedHandler is called when the backend rejects the token.
// It is responsible for clearing credentials; the caller still treats the
// failure as a transport error.
type UnauthorizedHandler func(err error)
