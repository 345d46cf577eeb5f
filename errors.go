package parley

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a message or transcript failed validation.
	ErrValidation = errors.New("validation error")

	// ErrInvalidInput indicates a submission was rejected before any network
	// call: empty text, or a session is already in flight.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFrameParse indicates a single frame payload could not be parsed.
	// It never aborts a stream.
	ErrFrameParse = errors.New("frame parse error")

	// ErrTransport indicates the connection failed to open, dropped
	// mid-stream, or returned a non-success status.
	ErrTransport = errors.New("transport error")

	// ErrUnauthorized indicates the backend rejected the bearer token.
	// Errors wrapping it also wrap ErrTransport.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrHistoryLoad indicates the history fetch failed.
	ErrHistoryLoad = errors.New("history load failed")

	// ErrHistoryClear indicates the history delete failed.
	ErrHistoryClear = errors.New("history clear failed")

	// ErrNoToken indicates no bearer token is available.
	ErrNoToken = errors.New("no token")
)
