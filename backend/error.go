package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/parley"
)

// maxErrorBody caps how much of a failed response is kept.
const maxErrorBody = 4 << 10

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Unwrap reports ErrTransport, and ErrUnauthorized for 401.
func (e *StatusError) Unwrap() []error {
	if e.StatusCode == http.StatusUnauthorized {
		return []error{parley.ErrUnauthorized, parley.ErrTransport}
	}
	return []error{parley.ErrTransport}
}

// errorResponse covers the {"error": "..."} and {"message": "..."} shapes
// the service uses for failures.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func parseHTTPError(resp *http.Response) *StatusError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	body := strings.TrimSpace(string(data))
	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil {
		switch {
		case er.Error != "":
			body = er.Error
		case er.Message != "":
			body = er.Message
		}
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: body}
}
