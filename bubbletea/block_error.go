package bubbletea

import (
	"errors"
	"fmt"

	"github.com/fwojciec/parley"
)

// errorText describes err for the status line. Known failure kinds get a
// hint about what to do next.
func errorText(err error) string {
	switch {
	case errors.Is(err, parley.ErrUnauthorized):
		return "Signed out: the server rejected the token. Save a new one and retry."
	case errors.Is(err, parley.ErrHistoryLoad):
		return fmt.Sprintf("Could not load history (Ctrl+R to retry): %v", err)
	case errors.Is(err, parley.ErrHistoryClear):
		return fmt.Sprintf("Could not clear history: %v", err)
	case errors.Is(err, parley.ErrTransport):
		return fmt.Sprintf("Connection problem: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
