package markdown

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize makes server or user text safe to draw on a terminal. Escape
// sequences are stripped and line endings become "\n"; tabs survive and
// every other control character is dropped. The result of a prefix is a
// prefix of the result, except where an escape sequence is cut short.
func Sanitize(s string) string {
	if !needsSanitize(s) {
		return s
	}
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\r':
			b.WriteByte('\n')
		case r == '\t' || r == '\n':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
		case r >= 0x80 && r <= 0x9f: // C1 controls
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func needsSanitize(s string) bool {
	for _, r := range s {
		if (r < 0x20 && r != '\t' && r != '\n') || r == 0x7f || (r >= 0x80 && r <= 0x9f) {
			return true
		}
	}
	return false
}
