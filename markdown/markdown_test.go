package markdown_test

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/markdown"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func TestMain(m *testing.M) {
	// Force ANSI output so styling is observable.
	lipgloss.SetColorProfile(termenv.ANSI)
	os.Exit(m.Run())
}

func TestRender(t *testing.T) {
	t.Parallel()
	r := markdown.New(parley.DefaultTheme())

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", r.Render("", 80))
	})

	t.Run("plain paragraph", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "hello world", stripANSI(r.Render("hello world", 80)))
	})

	t.Run("paragraphs are separated by a blank line", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "one\n\ntwo", stripANSI(r.Render("one\n\ntwo", 80)))
	})

	t.Run("soft line breaks join", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "one two", stripANSI(r.Render("one\ntwo", 80)))
	})

	t.Run("wraps prose to width", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(r.Render(strings.Repeat("word ", 20), 20))
		for _, line := range strings.Split(out, "\n") {
			assert.LessOrEqual(t, lipgloss.Width(line), 20)
		}
		assert.Greater(t, strings.Count(out, "\n"), 2)
	})

	t.Run("heading is styled", func(t *testing.T) {
		t.Parallel()
		heading := r.Render("# Title", 80)
		assert.Equal(t, "# Title", stripANSI(heading))
		assert.NotEqual(t, heading, stripANSI(heading))
	})

	t.Run("emphasis keeps text", func(t *testing.T) {
		t.Parallel()
		out := r.Render("**bold** and *italic* and ~~gone~~", 80)
		assert.Equal(t, "bold and italic and gone", stripANSI(out))
	})

	t.Run("code block keeps lines verbatim", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(r.Render("```go\nfunc main() {\n  x := 1\n}\n```", 10))
		assert.Contains(t, out, "go\n")
		assert.Contains(t, out, "│ func main() {")
		assert.Contains(t, out, "│   x := 1")
	})

	t.Run("unterminated fence renders what has arrived", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(r.Render("Here:\n```\nline one", 80))
		assert.Contains(t, out, "Here:")
		assert.Contains(t, out, "│ line one")
	})

	t.Run("lists", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "• a\n• b", stripANSI(r.Render("- a\n- b", 80)))
		assert.Equal(t, "3. x\n4. y", stripANSI(r.Render("3. x\n4. y", 80)))
	})

	t.Run("nested list is indented", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(r.Render("- a\n  - b", 80))
		assert.Equal(t, "• a\n  • b", out)
	})

	t.Run("task list", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(r.Render("- [x] done\n- [ ] todo", 80))
		assert.Equal(t, "• [x] done\n• [ ] todo", out)
	})

	t.Run("blockquote gets a gutter", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "│ quoted", stripANSI(r.Render("> quoted", 80)))
	})

	t.Run("link shows destination", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(r.Render("[docs](https://go.dev)", 80))
		assert.Equal(t, "docs (https://go.dev)", out)
	})

	t.Run("table columns align", func(t *testing.T) {
		t.Parallel()
		out := stripANSI(r.Render("| a | bb |\n|---|---|\n| ccc | d |", 80))
		assert.Equal(t, "a   │ bb\nccc │ d", out)
	})
}

func TestRender_Convenience(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "x", stripANSI(markdown.New(parley.DefaultTheme()).Render("x", 0)))
}
