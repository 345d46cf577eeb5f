package bubbletea_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/parley"
	bt "github.com/fwojciec/parley/bubbletea"
	"github.com/stretchr/testify/assert"
)

func userBlock(text string) *bt.UserMessageBlock {
	b := bt.NewUserMessageBlock(bt.NewStyles(parley.DefaultTheme()))
	b.Sync(userMsg("u1", text))
	return b
}

func TestUserMessageBlock_View(t *testing.T) {
	t.Parallel()

	t.Run("renders text inside a bubble", func(t *testing.T) {
		t.Parallel()
		view := userBlock("hello world").View(80)
		assert.Contains(t, view, "hello world")
		assert.Contains(t, view, "╭")
		assert.Contains(t, view, "╯")
	})

	t.Run("aligns the bubble to the right edge", func(t *testing.T) {
		t.Parallel()
		view := userBlock("test").View(40)
		for _, line := range strings.Split(view, "\n") {
			assert.Equal(t, 40, lipgloss.Width(line))
			assert.True(t, strings.HasPrefix(line, " "), "line %q should be left padded", line)
		}
	})

	t.Run("bubble is as narrow as its text", func(t *testing.T) {
		t.Parallel()
		view := userBlock("hi").View(80)
		first := strings.Split(view, "\n")[0]
		// Two text cells, one cell of padding and one border cell per side.
		assert.Equal(t, 6, lipgloss.Width(strings.TrimLeft(first, " ")))
	})

	t.Run("wraps long text to three quarters of the width", func(t *testing.T) {
		t.Parallel()
		longText := "short words that keep going and going beyond the viewport width easily"
		view := userBlock(longText).View(40)
		assert.Contains(t, view, "easily")
		lines := strings.Split(view, "\n")
		assert.Greater(t, len(lines), 3)
		for _, line := range lines {
			assert.LessOrEqual(t, lipgloss.Width(strings.TrimLeft(line, " ")), 30)
		}
	})

	t.Run("measures wide characters by cell width", func(t *testing.T) {
		t.Parallel()
		view := userBlock("日本").View(80)
		first := strings.Split(view, "\n")[0]
		assert.Equal(t, 8, lipgloss.Width(strings.TrimLeft(first, " ")))
	})

	t.Run("sync replaces the text", func(t *testing.T) {
		t.Parallel()
		b := userBlock("before")
		b.Sync(userMsg("u1", "after"))
		view := b.View(80)
		assert.Contains(t, view, "after")
		assert.NotContains(t, view, "before")
	})

	t.Run("zero width renders nothing", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, userBlock("hello").View(0))
	})
}
