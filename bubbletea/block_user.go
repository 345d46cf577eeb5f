package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/markdown"
	"github.com/rivo/uniseg"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

// UserMessageBlock renders a user message as a right-aligned bubble no
// wider than its text.
type UserMessageBlock struct {
	text   string
	styles Styles
}

// NewUserMessageBlock creates a UserMessageBlock.
func NewUserMessageBlock(styles Styles) *UserMessageBlock {
	return &UserMessageBlock{styles: styles}
}

func (b *UserMessageBlock) Sync(msg parley.Message) {
	b.text = markdown.Sanitize(msg.Content)
}

func (b *UserMessageBlock) View(width int) string {
	if width <= 0 {
		return ""
	}
	frame := b.styles.UserBubble.GetHorizontalFrameSize()
	// The bubble takes at most three quarters of the row.
	limit := max(width*3/4-frame, 1)
	inner := 0
	for _, line := range strings.Split(b.text, "\n") {
		inner = max(inner, uniseg.StringWidth(line))
	}
	inner = min(inner, limit)

	bubble := b.styles.UserBubble.Width(inner + b.styles.UserBubble.GetHorizontalPadding()).Render(b.text)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
}
