package bubbletea

import "github.com/fwojciec/parley"

// MessageBlock is a renderable transcript entry.
// View takes a width parameter so the root model controls layout and
// blocks are testable in isolation.
type MessageBlock interface {
	// Sync updates the block from the latest version of its message.
	Sync(msg parley.Message)
	View(width int) string
}

// newBlock returns the block type for msg's role.
func newBlock(msg parley.Message, r renderer, styles Styles) MessageBlock {
	var b MessageBlock
	if msg.Role == parley.RoleUser {
		b = NewUserMessageBlock(styles)
	} else {
		b = NewAssistantBlock(r, styles)
	}
	b.Sync(msg)
	return b
}
