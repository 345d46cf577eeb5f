package bubbletea

import (
	"strings"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/markdown"
)

var _ MessageBlock = (*AssistantBlock)(nil)

// renderer turns markdown into styled text at a given width.
type renderer interface {
	Render(source string, width int) string
}

// AssistantBlock renders an assistant reply with markdown formatting and
// a status marker while it streams or after it stops early.
// Finalized paragraphs (separated by a blank line) are rendered once per
// width and cached; only the trailing text is rendered again on each delta.
type AssistantBlock struct {
	md     renderer
	styles Styles

	content    string
	status     parley.Status
	stopReason parley.StopReason

	// finalizedRaw is the stable prefix ending at the last blank line
	// outside a code fence.
	finalizedRaw     string
	finalizedByWidth map[int]string
}

// NewAssistantBlock creates an AssistantBlock.
func NewAssistantBlock(md renderer, styles Styles) *AssistantBlock {
	return &AssistantBlock{
		md:               md,
		styles:           styles,
		finalizedByWidth: make(map[int]string),
	}
}

func (b *AssistantBlock) Sync(msg parley.Message) {
	b.status = msg.Status
	b.stopReason = msg.StopReason
	content := markdown.Sanitize(msg.Content)
	if content == b.content {
		return
	}
	if !strings.HasPrefix(content, b.finalizedRaw) {
		b.finalizedRaw = ""
		clear(b.finalizedByWidth)
	}
	b.content = content
	b.promoteFinalized()
}

func (b *AssistantBlock) View(width int) string {
	body := b.body(width)
	marker := b.marker()
	switch {
	case marker == "":
		return body
	case body == "":
		return marker
	default:
		return body + "\n" + marker
	}
}

func (b *AssistantBlock) marker() string {
	switch {
	case b.status == parley.StatusPending:
		return b.styles.Muted.Render("…")
	case b.status == parley.StatusErrored:
		return b.styles.Error.Render("✗ reply failed")
	case b.stopReason == parley.StopAborted:
		return b.styles.Muted.Render("■ stopped")
	default:
		return ""
	}
}

func (b *AssistantBlock) body(width int) string {
	finalized := b.renderFinalized(width)
	trailing := b.trailingRaw()
	if hasUnclosedFence(trailing) {
		// Close the fence for rendering only so partial code displays as code.
		trailing += "\n```"
	}
	if strings.TrimSpace(trailing) == "" {
		return finalized
	}
	rendered := b.md.Render(trailing, width)
	if strings.TrimSpace(rendered) == "" {
		return finalized
	}
	if finalized == "" {
		return rendered
	}
	return strings.TrimRight(finalized, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// promoteFinalized moves the prefix up to the last blank line that is not
// inside a code fence into the cached part.
func (b *AssistantBlock) promoteFinalized() {
	raw := b.content
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != b.finalizedRaw {
				b.finalizedRaw = candidate
				clear(b.finalizedByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *AssistantBlock) renderFinalized(width int) string {
	if width <= 0 || b.finalizedRaw == "" {
		return ""
	}
	if cached, ok := b.finalizedByWidth[width]; ok {
		return cached
	}
	rendered := b.md.Render(b.finalizedRaw, width)
	b.finalizedByWidth[width] = rendered
	return rendered
}

func (b *AssistantBlock) trailingRaw() string {
	if b.finalizedRaw == "" {
		return b.content
	}
	return strings.TrimPrefix(b.content, b.finalizedRaw+"\n\n")
}

// hasUnclosedFence reports an odd number of ``` markers. Triple backticks
// inside inline code are miscounted.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
