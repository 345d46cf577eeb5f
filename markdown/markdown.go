// Package markdown renders assistant replies as ANSI-styled terminal text.
// It parses with goldmark (GitHub flavored) and styles with lipgloss.
//
// Replies are rendered again on every delta, so the renderer must accept
// incomplete documents: an unclosed fence or emphasis simply renders as
// whatever goldmark makes of it so far.
package markdown

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/parley"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const defaultWidth = 80

// Renderer holds the parser and styles for one theme. It is safe for
// concurrent use.
type Renderer struct {
	parser parser.Parser

	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	link      lipgloss.Style
	code      lipgloss.Style
	codeBlock lipgloss.Style
}

// New returns a Renderer for theme.
func New(theme parley.Theme) *Renderer {
	return &Renderer{
		parser:    goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser(),
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		heading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		link:      lipgloss.NewStyle().Underline(true),
		code:      lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)),
		codeBlock: lipgloss.NewStyle().Background(ansiColor(theme.CodeBg)),
	}
}

// Render returns source as styled text. Prose is wrapped to width; code
// blocks keep their lines as written.
func (r *Renderer) Render(source string, width int) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	src := []byte(source)
	doc := r.parser.Parse(text.NewReader(src))

	var buf bytes.Buffer
	r.blocks(&buf, doc, src, width, "")
	return strings.TrimRight(buf.String(), "\n")
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// blocks renders the block children of node separated by blank lines.
// prefix is written at the start of every output line.
func (r *Renderer) blocks(buf *bytes.Buffer, node ast.Node, src []byte, width int, prefix string) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(buf, c, src, width, prefix)
		if c.NextSibling() != nil {
			buf.WriteString(strings.TrimRight(prefix, " ") + "\n")
		}
	}
}

func (r *Renderer) block(buf *bytes.Buffer, node ast.Node, src []byte, width int, prefix string) {
	inner := width - lipgloss.Width(prefix)
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		writeLines(buf, prefix, wrap(r.inlines(n, src), inner))

	case *ast.Heading:
		line := r.heading.Render(strings.Repeat("#", n.Level) + " " + r.inlines(n, src))
		writeLines(buf, prefix, wrap(line, inner))

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(src)); lang != "" {
			writeLines(buf, prefix, r.muted.Render(lang))
		}
		r.codeLines(buf, n, src, prefix)

	case *ast.CodeBlock:
		r.codeLines(buf, n, src, prefix)

	case *ast.Blockquote:
		r.blocks(buf, n, src, width, prefix+r.muted.Render("│")+" ")

	case *ast.List:
		r.list(buf, n, src, width, prefix)

	case *ast.ThematicBreak:
		writeLines(buf, prefix, r.muted.Render(strings.Repeat("─", max(inner, 3))))

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			writeLines(buf, prefix, strings.TrimRight(string(seg.Value(src)), "\n"))
		}

	case *extast.Table:
		r.table(buf, n, src, prefix)

	default:
		r.blocks(buf, node, src, width, prefix)
	}
}

// codeLines writes a code block verbatim behind a gutter.
func (r *Renderer) codeLines(buf *bytes.Buffer, node ast.Node, src []byte, prefix string) {
	gutter := prefix + r.muted.Render("│") + " "
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(src)), "\n")
		buf.WriteString(gutter + r.codeBlock.Render(line) + "\n")
	}
}

func (r *Renderer) list(buf *bytes.Buffer, list *ast.List, src []byte, width int, prefix string) {
	n := list.Start
	for c := list.FirstChild(); c != nil; c = c.NextSibling() {
		marker := "• "
		if list.IsOrdered() {
			marker = strconv.Itoa(n) + ". "
			n++
		}
		// Item children are stacked without blank lines so nested lists
		// stay tight.
		var item bytes.Buffer
		for ic := c.FirstChild(); ic != nil; ic = ic.NextSibling() {
			r.block(&item, ic, src, width-lipgloss.Width(prefix)-len(marker), "")
		}
		lines := strings.Split(strings.TrimRight(item.String(), "\n"), "\n")
		pad := strings.Repeat(" ", len(marker))
		for i, line := range lines {
			if i == 0 {
				buf.WriteString(prefix + marker + line + "\n")
				continue
			}
			buf.WriteString(prefix + pad + line + "\n")
		}
	}
}

// table renders a GFM table as aligned rows with a bold header.
func (r *Renderer) table(buf *bytes.Buffer, table *extast.Table, src []byte, prefix string) {
	var rows [][]string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, r.inlines(cell, src))
		}
		rows = append(rows, cells)
	}
	var widths []int
	for _, cells := range rows {
		for i, c := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}
	sep := " " + r.muted.Render("│") + " "
	for i, cells := range rows {
		padded := make([]string, len(cells))
		for j, c := range cells {
			padded[j] = c + strings.Repeat(" ", widths[j]-lipgloss.Width(c))
		}
		line := strings.TrimRight(strings.Join(padded, sep), " ")
		if i == 0 {
			line = r.bold.Render(line)
		}
		buf.WriteString(prefix + line + "\n")
	}
}

// inlines renders the inline children of node as one styled string.
func (r *Renderer) inlines(node ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.inline(&buf, c, src)
	}
	return buf.String()
}

func (r *Renderer) inline(buf *bytes.Buffer, node ast.Node, src []byte) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(src))
		switch {
		case n.HardLineBreak():
			buf.WriteByte('\n')
		case n.SoftLineBreak():
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		if n.Level >= 2 {
			buf.WriteString(r.bold.Render(r.inlines(n, src)))
		} else {
			buf.WriteString(r.italic.Render(r.inlines(n, src)))
		}

	case *ast.CodeSpan:
		buf.WriteString(r.code.Render(r.inlines(n, src)))

	case *ast.Link:
		buf.WriteString(r.link.Render(r.inlines(n, src)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		buf.WriteString(r.link.Render(string(n.URL(src))))

	case *ast.Image:
		buf.WriteString(r.muted.Render("[image: " + r.inlines(n, src) + "]"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(src))
		}

	case *extast.Strikethrough:
		buf.WriteString(r.strike.Render(r.inlines(n, src)))

	case *extast.TaskCheckBox:
		if n.IsChecked {
			buf.WriteString("[x] ")
		} else {
			buf.WriteString("[ ] ")
		}

	default:
		buf.WriteString(r.inlines(node, src))
	}
}

func wrap(s string, width int) string {
	if width < 10 {
		width = 10
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func writeLines(buf *bytes.Buffer, prefix, s string) {
	for _, line := range strings.Split(s, "\n") {
		buf.WriteString(prefix + strings.TrimRight(line, " ") + "\n")
	}
}
