package bubbletea

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/markdown"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the parley TUI. It renders whatever
// the latest session snapshot says and never edits the transcript itself.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript area. Exported for test access.
	Viewport viewport.Model

	session Session
	styles  Styles
	md      *markdown.Renderer

	snap   parley.Snapshot
	blocks map[string]MessageBlock

	submitting bool   // a Submit command is outstanding
	historyOp  string // label of the outstanding history command, if any
	notice     string
	err        error
	ready      bool
}

// New creates a new TUI Model for session.
func New(session Session, theme parley.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "› "
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:     ti,
		session:   session,
		styles:    NewStyles(theme),
		md:        markdown.New(theme),
		snap:      session.Snapshot(),
		blocks:    make(map[string]MessageBlock),
		historyOp: "Loading history...", // Init loads the stored conversation.
	}
}

// Busy reports whether a reply is in flight.
func (m Model) Busy() bool {
	return m.submitting || m.snap.State.Status.Active()
}

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Snapshot returns the snapshot the model last rendered.
func (m Model) Snapshot() parley.Snapshot { return m.snap }

// Init implements tea.Model. The stored conversation is loaded on start.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, loadHistory(m.session))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		return m.applySnapshot(msg.Snapshot), nil

	case SubmitDoneMsg:
		m.submitting = false
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		m = m.applySnapshot(m.session.Snapshot())
		cmd := m.Input.Focus()
		return m, cmd

	case HistoryDoneMsg:
		m.historyOp = ""
		m.err = msg.Err
		if msg.Err == nil && msg.Cleared {
			m.notice = "History cleared"
		}
		return m.applySnapshot(m.session.Snapshot()), nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = max(msg.Width-runewidth.StringWidth(m.Input.Prompt)-1, 1)
	m.refresh()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.Busy() {
			m.session.Cancel()
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.Busy() {
			m.session.Cancel()
		}
		return m, nil

	case tea.KeyEnter:
		if m.Busy() || m.historyOp != "" {
			return m, nil
		}
		text := m.Input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.Input.SetValue("")
		m.Input.Blur()
		m.err = nil
		m.notice = ""
		m.submitting = true
		return m, submit(m.session, text)

	case tea.KeyCtrlR:
		if m.historyOp != "" {
			return m, nil
		}
		m.historyOp = "Loading history..."
		m.err = nil
		m.notice = ""
		return m, loadHistory(m.session)

	case tea.KeyCtrlL:
		if m.historyOp != "" {
			return m, nil
		}
		m.historyOp = "Clearing history..."
		m.err = nil
		m.notice = ""
		return m, clearHistory(m.session)
	}

	// Forward non-character keys to the viewport for scrolling; 'j'/'k'
	// and friends are text while typing.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes && msg.Type != tea.KeySpace {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if !m.Busy() {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// applySnapshot makes s the rendered snapshot and scrolls to the newest
// message.
func (m Model) applySnapshot(s parley.Snapshot) Model {
	m.snap = s
	live := make(map[string]bool, s.Transcript.Len())
	for i := range s.Transcript.Len() {
		msg := s.Transcript.At(i)
		live[msg.ID] = true
		if b, ok := m.blocks[msg.ID]; ok {
			b.Sync(msg)
			continue
		}
		m.blocks[msg.ID] = newBlock(msg, m.md, m.styles)
	}
	for id := range m.blocks {
		if !live[id] {
			delete(m.blocks, id)
		}
	}
	m.refresh()
	return m
}

// refresh re-renders the viewport and follows the newest content.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
}

func (m Model) renderContent() string {
	t := m.snap.Transcript
	if t.Len() == 0 {
		return m.styles.Muted.Render("No messages yet. Say hello!")
	}
	var b strings.Builder
	width := m.Viewport.Width
	for i := range t.Len() {
		msg := t.At(i)
		if i > 0 {
			b.WriteString("\n\n")
		}
		block, ok := m.blocks[msg.ID]
		if !ok {
			block = newBlock(msg, m.md, m.styles)
		}
		if msg.Role == parley.RoleAssistant {
			b.WriteString(m.styles.Assistant.Render("Assistant"))
			b.WriteString("\n")
		}
		b.WriteString(block.View(width))
	}
	return b.String()
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	var line string
	switch {
	case m.err != nil:
		return m.styles.Error.Render(truncate(errorText(m.err), width))
	case m.historyOp != "":
		line = m.historyOp
	case m.snap.State.Status == parley.SessionSending || (m.submitting && !m.snap.State.Status.Active()):
		line = "Sending... (Esc to stop)"
	case m.snap.State.Status == parley.SessionStreaming:
		line = "Streaming... (Esc to stop)"
	case m.notice != "":
		return m.styles.Success.Render(truncate(m.notice, width))
	default:
		line = "Enter to send · Ctrl+R reload · Ctrl+L clear history · Ctrl+C to quit"
	}
	return m.styles.Muted.Render(truncate(line, width))
}

// truncate shortens s to at most width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func submit(s Session, text string) tea.Cmd {
	return func() tea.Msg {
		return SubmitDoneMsg{Err: s.Submit(context.Background(), text)}
	}
}

func loadHistory(s Session) tea.Cmd {
	return func() tea.Msg {
		return HistoryDoneMsg{Err: s.LoadHistory(context.Background())}
	}
}

func clearHistory(s Session) tea.Cmd {
	return func() tea.Msg {
		return HistoryDoneMsg{Cleared: true, Err: s.ClearHistory(context.Background())}
	}
}
