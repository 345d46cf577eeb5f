// Package bubbletea provides a Bubble Tea TUI for parley.
package bubbletea

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/parley"
)

// Session is the conversation the TUI drives. *chat.Controller implements
// it. Submit, LoadHistory and ClearHistory block and are only ever called
// from commands; Cancel and Snapshot must be safe to call from Update.
type Session interface {
	Submit(ctx context.Context, text string) error
	Cancel()
	LoadHistory(ctx context.Context) error
	ClearHistory(ctx context.Context) error
	Snapshot() parley.Snapshot
}

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits. Snapshots passed to relay are forwarded to the program
// while it runs. The context is used for graceful shutdown: when cancelled,
// the program quits.
func Run(ctx context.Context, m Model, relay *Relay) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if relay != nil {
		relay.attach(p)
		defer relay.attach(nil)
	}
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// Relay forwards session snapshots to a running program. Its Observe
// method is handed to the session as an observer before the program
// exists; snapshots published while no program is attached are dropped.
type Relay struct {
	mu sync.Mutex
	p  *tea.Program
}

// Observe sends s to the attached program.
func (r *Relay) Observe(s parley.Snapshot) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(SnapshotMsg{Snapshot: s})
	}
}

func (r *Relay) attach(p *tea.Program) {
	r.mu.Lock()
	r.p = p
	r.mu.Unlock()
}

// SnapshotMsg carries a new session snapshot to the model.
type SnapshotMsg struct {
	Snapshot parley.Snapshot
}

// SubmitDoneMsg signals that a Submit call has returned.
type SubmitDoneMsg struct {
	Err error
}

// HistoryDoneMsg signals that a history load or clear has returned.
type HistoryDoneMsg struct {
	Cleared bool
	Err     error
}
