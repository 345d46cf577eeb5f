package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/chat"
	"github.com/fwojciec/parley/markdown"
	"github.com/spf13/cobra"
)

const sendLongDesc = `Send one message and stream the reply to stdout.

The arguments are joined with spaces to form the message. Interrupt
with Ctrl+C to stop the reply; the text received so far is kept.

Examples:
  parley send "What is a goroutine?"
  parley send --base-url http://127.0.0.1:5000/api hello`

func newSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <text>",
		Short: "Send a message and stream the reply",
		Long:  sendLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			p := &replyPrinter{w: out}
			c := a.controller(chat.WithObserver(p.observe))

			// An interrupt cancels through Cancel so the partial reply is
			// reported as stopped rather than failed.
			go func() {
				<-ctx.Done()
				c.Cancel()
			}()

			err := c.Submit(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintln(out)
			if msg, ok := c.Snapshot().Transcript.Last(); ok && msg.StopReason == parley.StopAborted {
				fmt.Fprintln(cmd.ErrOrStderr(), "[stopped]")
			}
			if err != nil {
				return fmt.Errorf("send: %w", hint(err))
			}
			return nil
		},
	}
}

// replyPrinter writes the text appended to the active reply since the
// previous snapshot, stripped of terminal escapes. The controller delivers
// snapshots in order.
type replyPrinter struct {
	w  io.Writer
	id string
	n  int
}

func (p *replyPrinter) observe(s parley.Snapshot) {
	id := s.State.ActiveMessageID
	msg, ok := s.Transcript.Find(id)
	if !ok {
		return
	}
	if id != p.id {
		p.id, p.n = id, 0
	}
	text := markdown.Sanitize(msg.Content)
	if len(text) > p.n {
		io.WriteString(p.w, text[p.n:])
		p.n = len(text)
	}
}

// hint adds what to do next to errors the user can act on.
func hint(err error) error {
	switch {
	case errors.Is(err, parley.ErrUnauthorized):
		return fmt.Errorf("%w (store a new token with \"parley token\")", err)
	case errors.Is(err, parley.ErrTransport):
		return fmt.Errorf("%w (is the backend running? see --base-url)", err)
	default:
		return err
	}
}
