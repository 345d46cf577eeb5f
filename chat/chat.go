// Package chat drives one conversation with the assistant backend: it owns
// the transcript, runs at most one streaming reply at a time and publishes
// immutable snapshots to an observer.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Controller is the session controller. Submit, LoadHistory and
// ClearHistory block and are meant to run off the UI goroutine; Cancel,
// Snapshot and State return immediately and are safe from any goroutine.
type Controller struct {
	backend  parley.Backend
	logger   *zap.Logger
	observer func(parley.Snapshot)
	userID   string
	specific bool
	now      func() time.Time
	newID    func() string

	// histMu serializes history operations.
	histMu sync.Mutex

	mu         sync.Mutex
	transcript parley.Transcript
	state      parley.SessionState
	cancel     context.CancelFunc
	cancelled  bool
	busy       bool
	seq        uint64

	// notifyMu guards the delivery queue. The observer runs without it.
	notifyMu   sync.Mutex
	queued     uint64
	queue      []parley.Snapshot
	delivering bool
}

// Option configures a [Controller].
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithObserver sets a callback that receives a snapshot after every
// change, in order. It is called without internal locks held, so it may
// call back into the Controller, including Submit and the history
// operations. Snapshots produced by such a call are delivered after the
// observer returns.
func WithObserver(fn func(parley.Snapshot)) Option {
	return func(c *Controller) { c.observer = fn }
}

// WithUserID sets the user id sent with every message and used to clear
// history.
func WithUserID(id string) Option {
	return func(c *Controller) { c.userID = id }
}

// WithSpecificUser sets the is_specific_user flag sent with every message.
func WithSpecificUser(specific bool) Option {
	return func(c *Controller) { c.specific = specific }
}

// WithClock sets the time source for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator sets how ids for submitted messages are made.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// New creates a Controller with an empty transcript in the idle state.
func New(backend parley.Backend, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Snapshot returns the current transcript and state.
func (c *Controller) Snapshot() parley.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return parley.Snapshot{Transcript: c.transcript, State: c.state}
}

// State returns the current session state.
func (c *Controller) State() parley.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit sends text as a user message and streams the reply into the
// transcript, returning when the stream ends.
//
// Empty or whitespace-only text, or a submit while another reply is in
// flight, fails with [parley.ErrInvalidInput] before anything changes.
// A transport failure marks the reply errored and returns an error
// wrapping [parley.ErrTransport]. A cancelled reply keeps its partial
// content; Submit returns nil if Cancel stopped it and ctx's error if ctx
// did.
func (c *Controller) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("submit: empty message: %w", parley.ErrInvalidInput)
	}

	c.mu.Lock()
	if c.state.Status.Active() {
		status := c.state.Status
		c.mu.Unlock()
		return fmt.Errorf("submit: session is %s: %w", status, parley.ErrInvalidInput)
	}
	if c.busy {
		c.mu.Unlock()
		return fmt.Errorf("submit: history operation in progress: %w", parley.ErrInvalidInput)
	}
	now := c.now()
	user := parley.Message{ID: c.newID(), Role: parley.RoleUser, Content: text, Status: parley.StatusComplete, CreatedAt: now}
	reply := parley.Message{ID: c.newID(), Role: parley.RoleAssistant, Status: parley.StatusPending, CreatedAt: now}
	t, err := c.transcript.Append(user, reply)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("submit: %w", err)
	}
	streamCtx, cancel := context.WithCancel(ctx)
	c.transcript = t
	c.state = parley.SessionState{Status: parley.SessionSending, ActiveMessageID: reply.ID}
	c.cancel = cancel
	c.cancelled = false
	seq, snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(seq, snap)

	defer cancel()

	log := c.logger.With(zap.String("message_id", reply.ID))
	log.Debug("sending", zap.Int("length", len(text)))

	body, err := c.backend.SendMessage(streamCtx, parley.SendRequest{
		UserID:          c.userID,
		Message:         text,
		IsSpecificUser:  c.specific,
		CurrentDateTime: now,
	})
	if err != nil {
		return c.finish(ctx, streamCtx, reply.ID, err)
	}
	defer body.Close()

	c.apply(streamCtx, func() {
		c.state.Status = parley.SessionStreaming
		c.transcript = parley.MarkStreaming(c.transcript, reply.ID)
	})
	log.Debug("streaming")

	r := sse.NewReader(body)
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			return c.finish(ctx, streamCtx, reply.ID, nil)
		}
		if err != nil {
			return c.finish(ctx, streamCtx, reply.ID, fmt.Errorf("read stream: %w: %w", parley.ErrTransport, err))
		}
		evt := sse.Parse(f.Payload)
		switch e := evt.(type) {
		case parley.EventUnrecognized:
			if e.Err != nil {
				log.Warn("dropping malformed frame", zap.String("payload", e.Raw), zap.Error(e.Err))
			} else {
				log.Debug("ignoring frame", zap.String("payload", e.Raw))
			}
			continue
		case parley.EventDone:
			return c.finish(ctx, streamCtx, reply.ID, nil)
		}
		c.apply(streamCtx, func() {
			c.transcript = parley.Reduce(c.transcript, evt, reply.ID)
		})
	}
}

// Cancel stops the reply in flight, if any. The stream's Submit call
// finalizes the transcript and returns shortly after.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Status.Active() {
		return
	}
	c.cancelled = true
	c.cancel()
	c.logger.Debug("cancel requested", zap.String("message_id", c.state.ActiveMessageID))
}

// LoadHistory replaces the transcript with the stored conversation.
// A reply in flight is cancelled first. On failure the transcript is
// emptied and the error wraps [parley.ErrHistoryLoad].
func (c *Controller) LoadHistory(ctx context.Context) error {
	pending := c.quiesce()
	u, err := c.load(ctx)
	c.release(append(pending, u)...)
	return err
}

// ClearHistory deletes the stored conversation and reloads it. A reply in
// flight is cancelled first. If the delete fails the transcript is left as
// it was and the error wraps [parley.ErrHistoryClear].
func (c *Controller) ClearHistory(ctx context.Context) error {
	pending := c.quiesce()
	if err := c.backend.ClearHistory(ctx, c.userID); err != nil {
		c.release(pending...)
		c.logger.Warn("clear history failed", zap.Error(err))
		return fmt.Errorf("%w: %w", parley.ErrHistoryClear, err)
	}
	c.logger.Info("history cleared")
	u, err := c.load(ctx)
	c.release(append(pending, u)...)
	return err
}

// update is a snapshot waiting to be delivered.
type update struct {
	seq  uint64
	snap parley.Snapshot
}

func (c *Controller) load(ctx context.Context) (update, error) {
	msgs, err := c.backend.FetchHistory(ctx)
	var t parley.Transcript
	if err == nil {
		t, err = parley.NewTranscript(msgs...)
	}
	if err != nil {
		c.logger.Warn("load history failed", zap.Error(err))
		t = parley.Transcript{}
		err = fmt.Errorf("%w: %w", parley.ErrHistoryLoad, err)
	} else {
		c.logger.Debug("history loaded", zap.Int("messages", t.Len()))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = t
	c.state = parley.SessionState{Status: parley.SessionIdle}
	seq, snap := c.snapshotLocked()
	return update{seq, snap}, err
}

// quiesce takes the history lock, blocks new submits and ends a reply in
// flight as aborted. That reply's Submit applies nothing once cancelled.
func (c *Controller) quiesce() []update {
	c.histMu.Lock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = true
	if !c.state.Status.Active() {
		return nil
	}
	id := c.state.ActiveMessageID
	c.cancelled = true
	c.cancel()
	c.cancel = nil
	c.transcript = parley.Finish(c.transcript, id, parley.StopAborted)
	c.state.Status = parley.SessionClosed
	c.logger.Info("stream cancelled", zap.String("message_id", id))
	seq, snap := c.snapshotLocked()
	return []update{{seq, snap}}
}

// release undoes quiesce and then delivers pending, so an observer is
// free to start another history operation.
func (c *Controller) release(pending ...update) {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
	c.histMu.Unlock()
	for _, u := range pending {
		c.notify(u.seq, u.snap)
	}
}

// finish ends the reply identified by id. err is nil on a normal end of
// stream.
func (c *Controller) finish(ctx, streamCtx context.Context, id string, err error) error {
	c.mu.Lock()
	if c.cancel == nil || c.state.ActiveMessageID != id {
		// Already ended by a history operation.
		c.mu.Unlock()
		return nil
	}
	var result error
	switch {
	case streamCtx.Err() != nil:
		c.transcript = parley.Finish(c.transcript, id, parley.StopAborted)
		c.state.Status = parley.SessionClosed
		if !c.cancelled && ctx.Err() != nil {
			result = fmt.Errorf("submit: %w", ctx.Err())
		}
		c.logger.Info("stream cancelled", zap.String("message_id", id))
	case err == nil:
		c.transcript = parley.Finish(c.transcript, id, parley.StopEndTurn)
		c.state.Status = parley.SessionClosed
		c.logger.Debug("stream complete", zap.String("message_id", id))
	default:
		c.transcript = parley.MarkErrored(c.transcript, id)
		c.state.Status = parley.SessionFailed
		if !errors.Is(err, parley.ErrTransport) {
			err = fmt.Errorf("%w: %w", parley.ErrTransport, err)
		}
		result = fmt.Errorf("submit: %w", err)
		c.logger.Error("stream failed", zap.String("message_id", id), zap.Error(err))
	}
	c.cancel = nil
	seq, snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(seq, snap)
	return result
}

// apply runs fn under the lock unless streamCtx is already cancelled, so
// nothing is added to a reply once Cancel has returned.
func (c *Controller) apply(streamCtx context.Context, fn func()) {
	c.mu.Lock()
	if streamCtx.Err() != nil {
		c.mu.Unlock()
		return
	}
	before := c.transcript
	status := c.state.Status
	fn()
	if c.transcript.Same(before) && c.state.Status == status {
		c.mu.Unlock()
		return
	}
	seq, snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(seq, snap)
}

func (c *Controller) snapshotLocked() (uint64, parley.Snapshot) {
	c.seq++
	return c.seq, parley.Snapshot{Transcript: c.transcript, State: c.state}
}

// notify queues snap unless a newer snapshot is already queued, then
// delivers the queue unless another goroutine is doing so. Only one
// goroutine runs the observer at a time; the others return at once and
// their snapshots go out in seq order from the delivering one.
func (c *Controller) notify(seq uint64, snap parley.Snapshot) {
	if c.observer == nil {
		return
	}
	c.notifyMu.Lock()
	if seq <= c.queued {
		c.notifyMu.Unlock()
		return
	}
	c.queued = seq
	c.queue = append(c.queue, snap)
	if c.delivering {
		c.notifyMu.Unlock()
		return
	}
	c.delivering = true
	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue[0] = parley.Snapshot{}
		c.queue = c.queue[1:]
		c.notifyMu.Unlock()
		c.observer(next)
		c.notifyMu.Lock()
	}
	c.queue = nil
	c.delivering = false
	c.notifyMu.Unlock()
}
