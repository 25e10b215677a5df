// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation sequences a chat: it records the user's message,
// sends it, and records the reply or the failure.
//
// A Controller serves one conversation. Begin and Complete split a cycle
// around the network call so event loops can run the call elsewhere; Submit
// runs a whole cycle in the caller's goroutine.
package conversation

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/jeranaias/robo-tui/internal/model"
	"github.com/jeranaias/robo-tui/internal/session"
)

const (
	// BannerPrefix starts the error banner after a failed send.
	BannerPrefix = "Sorry, I ran into an issue: "

	// FailurePrefix starts the bot message logged after a failed send.
	FailurePrefix = "Sorry, I couldn't get a response. Please try again. Error: "
)

// Phase is whether a request is outstanding.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInFlight
)

// String returns the phase name.
func (p Phase) String() string {
	if p == PhaseInFlight {
		return "in-flight"
	}
	return "idle"
}

// Sender delivers one message and returns one reply.
type Sender interface {
	Send(ctx context.Context, text string) (*model.Reply, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, text string) (*model.Reply, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, text string) (*model.Reply, error) {
	return f(ctx, text)
}

// Turn identifies an accepted submission awaiting completion.
type Turn struct {
	seq  uint64
	Text string
}

// ChangeKind says what a Change reports.
type ChangeKind int

const (
	// ChangeMessage reports an appended message.
	ChangeMessage ChangeKind = iota
	// ChangeState reports a phase or banner change.
	ChangeState
)

// Change is delivered to listeners after the controller's state changes.
type Change struct {
	Kind     ChangeKind
	Message  *model.Message
	InFlight bool
	Error    string
}

// Listener observes changes. It is called without the controller's lock held.
type Listener func(Change)

// Controller holds the log, the phase and the banner of one conversation.
// It is safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	sender    Sender
	log       *model.Log
	phase     Phase
	seq       uint64
	current   uint64
	lastError string
	advisory  bool
	listeners []Listener
	logger    *slog.Logger
}

// New creates a controller whose log holds only the greeting.
func New(sender Sender) *Controller {
	return NewWithLog(sender, model.NewLog())
}

// NewWithLog creates a controller around an existing log.
func NewWithLog(sender Sender, log *model.Log) *Controller {
	return &Controller{
		sender: sender,
		log:    log,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger.
func (c *Controller) WithLogger(l *slog.Logger) *Controller {
	c.logger = l
	return c
}

// OnChange registers a listener.
func (c *Controller) OnChange(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// =============================================================================
// CYCLE
// =============================================================================

// Begin accepts input and starts a cycle. It returns false and changes
// nothing if the input is blank or a cycle is already running. On success
// the user's message is logged with the input exactly as typed and the
// banner is cleared.
func (c *Controller) Begin(input string) (Turn, bool) {
	c.mu.Lock()
	if strings.TrimSpace(input) == "" || c.phase == PhaseInFlight {
		c.mu.Unlock()
		return Turn{}, false
	}

	msg := model.NewUserMessage(input)
	c.log.Append(msg)
	c.seq++
	c.current = c.seq
	c.phase = PhaseInFlight
	c.lastError = ""
	c.advisory = false
	turn := Turn{seq: c.seq, Text: input}
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners, Change{Kind: ChangeMessage, Message: msg, InFlight: true})
	notify(listeners, Change{Kind: ChangeState, InFlight: true})
	return turn, true
}

// Complete finishes the cycle started by turn. A reply is logged as a bot
// message with its citations; an error sets the banner and logs a failure
// message. Either way the controller returns to idle. A turn that is not the
// one in flight is ignored.
func (c *Controller) Complete(turn Turn, reply *model.Reply, err error) {
	c.mu.Lock()
	if c.phase != PhaseInFlight || turn.seq != c.current {
		c.mu.Unlock()
		c.logger.Warn("ignoring stale completion", "turn", turn.seq)
		return
	}

	var msg *model.Message
	if err == nil && (reply == nil || strings.TrimSpace(reply.Text) == "") {
		err = errNoReply
	}
	if err != nil {
		desc := session.Describe(err)
		c.lastError = BannerPrefix + desc
		msg = model.NewBotMessage(FailurePrefix+desc, nil)
		c.logger.Error("send failed", "error", err)
	} else {
		msg = model.NewBotMessage(reply.Text, reply.Sources)
		c.logger.Debug("reply received", "sources", len(reply.Sources))
	}
	c.log.Append(msg)
	c.phase = PhaseIdle
	c.current = 0
	lastError := c.lastError
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners, Change{Kind: ChangeMessage, Message: msg})
	notify(listeners, Change{Kind: ChangeState, Error: lastError})
}

// Send runs the network call for turn. It does not touch controller state.
func (c *Controller) Send(ctx context.Context, turn Turn) (*model.Reply, error) {
	return c.sender.Send(ctx, turn.Text)
}

// Submit runs a whole cycle and blocks until it finishes. It reports whether
// the input was accepted.
func (c *Controller) Submit(ctx context.Context, input string) bool {
	turn, ok := c.Begin(input)
	if !ok {
		return false
	}
	reply, err := c.Send(ctx, turn)
	c.Complete(turn, reply, err)
	return true
}

// =============================================================================
// BANNER
// =============================================================================

// SetAdvisory shows a location advisory in the banner. It does not replace
// an error from a send.
func (c *Controller) SetAdvisory(text string) {
	c.mu.Lock()
	if c.lastError != "" && !c.advisory {
		c.mu.Unlock()
		return
	}
	c.lastError = text
	c.advisory = text != ""
	inFlight := c.phase == PhaseInFlight
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners, Change{Kind: ChangeState, InFlight: inFlight, Error: text})
}

// ClearAdvisory removes a location advisory from the banner, if one is shown.
func (c *Controller) ClearAdvisory() {
	c.mu.Lock()
	if !c.advisory {
		c.mu.Unlock()
		return
	}
	c.lastError = ""
	c.advisory = false
	inFlight := c.phase == PhaseInFlight
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners, Change{Kind: ChangeState, InFlight: inFlight})
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns the log in display order.
func (c *Controller) Messages() []*model.Message {
	return c.log.Messages()
}

// Log returns the underlying log.
func (c *Controller) Log() *model.Log {
	return c.log
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// InFlight reports whether a request is outstanding.
func (c *Controller) InFlight() bool {
	return c.Phase() == PhaseInFlight
}

// LastError returns the banner text, or "" when there is none.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

func (c *Controller) snapshotListeners() []Listener {
	if len(c.listeners) == 0 {
		return nil
	}
	out := make([]Listener, len(c.listeners))
	copy(out, c.listeners)
	return out
}

func notify(listeners []Listener, ch Change) {
	for _, l := range listeners {
		l(ch)
	}
}
