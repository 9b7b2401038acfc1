// Package chatlog holds the mission transcript and models each send as an
// explicit optimistic action: pending, then committed or rolled back.
package chatlog

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/arcade/internal/domain/types"
)

// RollbackMessage is appended as a system entry when a send fails.
const RollbackMessage = "Sorry, there was an error processing your request."

// ErrSettled is returned when an action is committed or rolled back twice.
var ErrSettled = errors.New("action already settled")

// ActionState is the lifecycle of an optimistic send.
type ActionState int

// Action states.
const (
	Pending ActionState = iota
	Committed
	RolledBack
)

func (s ActionState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled-back"
	default:
		return fmt.Sprintf("ActionState(%d)", int(s))
	}
}

// Option configures a Log.
type Option func(*Log)

// WithIDGenerator replaces uuid.NewString for entry ids.
func WithIDGenerator(fn func() string) Option {
	return func(l *Log) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(fn func() time.Time) Option {
	return func(l *Log) {
		if fn != nil {
			l.now = fn
		}
	}
}

// Log is an ordered transcript. It is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []types.ChatMessage
	newID   func() string
	now     func() time.Time
}

// New creates an empty Log.
func New(opts ...Option) *Log {
	l := &Log{newID: uuid.NewString, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Action is one optimistic send.
type Action struct {
	log     *Log
	entryID string
	state   ActionState
}

// Begin appends a local user entry and returns the pending action for it.
func (l *Log) Begin(content string) *Action {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := types.ChatMessage{
		ID:        l.newID(),
		Content:   content,
		Sender:    types.SenderUser,
		Timestamp: l.now(),
	}
	l.entries = append(l.entries, msg)
	return &Action{log: l, entryID: msg.ID, state: Pending}
}

// EntryID is the id of the optimistic entry.
func (a *Action) EntryID() string { return a.entryID }

// State reports the action's current state.
func (a *Action) State() ActionState {
	a.log.mu.Lock()
	defer a.log.mu.Unlock()
	return a.state
}

// Commit settles the action by replacing the whole transcript with the
// authoritative history. Local entries are discarded, not merged.
func (a *Action) Commit(history []types.ChatMessage) error {
	a.log.mu.Lock()
	defer a.log.mu.Unlock()
	if a.state != Pending {
		return fmt.Errorf("commit %s: %w", a.entryID, ErrSettled)
	}
	a.state = Committed
	a.log.entries = slices.Clone(history)
	return nil
}

// Settle marks the action committed and keeps the transcript as it is. It is
// used when the send succeeded but the history could not be re-read.
func (a *Action) Settle() error {
	a.log.mu.Lock()
	defer a.log.mu.Unlock()
	if a.state != Pending {
		return fmt.Errorf("settle %s: %w", a.entryID, ErrSettled)
	}
	a.state = Committed
	return nil
}

// Rollback removes the optimistic entry and appends one system entry.
func (a *Action) Rollback() error {
	l := a.log
	l.mu.Lock()
	defer l.mu.Unlock()
	if a.state != Pending {
		return fmt.Errorf("rollback %s: %w", a.entryID, ErrSettled)
	}
	a.state = RolledBack
	l.entries = slices.DeleteFunc(l.entries, func(m types.ChatMessage) bool {
		return m.ID == a.entryID
	})
	l.entries = append(l.entries, types.ChatMessage{
		ID:        l.newID(),
		Content:   RollbackMessage,
		Sender:    types.SenderSystem,
		Timestamp: l.now(),
	})
	return nil
}

// Replace swaps in a freshly fetched transcript.
func (l *Log) Replace(history []types.ChatMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = slices.Clone(history)
}

// Entries returns a copy of every entry including system ones.
func (l *Log) Entries() []types.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Visible returns the entries that may be rendered. System entries never are.
func (l *Log) Visible() []types.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.ChatMessage, 0, len(l.entries))
	for _, m := range l.entries {
		if m.Sender == types.SenderSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}

// FromAPI converts upstream messages, assigning fresh ids and timestamps.
func (l *Log) FromAPI(msgs []types.APIMessage) []types.ChatMessage {
	out := make([]types.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = types.ChatMessage{
			ID:        l.newID(),
			Content:   m.Content,
			Sender:    types.SenderForRole(m.Role),
			Timestamp: l.now(),
		}
	}
	return out
}
