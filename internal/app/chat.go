package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/okian/arcade/internal/client"
	"github.com/okian/arcade/internal/domain/chatlog"
	"github.com/okian/arcade/internal/domain/types"
)

// ChatSource reads and extends the mission transcript.
type ChatSource interface {
	ChatHistory(ctx context.Context, team string) ([]types.APIMessage, error)
	SendChat(ctx context.Context, team, message string) error
}

// ChatView is the mission transcript with optimistic sends.
type ChatView struct {
	board
	src  ChatSource
	team string
	log  *chatlog.Log

	Loading bool
}

// NewChatView creates the view for team.
func NewChatView(src ChatSource, team string, opts ...Option) *ChatView {
	s := newSettings(opts)
	return &ChatView{
		board: newBoard("chat", s.log),
		src:   src,
		team:  team,
		log:   chatlog.New(s.chatOpts...),
	}
}

// Load replaces the transcript with upstream history.
func (v *ChatView) Load(ctx context.Context) {
	if v.team == "" {
		return
	}
	if history, err := v.fetch(ctx); err == nil {
		v.log.Replace(history)
	}
}

func (v *ChatView) fetch(ctx context.Context) ([]types.ChatMessage, error) {
	defer v.observe(time.Now())
	v.Loading = true
	defer func() { v.Loading = false }()

	msgs, err := v.src.ChatHistory(ctx, v.team)
	switch {
	case errors.Is(err, client.ErrInvalidFormat):
		v.fail(ctx, err, client.ErrInvalidFormat.Error(), "")
		return nil, err
	case err != nil:
		v.fail(ctx, err, "Failed to fetch chat history", "")
		return nil, err
	}
	return v.log.FromAPI(msgs), nil
}

// Send appends content optimistically, posts it and re-reads the history.
// A failed send removes the local entry and appends a system entry. A failed
// re-read after a successful send keeps the local entry.
func (v *ChatView) Send(ctx context.Context, content string) bool {
	if v.team == "" {
		v.fail(ctx, nil, "User information not available", "")
		return false
	}
	if strings.TrimSpace(content) == "" {
		return false
	}

	action := v.log.Begin(content)
	if err := v.src.SendChat(ctx, v.team, content); err != nil {
		v.fail(ctx, err, "Failed to send message", "")
		_ = action.Rollback()
		return false
	}

	history, err := v.fetch(ctx)
	if err != nil {
		_ = action.Settle()
		return true
	}
	_ = action.Commit(history)
	return true
}

// Messages returns the renderable transcript. System entries are excluded.
func (v *ChatView) Messages() []types.ChatMessage { return v.log.Visible() }

// Transcript returns every entry including system ones.
func (v *ChatView) Transcript() []types.ChatMessage { return v.log.Entries() }
