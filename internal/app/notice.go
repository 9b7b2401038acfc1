// Package app holds the view state machines behind the dashboard pages.
// Views never return errors to the page: failures become Notices and the
// view falls back to a safe state.
package app

import (
	"context"
	"time"

	"github.com/okian/arcade/pkg/logger"
	"github.com/okian/arcade/pkg/metrics"
)

// Level is the severity of a Notice.
type Level string

// Notice levels.
const (
	LevelError   Level = "error"
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
)

// Notice is a transient user-facing message.
type Notice struct {
	Level       Level
	Title       string
	Description string
	// Action labels an optional follow-up control, e.g. "Retry".
	Action string
}

// board collects the notices raised by one view.
type board struct {
	view    string
	log     logger.Logger
	notices []Notice
}

func newBoard(view string, log logger.Logger) board {
	if log == nil {
		log = logger.Named("views")
	}
	return board{view: view, log: log.With(logger.String("view", view))}
}

func (b *board) raise(n Notice) {
	b.notices = append(b.notices, n)
	metrics.RecordViewNotice(b.view, string(n.Level))
}

func (b *board) info(title string) {
	b.raise(Notice{Level: LevelInfo, Title: title})
}

func (b *board) success(title, description string) {
	b.raise(Notice{Level: LevelSuccess, Title: title, Description: description})
}

// fail logs err and raises an error notice.
func (b *board) fail(ctx context.Context, err error, title, description string) {
	if err != nil {
		b.log.Error(ctx, title, logger.Error(err))
	} else {
		b.log.Debug(ctx, title)
	}
	b.raise(Notice{Level: LevelError, Title: title, Description: description})
}

// Notices returns every notice raised so far.
func (b *board) Notices() []Notice {
	out := make([]Notice, len(b.notices))
	copy(out, b.notices)
	return out
}

// observe records how long a view spent fetching.
func (b *board) observe(start time.Time) {
	metrics.RecordViewLoad(b.view, float64(time.Since(start).Microseconds())/1000)
}
