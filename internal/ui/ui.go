// Package ui is the terminal front end. It draws the active document with
// tcell, routes keys to the App and implements app.Host.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/codemate/internal/app"
	"github.com/dshills/codemate/internal/config"
	"github.com/dshills/codemate/internal/engine/buffer"
	"github.com/dshills/codemate/internal/presenter"
	"github.com/dshills/codemate/internal/preview"
)

// Option configures a UI.
type Option func(*UI)

// WithTheme sets the styles.
func WithTheme(t Theme) Option {
	return func(u *UI) {
		u.theme = t
	}
}

// WithHighlightDuration sets how long revealed text stays highlighted.
func WithHighlightDuration(d time.Duration) Option {
	return func(u *UI) {
		u.highlightFor = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(u *UI) {
		if l != nil {
			u.logger = l
		}
	}
}

// WithClock sets the time source used to expire highlights.
func WithClock(now func() time.Time) Option {
	return func(u *UI) {
		u.now = now
	}
}

type promptKind uint8

const (
	promptNone promptKind = iota
	promptChat
	promptCommand
)

// UI is a tcell based app.Host.
type UI struct {
	screen  tcell.Screen
	logger  *slog.Logger
	now     func() time.Time
	started chan struct{}

	// Owned by the Run goroutine.
	app      *app.App
	top      int
	quitOnce bool

	mu             sync.Mutex
	theme          Theme
	highlightFor   time.Duration
	mark           *buffer.Range
	highlight      *buffer.Range
	highlightUntil time.Time
	highlightTimer *time.Timer
	status         string
	message        string
	messageSev     app.Severity
	pending        *preview.Proposal
	rows           []presenter.Row
	panelOpen      bool
	selected       int
	prompt         promptKind
	input          []rune
}

var _ app.Host = (*UI)(nil)

// New creates a UI drawing on screen. The screen is initialized by Run.
func New(screen tcell.Screen, opts ...Option) *UI {
	u := &UI{
		screen:       screen,
		started:      make(chan struct{}),
		logger:       slog.New(slog.DiscardHandler),
		now:          time.Now,
		theme:        DefaultTheme(),
		highlightFor: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// ApplyConfig updates the theme and highlight duration.
func (u *UI) ApplyConfig(cfg *config.Config) {
	u.mu.Lock()
	u.theme = ThemeFrom(cfg.Preview)
	u.highlightFor = cfg.Preview.HighlightDuration.Std()
	u.mu.Unlock()
	u.wake()
}

// Run draws the screen and handles input until the user quits or ctx is
// done.
func (u *UI) Run(ctx context.Context, a *app.App) error {
	if err := u.screen.Init(); err != nil {
		return err
	}
	defer u.screen.Fini()
	u.screen.EnablePaste()
	u.app = a

	stop := context.AfterFunc(ctx, u.wake)
	defer stop()

	u.draw()
	close(u.started)
	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			u.screen.Sync()
		case *tcell.EventKey:
			if err := u.handleKey(ev); errors.Is(err, app.ErrQuit) {
				return nil
			}
		}
		u.draw()
	}
}

// wake makes Run redraw. Dropped when the event queue is full; the next
// event redraws anyway.
func (u *UI) wake() {
	_ = u.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Mark shows r as a staged suggestion.
func (u *UI) Mark(r buffer.Range) {
	u.mu.Lock()
	u.mark = &r
	u.mu.Unlock()
	u.wake()
}

// Clear removes the staged suggestion and the confirm prompt.
func (u *UI) Clear() {
	u.mu.Lock()
	u.mark = nil
	u.pending = nil
	u.mu.Unlock()
	u.wake()
}

// Highlight shows r for the highlight duration.
func (u *UI) Highlight(r buffer.Range) {
	u.mu.Lock()
	u.highlight = &r
	u.highlightUntil = u.now().Add(u.highlightFor)
	if u.highlightTimer != nil {
		u.highlightTimer.Stop()
	}
	u.highlightTimer = time.AfterFunc(u.highlightFor, u.wake)
	u.mu.Unlock()
	u.wake()
}

// Notify shows msg on the message line.
func (u *UI) Notify(sev app.Severity, msg string) {
	u.logger.Debug("notify", "severity", sev.String(), "message", msg)
	u.mu.Lock()
	u.message = msg
	u.messageSev = sev
	u.mu.Unlock()
	u.wake()
}

// SetStatus shows msg in the status line.
func (u *UI) SetStatus(msg string) {
	u.mu.Lock()
	u.status = msg
	u.mu.Unlock()
	u.wake()
}

// AwaitDecision shows the accept prompt for p.
func (u *UI) AwaitDecision(p preview.Proposal) {
	u.mu.Lock()
	u.pending = &p
	u.mu.Unlock()
	u.wake()
}

// ShowHistory opens the history panel.
func (u *UI) ShowHistory(rows []presenter.Row) {
	u.mu.Lock()
	u.rows = rows
	u.panelOpen = true
	u.selected = 0
	u.mu.Unlock()
	u.wake()
}

// HistoryChanged refreshes the history panel rows.
func (u *UI) HistoryChanged(rows []presenter.Row) {
	u.mu.Lock()
	u.rows = rows
	if u.selected >= len(rows) {
		u.selected = max(len(rows)-1, 0)
	}
	u.mu.Unlock()
	u.wake()
}

// Message returns the last notification.
func (u *UI) Message() (app.Severity, string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.messageSev, u.message
}

// Status returns the current status text.
func (u *UI) Status() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

// Awaiting reports whether a suggestion is waiting for a decision.
func (u *UI) Awaiting() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.pending != nil
}

// PanelOpen reports whether the history panel is shown.
func (u *UI) PanelOpen() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.panelOpen
}
