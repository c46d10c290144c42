// Package presenter turns the update history into rows for display and
// dispatches the commands a history view sends back.
package presenter

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/codemate/internal/engine/buffer"
	"github.com/dshills/codemate/internal/engine/history"
	"github.com/dshills/codemate/internal/preview"
)

// ClockFormat is the layout of Row.Time.
const ClockFormat = "15:04:05"

// Row is one History entry as shown to the user.
type Row struct {
	ID        int64
	Kind      history.Kind
	Label     string
	Time      string
	Ago       string
	Timestamp time.Time
	Preview   string
}

// Controller performs the history commands.
type Controller interface {
	UndoLast() (history.Record, error)
	RedoLast() (history.Record, error)
	Reveal(id int64) (buffer.Range, error)
}

// Result is the outcome of a handled message.
type Result struct {
	// Command is the command that ran, empty if the message was malformed.
	Command string
	// Rows is the refreshed history, most recent first.
	Rows []Row
	// Notice is a short message for the user on success.
	Notice string
	// Err is set when the command failed.
	Err error
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithClock sets the time source for relative times.
func WithClock(now func() time.Time) Option {
	return func(p *Presenter) {
		if now != nil {
			p.now = now
		}
	}
}

// Presenter builds history rows and handles view messages.
type Presenter struct {
	store *history.Store
	ctrl  Controller
	now   func() time.Time

	mu    sync.Mutex
	caser cases.Caser
}

// New creates a presenter over store.
func New(store *history.Store, ctrl Controller, opts ...Option) *Presenter {
	p := &Presenter{
		store: store,
		ctrl:  ctrl,
		now:   time.Now,
		caser: cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rows returns History most recent first.
func (p *Presenter) Rows() []Row {
	recs := p.store.Recent()
	now := p.now()
	rows := make([]Row, len(recs))
	for i, rec := range recs {
		rows[i] = Row{
			ID:        rec.ID,
			Kind:      rec.Kind,
			Label:     p.Label(rec.Kind),
			Time:      rec.Timestamp.Local().Format(ClockFormat),
			Ago:       humanize.RelTime(rec.Timestamp, now, "ago", "from now"),
			Timestamp: rec.Timestamp,
			Preview:   firstLine(rec.Content),
		}
	}
	return rows
}

// Label returns the display name of a kind.
func (p *Presenter) Label(k history.Kind) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return "AI " + p.caser.String(k.String())
}

// Handle runs msg and returns fresh rows.
func (p *Presenter) Handle(msg Message) Result {
	res := Result{Command: msg.Command}
	switch msg.Command {
	case CommandUndo:
		rec, err := p.ctrl.UndoLast()
		if err != nil {
			res.Err = err
		} else {
			res.Notice = fmt.Sprintf("Undid update #%d", rec.ID)
		}
	case CommandRedo:
		rec, err := p.ctrl.RedoLast()
		if err != nil {
			res.Err = err
		} else {
			res.Notice = fmt.Sprintf("Redid update #%d", rec.ID)
		}
	case CommandReveal:
		if msg.ID == nil {
			res.Err = fmt.Errorf("%w: reveal needs an id", ErrBadMessage)
			break
		}
		id := *msg.ID
		r, err := p.ctrl.Reveal(id)
		switch {
		case errors.Is(err, preview.ErrRecordNotFound):
			res.Notice = fmt.Sprintf("Update #%d not found", id)
		case err != nil:
			res.Err = err
		default:
			res.Notice = fmt.Sprintf("Update #%d at %s", id, r)
		}
	case CommandRefresh:
	default:
		res.Err = fmt.Errorf("%w: unknown command %q", ErrBadMessage, msg.Command)
	}
	res.Rows = p.Rows()
	return res
}

// HandleJSON decodes data and handles the message.
func (p *Presenter) HandleJSON(data []byte) Result {
	msg, err := DecodeMessage(data)
	if err != nil {
		return Result{Rows: p.Rows(), Err: err}
	}
	return p.Handle(msg)
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
