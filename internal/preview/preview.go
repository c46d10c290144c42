package preview

import (
	"fmt"
	"sync"

	"github.com/dshills/codemate/internal/engine/buffer"
	"github.com/dshills/codemate/internal/engine/history"
	"github.com/dshills/codemate/internal/engine/tracking"
)

// StagingID is the tracker id reserved for the staged suggestion.
// Record ids start at 1 and never collide with it.
const StagingID tracking.ID = 0

// Document is the editor the engine inserts into.
type Document interface {
	Cursor() buffer.ByteOffset
	SetCursor(offset buffer.ByteOffset)
	Insert(offset buffer.ByteOffset, text string) (buffer.Range, error)
	Delete(start, end buffer.ByteOffset) error
	TextRange(start, end buffer.ByteOffset) string
	OffsetToPoint(offset buffer.ByteOffset) buffer.Point
	LanguageID() string
	Tracker() *tracking.Tracker
}

// State is the preview state.
type State uint8

const (
	// Idle means no suggestion is pending.
	Idle State = iota
	// Staged means a suggestion is inserted and awaits a decision.
	Staged
)

// String returns the state name.
func (s State) String() string {
	if s == Staged {
		return "staged"
	}
	return "idle"
}

// Decision is the user's answer to a staged suggestion.
type Decision uint8

const (
	Accept Decision = iota + 1
	Reject
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "none"
	}
}

// Proposal is a staged suggestion.
type Proposal struct {
	Kind     history.Kind
	Content  string
	Language string

	// Range is where the suggestion was inserted.
	Range buffer.Range
	Start buffer.Point
}

// Decider asks the user about a staged proposal. Decide blocks until the
// user answers.
type Decider interface {
	Decide(p Proposal) (Decision, error)
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(p Proposal) (Decision, error)

// Decide calls f(p).
func (f DeciderFunc) Decide(p Proposal) (Decision, error) {
	return f(p)
}

// Outcome is the result of Confirm.
type Outcome struct {
	Decision Decision
	// Record is set when the suggestion was accepted.
	Record history.Record
}

// AcceptHook is called after a record is appended.
type AcceptHook func(rec history.Record)

// Option configures an Engine.
type Option func(*Engine)

// WithDecorator sets the decorator used for markers and highlights.
func WithDecorator(d Decorator) Option {
	return func(e *Engine) {
		if d != nil {
			e.deco = d
		}
	}
}

// WithAnchoring controls whether accepted ranges follow later edits.
// When disabled, undo and redo use the offsets recorded at acceptance.
func WithAnchoring(enabled bool) Option {
	return func(e *Engine) {
		e.anchor = enabled
	}
}

// WithAcceptHook registers a hook called after every accept.
func WithAcceptHook(fn AcceptHook) Option {
	return func(e *Engine) {
		if fn != nil {
			e.hooks = append(e.hooks, fn)
		}
	}
}

// Engine runs the preview/confirm state machine and applies undo and redo
// of accepted records to a document.
type Engine struct {
	mu sync.Mutex

	store  *history.Store
	deco   Decorator
	anchor bool
	hooks  []AcceptHook

	state   State
	doc     Document
	pending Proposal
}

// New creates an engine that appends accepted records to store.
func New(store *history.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		deco:   NopDecorator{},
		anchor: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the record store.
func (e *Engine) Store() *history.Store {
	return e.store
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Pending returns the staged proposal, if any.
func (e *Engine) Pending() (Proposal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Staged {
		return Proposal{}, false
	}
	p := e.pending
	if r, ok := e.doc.Tracker().Range(StagingID); ok {
		p.Range = r
	}
	return p, true
}

// SetAnchoring changes whether newly accepted ranges are tracked.
func (e *Engine) SetAnchoring(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.anchor = enabled
}

// Stage inserts content at the document cursor and marks it pending.
func (e *Engine) Stage(doc Document, kind history.Kind, content string) (Proposal, error) {
	if doc == nil {
		return Proposal{}, ErrNoActiveEditor
	}
	if content == "" {
		return Proposal{}, ErrEmptyContent
	}
	if !kind.Valid() {
		return Proposal{}, fmt.Errorf("stage: invalid kind %s", kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Staged {
		return Proposal{}, ErrAlreadyStaged
	}

	r, err := doc.Insert(doc.Cursor(), content)
	if err != nil {
		return Proposal{}, fmt.Errorf("stage: %w", err)
	}
	doc.Tracker().Track(StagingID, r)

	e.doc = doc
	e.state = Staged
	e.pending = Proposal{
		Kind:     kind,
		Content:  doc.TextRange(r.Start, r.End),
		Language: doc.LanguageID(),
		Range:    r,
		Start:    doc.OffsetToPoint(r.Start),
	}
	e.deco.Mark(r)
	return e.pending, nil
}

// Accept turns the staged suggestion into a history record.
func (e *Engine) Accept() (history.Record, error) {
	e.mu.Lock()
	if e.state != Staged {
		e.mu.Unlock()
		return history.Record{}, ErrNotStaged
	}

	doc := e.doc
	tr := doc.Tracker()
	r, ok := tr.Range(StagingID)
	if !ok {
		r = e.pending.Range
	}
	tr.Untrack(StagingID)

	rec := e.store.NewRecord(e.pending.Kind, r, doc.OffsetToPoint(r.Start), e.pending.Content, e.pending.Language)
	err := e.store.Append(rec)
	if err == nil && e.anchor {
		tr.Track(rec.ID, r)
	}

	e.deco.Clear()
	e.resetLocked()
	hooks := e.hooks
	e.mu.Unlock()

	if err != nil {
		return history.Record{}, fmt.Errorf("accept: %w", err)
	}
	for _, fn := range hooks {
		fn(rec)
	}
	return rec, nil
}

// Reject removes the staged text from the document.
func (e *Engine) Reject() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Staged {
		return ErrNotStaged
	}

	tr := e.doc.Tracker()
	r, ok := tr.Range(StagingID)
	if !ok {
		r = e.pending.Range
	}
	tr.Untrack(StagingID)

	err := e.doc.Delete(r.Start, r.End)
	e.deco.Clear()
	e.resetLocked()
	if err != nil {
		return fmt.Errorf("reject: %w", err)
	}
	return nil
}

// Abandon drops a staged suggestion without a decision. The inserted text
// stays in the document and is not recorded.
func (e *Engine) Abandon() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Staged {
		return
	}
	e.doc.Tracker().Untrack(StagingID)
	e.deco.Clear()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.state = Idle
	e.doc = nil
	e.pending = Proposal{}
}

// Confirm stages content, waits for the decider and applies its decision.
// If the decider fails the suggestion is abandoned and the error returned.
func (e *Engine) Confirm(doc Document, kind history.Kind, content string, d Decider) (Outcome, error) {
	p, err := e.Stage(doc, kind, content)
	if err != nil {
		return Outcome{}, err
	}

	decision, err := d.Decide(p)
	if err != nil {
		e.Abandon()
		return Outcome{}, fmt.Errorf("confirm: %w", err)
	}

	switch decision {
	case Accept:
		rec, err := e.Accept()
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Decision: Accept, Record: rec}, nil
	default:
		if err := e.Reject(); err != nil {
			return Outcome{}, err
		}
		return Outcome{Decision: Reject}, nil
	}
}

// Undo removes the text of the most recent record on the undo stack.
// Nothing changes if the stack is empty or the text at the record's
// location differs from the record.
func (e *Engine) Undo(doc Document) (history.Record, error) {
	if doc == nil {
		return history.Record{}, ErrNoActiveEditor
	}
	return e.store.Undo(func(rec history.Record) error {
		r := e.locate(doc, rec)
		if got := doc.TextRange(r.Start, r.End); got != rec.Content {
			return fmt.Errorf("%w: record %d at %s", ErrStaleRange, rec.ID, r)
		}
		return doc.Delete(r.Start, r.End)
	})
}

// Redo re-inserts the content of the most recently undone record at the
// start of its location.
func (e *Engine) Redo(doc Document) (history.Record, error) {
	if doc == nil {
		return history.Record{}, ErrNoActiveEditor
	}
	return e.store.Redo(func(rec history.Record) error {
		r := e.locate(doc, rec)
		nr, err := doc.Insert(r.Start, rec.Content)
		if err != nil {
			return err
		}
		if e.anchoring() {
			doc.Tracker().Track(rec.ID, nr)
		}
		return nil
	})
}

// Locate returns the current range of a record. doc may be nil, in which
// case the range recorded at acceptance is returned.
func (e *Engine) Locate(doc Document, id int64) (buffer.Range, error) {
	rec, ok := e.store.Lookup(id)
	if !ok {
		return buffer.Range{}, fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}
	if doc == nil {
		return rec.Range, nil
	}
	return e.locate(doc, rec), nil
}

// Reveal moves the cursor to the start of a record and highlights it.
func (e *Engine) Reveal(doc Document, id int64) (buffer.Range, error) {
	if doc == nil {
		return buffer.Range{}, ErrNoActiveEditor
	}
	r, err := e.Locate(doc, id)
	if err != nil {
		return buffer.Range{}, err
	}
	doc.SetCursor(r.Start)
	e.deco.Highlight(r)
	return r, nil
}

func (e *Engine) locate(doc Document, rec history.Record) buffer.Range {
	if r, ok := doc.Tracker().Range(rec.ID); ok {
		return r
	}
	return rec.Range
}

func (e *Engine) anchoring() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.anchor
}
