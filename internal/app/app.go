// Package app wires the document, the preview engine, the update history
// and the completion requester together, and runs every change to them on
// a single task loop.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dshills/codemate/internal/completion"
	"github.com/dshills/codemate/internal/config"
	"github.com/dshills/codemate/internal/engine"
	"github.com/dshills/codemate/internal/engine/buffer"
	"github.com/dshills/codemate/internal/engine/history"
	"github.com/dshills/codemate/internal/plugin/lua"
	"github.com/dshills/codemate/internal/presenter"
	"github.com/dshills/codemate/internal/preview"
)

// Option configures an App.
type Option func(*App)

// WithHost sets the user interface. Defaults to NopHost.
func WithHost(h Host) Option {
	return func(a *App) {
		if h != nil {
			a.host = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithProvider fixes the completion provider. api.provider and
// api.base_url are then ignored.
func WithProvider(p completion.Provider) Option {
	return func(a *App) {
		a.fixedProvider = p
	}
}

// WithClock sets the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.clock = now
		}
	}
}

// WithDocument sets the initial document.
func WithDocument(doc *engine.Engine) Option {
	return func(a *App) {
		a.doc = doc
	}
}

// App is the running application core.
type App struct {
	store   *config.Store
	logger  *Logger
	loop    *Loop
	host    Host
	metrics *Metrics
	clock   func() time.Time

	// Owned by the loop.
	doc           *engine.Engine
	history       *history.Store
	preview       *preview.Engine
	presenter     *presenter.Presenter
	requester     *completion.Requester
	cache         *completion.Cache
	hooks         *lua.Hooks
	fixedProvider completion.Provider
	applied       *config.Config
	inflight      bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates an App reading its settings from store.
func New(store *config.Store, opts ...Option) (*App, error) {
	a := &App{
		store:   store,
		logger:  NopLogger(),
		host:    NopHost{},
		metrics: NewMetrics(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithComponent("app")
	a.ctx, a.cancel = context.WithCancel(context.Background())

	cfg := store.Get()
	a.history = history.NewStore(
		history.WithMaxUndo(cfg.History.MaxUndo),
		history.WithDuplicateOnRedo(cfg.History.DuplicateOnRedo),
		history.WithClock(a.clock),
	)
	a.preview = preview.New(a.history,
		preview.WithDecorator(hostDecorator{a}),
		preview.WithAnchoring(cfg.History.AnchorRanges),
		preview.WithAcceptHook(a.onAccept),
	)
	a.presenter = presenter.New(a.history, historyController{a}, presenter.WithClock(a.clock))
	a.cache = completion.NewCache(cfg.Completion.CacheTTL.Std())

	if err := a.rebuildRequester(cfg); err != nil {
		a.cache.Close()
		return nil, NewComponentError("completion", "create provider", err)
	}
	if err := a.reloadHooks(cfg); err != nil {
		a.logger.Warn("hook script not loaded", "error", err)
	}
	a.applied = cfg

	a.loop = NewLoop(a.logger)
	store.OnChange(func(_, cur *config.Config) {
		a.loop.Post(func() { a.applyConfig(cur) })
	})
	return a, nil
}

// Metrics returns the request and decision counters.
func (a *App) Metrics() *Metrics {
	return a.metrics
}

// History returns the update record store.
func (a *App) History() *history.Store {
	return a.history
}

// Document returns the active document, or nil.
func (a *App) Document() *engine.Engine {
	var doc *engine.Engine
	_ = a.loop.Do(context.Background(), func() error {
		doc = a.doc
		return nil
	})
	return doc
}

// SetDocument replaces the active document. A staged suggestion in the
// previous document is abandoned.
func (a *App) SetDocument(doc *engine.Engine) error {
	return a.loop.Do(context.Background(), func() error {
		a.preview.Abandon()
		a.doc = doc
		return nil
	})
}

// Edit runs fn against the active document on the task loop.
func (a *App) Edit(fn func(doc *engine.Engine) error) error {
	return a.loop.Do(context.Background(), func() error {
		if a.doc == nil {
			return preview.ErrNoActiveEditor
		}
		return fn(a.doc)
	})
}

// PreviewState returns the state of the preview engine.
func (a *App) PreviewState() preview.State {
	return a.preview.State()
}

// document returns the active document as a preview.Document, nil when
// there is none.
func (a *App) document() preview.Document {
	if a.doc == nil {
		return nil
	}
	return a.doc
}

// TriggerCompletion requests a completion of the text before the cursor.
func (a *App) TriggerCompletion() *Task {
	return a.trigger(history.KindCompletion, "")
}

// TriggerChat requests code for a free-form request. An empty request
// finishes the task with context.Canceled and no notification.
func (a *App) TriggerChat(request string) *Task {
	return a.trigger(history.KindChat, request)
}

func (a *App) trigger(kind history.Kind, request string) *Task {
	logger, id := a.logger.WithRequestID()
	t := newTask(id, kind)
	ok := a.loop.Post(func() {
		if err := a.startRequest(t, logger, request); err != nil {
			logger.Info("request not started", "kind", kind.String(), "error", err)
			a.report(err)
			t.finish(preview.Proposal{}, err)
		}
	})
	if !ok {
		t.finish(preview.Proposal{}, ErrClosed)
	}
	return t
}

func (a *App) startRequest(t *Task, logger *Logger, request string) error {
	if a.ctx.Err() != nil {
		return ErrClosed
	}
	if a.doc == nil {
		return preview.ErrNoActiveEditor
	}
	if a.preview.State() == preview.Staged {
		return preview.ErrAlreadyStaged
	}
	if a.inflight {
		return ErrBusy
	}

	cfg := a.store.Get()
	if cfg.API.Key == "" {
		return completion.ErrMissingAPIKey
	}

	language := a.doc.LanguageID()
	input := a.doc.ContextBefore(cfg.Completion.ContextLines)
	if t.kind == history.KindChat {
		input = strings.TrimSpace(request)
		if input == "" {
			t.finish(preview.Proposal{}, context.Canceled)
			return nil
		}
	}

	a.inflight = true
	a.host.SetStatus("Generating code...")
	logger.Info("request started", "kind", t.kind.String(), "language", language, "input_bytes", len(input))

	req := a.requester
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx := completion.ContextWithLogger(a.ctx, logger.Logger)

		start := time.Now()
		var reply string
		var err error
		if t.kind == history.KindChat {
			reply, err = req.Chat(ctx, input, language, cfg.API.Key)
		} else {
			reply, err = req.Complete(ctx, input, language, cfg.API.Key)
		}
		a.metrics.RecordRequest(time.Since(start), err)

		if !a.loop.Post(func() { a.finishRequest(t, logger, language, reply, err) }) {
			t.finish(preview.Proposal{}, ErrClosed)
		}
	}()
	return nil
}

func (a *App) finishRequest(t *Task, logger *Logger, language, reply string, err error) {
	a.inflight = false
	a.host.SetStatus("")

	if err != nil {
		logger.Warn("request failed", "error", err)
		a.report(err)
		t.finish(preview.Proposal{}, err)
		return
	}

	text := completion.Clean(reply)
	if a.hooks != nil {
		out, herr := a.hooks.Transform(a.ctx, text, t.kind, language)
		if herr != nil {
			logger.Warn("transform hook failed, using cleaned text", "error", herr)
			a.notify(SeverityWarning, "Transform hook failed: "+herr.Error())
		} else {
			text = out
		}
	}

	p, err := a.preview.Stage(a.document(), t.kind, text)
	if err != nil {
		logger.Info("suggestion not staged", "error", err)
		a.report(err)
		t.finish(preview.Proposal{}, err)
		return
	}

	logger.Info("suggestion staged", "range", p.Range.String(), "bytes", len(p.Content))
	a.host.AwaitDecision(p)
	t.finish(p, nil)
}

// Decide accepts or rejects the staged suggestion.
func (a *App) Decide(d preview.Decision) (preview.Outcome, error) {
	var out preview.Outcome
	err := a.loop.Do(context.Background(), func() error {
		var err error
		out, err = a.decide(d)
		if err != nil {
			a.report(err)
		}
		return err
	})
	return out, err
}

func (a *App) decide(d preview.Decision) (preview.Outcome, error) {
	if d == preview.Accept {
		rec, err := a.preview.Accept()
		if err != nil {
			return preview.Outcome{}, err
		}
		a.metrics.RecordAccept()
		a.notify(SeverityInfo, fmt.Sprintf("Applied AI update #%d", rec.ID))
		a.host.HistoryChanged(a.presenter.Rows())
		return preview.Outcome{Decision: preview.Accept, Record: rec}, nil
	}

	if err := a.preview.Reject(); err != nil {
		return preview.Outcome{}, err
	}
	a.metrics.RecordReject()
	a.notify(SeverityInfo, "Suggestion discarded")
	return preview.Outcome{Decision: preview.Reject}, nil
}

func (a *App) onAccept(rec history.Record) {
	a.logger.Info("update recorded", "record", rec.String())
	if a.hooks == nil {
		return
	}
	if err := a.hooks.OnAccept(a.ctx, rec); err != nil {
		a.logger.Warn("on_accept hook failed", "record", rec.ID, "error", err)
	}
}

func (a *App) onFallback(primary, fallback string) {
	a.metrics.RecordFallback()
	a.loop.Post(func() {
		a.notify(SeverityInfo, fmt.Sprintf("%s timed out, switching to %s", primary, fallback))
		a.host.SetStatus("Generating code with " + fallback + "...")
	})
}

// UndoLastUpdate removes the most recent AI update.
func (a *App) UndoLastUpdate() error {
	return a.present(presenter.Undo())
}

// RedoLastUpdate re-applies the most recently undone AI update.
func (a *App) RedoLastUpdate() error {
	return a.present(presenter.Redo())
}

// Reveal moves the cursor to an update and highlights it. An unknown id
// only produces a notice.
func (a *App) Reveal(id int64) error {
	return a.present(presenter.Reveal(id))
}

// ShowHistory opens the history view.
func (a *App) ShowHistory() error {
	return a.loop.Do(context.Background(), func() error {
		a.host.ShowHistory(a.presenter.Rows())
		return nil
	})
}

// HistoryRows returns the current history rows.
func (a *App) HistoryRows() []presenter.Row {
	var rows []presenter.Row
	_ = a.loop.Do(context.Background(), func() error {
		rows = a.presenter.Rows()
		return nil
	})
	return rows
}

// HandleMessage handles a JSON message from the history view, such as
// {"command":"reveal","id":3}.
func (a *App) HandleMessage(data []byte) error {
	return a.loop.Do(context.Background(), func() error {
		return a.presentResult(a.presenter.HandleJSON(data))
	})
}

func (a *App) present(msg presenter.Message) error {
	return a.loop.Do(context.Background(), func() error {
		return a.presentResult(a.presenter.Handle(msg))
	})
}

// presentResult runs on the loop.
func (a *App) presentResult(res presenter.Result) error {
	if res.Err != nil {
		a.report(res.Err)
	} else {
		switch res.Command {
		case presenter.CommandUndo:
			a.metrics.RecordUndo()
		case presenter.CommandRedo:
			a.metrics.RecordRedo()
		}
	}
	if res.Notice != "" {
		a.notify(SeverityInfo, res.Notice)
	}
	if res.Rows != nil {
		a.host.HistoryChanged(res.Rows)
	}
	return res.Err
}

// Save writes the active document to its path.
func (a *App) Save() error {
	return a.loop.Do(context.Background(), func() error {
		if a.doc == nil {
			a.report(preview.ErrNoActiveEditor)
			return preview.ErrNoActiveEditor
		}
		if err := a.doc.Save(); err != nil {
			opErr := NewOperationError("save", a.doc.Path(), err)
			a.report(opErr)
			return opErr
		}
		a.notify(SeverityInfo, "Saved "+a.doc.Path())
		return nil
	})
}

// notify runs on the loop.
func (a *App) notify(sev Severity, msg string) {
	a.host.Notify(sev, msg)
}

// report shows err to the user. It runs on the loop.
func (a *App) report(err error) {
	sev, msg := UserMessage(err)
	if msg == "" {
		return
	}
	if sev == SeverityError {
		a.logger.Error("command failed", "error", err)
	}
	a.notify(sev, msg)
}

// applyConfig runs on the loop after the config file changed.
func (a *App) applyConfig(cfg *config.Config) {
	old := a.applied
	a.history.SetMaxUndo(cfg.History.MaxUndo)
	a.history.SetDuplicateOnRedo(cfg.History.DuplicateOnRedo)
	a.preview.SetAnchoring(cfg.History.AnchorRanges)
	if level, err := config.ParseLevel(cfg.Log.Level); err == nil {
		a.logger.SetLevel(level)
	}

	if cfg.API.Provider != old.API.Provider || cfg.API.BaseURL != old.API.BaseURL {
		if err := a.rebuildRequester(cfg); err != nil {
			a.report(NewComponentError("completion", "switch provider", err))
		}
	} else {
		a.requester.SetSettings(cfg.RequestSettings())
	}

	if cfg.HookScriptPath() != old.HookScriptPath() {
		if err := a.reloadHooks(cfg); err != nil {
			a.report(err)
		}
	}

	a.applied = cfg
	a.logger.Info("settings applied")
	a.notify(SeverityInfo, "Configuration reloaded")
}

func (a *App) rebuildRequester(cfg *config.Config) error {
	p := a.fixedProvider
	if p == nil {
		var err error
		p, err = completion.NewProvider(cfg.ProviderConfig())
		if err != nil {
			return err
		}
	}
	a.requester = completion.NewRequester(p, cfg.RequestSettings(),
		completion.WithCache(a.cache),
		completion.WithLogger(a.logger.Logger),
		completion.WithFallbackNotifier(a.onFallback),
	)
	return nil
}

func (a *App) reloadHooks(cfg *config.Config) error {
	if a.hooks != nil {
		a.hooks.Close()
		a.hooks = nil
	}
	path := cfg.HookScriptPath()
	if path == "" {
		return nil
	}
	h, err := loadHooks(path, a.logger)
	if err != nil {
		return NewComponentError("hooks", "load "+path, err)
	}
	a.hooks = h
	return nil
}

func loadHooks(path string, logger *Logger) (*lua.Hooks, error) {
	hl := logger.WithComponent("hooks")
	return lua.Load(path, lua.WithPrintFunc(func(msg string) {
		hl.Info("hook output", "msg", msg)
	}))
}

// Close cancels running requests and stops the task loop.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.cancel()
		a.wg.Wait()
		a.loop.Post(func() {
			a.preview.Abandon()
			if a.hooks != nil {
				a.hooks.Close()
			}
		})
		a.loop.Close()
		a.cache.Close()
		a.logger.Info("session finished", a.metrics.Snapshot().LogAttrs()...)
	})
	return nil
}

// hostDecorator forwards preview decorations to the current host.
type hostDecorator struct{ a *App }

func (d hostDecorator) Mark(r buffer.Range)      { d.a.host.Mark(r) }
func (d hostDecorator) Clear()                   { d.a.host.Clear() }
func (d hostDecorator) Highlight(r buffer.Range) { d.a.host.Highlight(r) }

// historyController lets the presenter drive the preview engine. Its
// methods run on the loop.
type historyController struct{ a *App }

func (c historyController) UndoLast() (history.Record, error) {
	return c.a.preview.Undo(c.a.document())
}

func (c historyController) RedoLast() (history.Record, error) {
	return c.a.preview.Redo(c.a.document())
}

func (c historyController) Reveal(id int64) (buffer.Range, error) {
	return c.a.preview.Reveal(c.a.document(), id)
}
