package ui

import (
	"errors"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/codemate/internal/app"
	"github.com/dshills/codemate/internal/engine"
	"github.com/dshills/codemate/internal/presenter"
	"github.com/dshills/codemate/internal/preview"
)

// Binding is a global key binding.
type Binding struct {
	// Key is the tcell key, or tcell.KeyRune with Alt held for Rune.
	Key  tcell.Key
	Rune rune
	Name string
	// Help is the label shown in the help line.
	Help string

	run func(u *UI) error
}

// Label returns the key as the user types it, e.g. "Alt+C".
func (b Binding) Label() string {
	if b.Key == tcell.KeyRune {
		return "Alt+" + string(unicode.ToUpper(b.Rune))
	}
	return tcell.KeyNames[b.Key]
}

var bindings = []Binding{
	{Key: tcell.KeyRune, Rune: 'c', Name: app.CmdComplete, Help: "complete", run: func(u *UI) error {
		u.app.TriggerCompletion()
		return nil
	}},
	{Key: tcell.KeyRune, Rune: 'a', Name: app.CmdChat, Help: "chat", run: func(u *UI) error {
		u.openPrompt(promptChat)
		return nil
	}},
	{Key: tcell.KeyRune, Rune: 'u', Name: app.CmdUndo, Help: "undo AI", run: func(u *UI) error {
		_ = u.app.UndoLastUpdate()
		return nil
	}},
	{Key: tcell.KeyRune, Rune: 'r', Name: app.CmdRedo, Help: "redo AI", run: func(u *UI) error {
		_ = u.app.RedoLastUpdate()
		return nil
	}},
	{Key: tcell.KeyRune, Rune: 'h', Name: app.CmdHistory, Help: "history", run: func(u *UI) error {
		if u.PanelOpen() {
			u.closePanel()
			return nil
		}
		_ = u.app.ShowHistory()
		return nil
	}},
	{Key: tcell.KeyRune, Rune: 'x', Name: "command", Help: "command", run: func(u *UI) error {
		u.openPrompt(promptCommand)
		return nil
	}},
	{Key: tcell.KeyCtrlS, Name: app.CmdSave, Help: "save", run: func(u *UI) error {
		_ = u.app.Save()
		return nil
	}},
	{Key: tcell.KeyCtrlQ, Name: app.CmdQuit, Help: "quit", run: (*UI).quit},
}

// Bindings returns the global key bindings.
func Bindings() []Binding {
	out := make([]Binding, len(bindings))
	copy(out, bindings)
	return out
}

func lookup(ev *tcell.EventKey) (Binding, bool) {
	for _, b := range bindings {
		if b.Key != ev.Key() {
			continue
		}
		if b.Key != tcell.KeyRune {
			return b, true
		}
		if ev.Modifiers()&tcell.ModAlt != 0 && unicode.ToLower(ev.Rune()) == b.Rune {
			return b, true
		}
	}
	return Binding{}, false
}

func (u *UI) handleKey(ev *tcell.EventKey) error {
	if ev.Key() != tcell.KeyCtrlQ {
		u.quitOnce = false
	}

	u.mu.Lock()
	prompt := u.prompt
	pending := u.pending != nil
	panel := u.panelOpen
	u.mu.Unlock()

	if prompt != promptNone {
		return u.handlePrompt(ev, prompt)
	}
	if pending && u.handleConfirm(ev) {
		return nil
	}
	if b, ok := lookup(ev); ok {
		return b.run(u)
	}
	if panel {
		u.handlePanel(ev)
		return nil
	}
	if pending {
		u.Notify(app.SeverityWarning, "Accept (y) or reject (n) the suggestion first")
		return nil
	}
	return u.handleEdit(ev)
}

// handleConfirm answers the accept prompt. It reports whether ev was used.
func (u *UI) handleConfirm(ev *tcell.EventKey) bool {
	var d preview.Decision
	switch {
	case ev.Key() == tcell.KeyEnter || ev.Key() == tcell.KeyTab:
		d = preview.Accept
	case ev.Key() == tcell.KeyEscape:
		d = preview.Reject
	case ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModAlt == 0:
		switch unicode.ToLower(ev.Rune()) {
		case 'y':
			d = preview.Accept
		case 'n':
			d = preview.Reject
		default:
			return false
		}
	default:
		return false
	}
	_, _ = u.app.Decide(d)
	return true
}

func (u *UI) handlePrompt(ev *tcell.EventKey, kind promptKind) error {
	switch ev.Key() {
	case tcell.KeyEscape:
		u.closePrompt()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		u.mu.Lock()
		if n := len(u.input); n > 0 {
			u.input = u.input[:n-1]
		}
		u.mu.Unlock()
	case tcell.KeyRune:
		u.mu.Lock()
		u.input = append(u.input, ev.Rune())
		u.mu.Unlock()
	case tcell.KeyEnter:
		text := u.closePrompt()
		if kind == promptChat {
			u.app.TriggerChat(text)
			return nil
		}
		return u.runCommand(text)
	}
	return nil
}

func (u *UI) runCommand(line string) error {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "{") {
		_ = u.app.HandleMessage([]byte(line))
		return nil
	}
	name, arg, _ := strings.Cut(line, " ")
	if name == "" {
		return nil
	}
	err := u.app.Execute(name, arg)
	if errors.Is(err, app.ErrQuit) {
		return u.quit()
	}
	if err != nil {
		u.report(err)
	}
	return nil
}

func (u *UI) handlePanel(ev *tcell.EventKey) {
	u.mu.Lock()
	n := len(u.rows)
	switch ev.Key() {
	case tcell.KeyUp:
		if u.selected > 0 {
			u.selected--
		}
	case tcell.KeyDown:
		if u.selected < n-1 {
			u.selected++
		}
	case tcell.KeyEscape:
		u.panelOpen = false
	}
	var id int64
	if u.selected < n {
		id = u.rows[u.selected].ID
	}
	u.mu.Unlock()

	switch {
	case ev.Key() == tcell.KeyEnter && n > 0:
		u.send(presenter.Reveal(id))
	case ev.Key() == tcell.KeyRune:
		switch ev.Rune() {
		case 'u':
			u.send(presenter.Undo())
		case 'r':
			u.send(presenter.Redo())
		case 'q':
			u.closePanel()
		}
	}
}

// send passes a history view message to the App in its JSON form.
func (u *UI) send(msg presenter.Message) {
	data, err := msg.Encode()
	if err != nil {
		u.report(err)
		return
	}
	_ = u.app.HandleMessage(data)
}

func (u *UI) handleEdit(ev *tcell.EventKey) error {
	var edit func(doc *engine.Engine) error
	switch ev.Key() {
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModAlt != 0 {
			return nil
		}
		edit = insert(string(ev.Rune()))
	case tcell.KeyEnter:
		edit = insert("\n")
	case tcell.KeyTab:
		edit = insert("\t")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		edit = (*engine.Engine).Backspace
	case tcell.KeyDelete:
		edit = (*engine.Engine).DeleteForward
	case tcell.KeyLeft:
		edit = move((*engine.Engine).MoveLeft)
	case tcell.KeyRight:
		edit = move((*engine.Engine).MoveRight)
	case tcell.KeyUp:
		edit = move((*engine.Engine).MoveUp)
	case tcell.KeyDown:
		edit = move((*engine.Engine).MoveDown)
	case tcell.KeyHome:
		edit = move((*engine.Engine).MoveLineStart)
	case tcell.KeyEnd:
		edit = move((*engine.Engine).MoveLineEnd)
	default:
		return nil
	}
	if err := u.app.Edit(edit); err != nil {
		u.report(err)
	}
	return nil
}

func insert(text string) func(*engine.Engine) error {
	return func(doc *engine.Engine) error {
		_, err := doc.InsertAtCursor(text)
		return err
	}
}

func move(fn func(*engine.Engine)) func(*engine.Engine) error {
	return func(doc *engine.Engine) error {
		fn(doc)
		return nil
	}
}

// quit returns app.ErrQuit, asking once when the document has unsaved
// changes.
func (u *UI) quit() error {
	var modified bool
	_ = u.app.Edit(func(doc *engine.Engine) error {
		modified = doc.Modified()
		return nil
	})
	if modified && !u.quitOnce {
		u.quitOnce = true
		u.Notify(app.SeverityWarning, "Unsaved changes, press Ctrl+Q again to quit")
		return nil
	}
	return app.ErrQuit
}

func (u *UI) openPrompt(kind promptKind) {
	u.mu.Lock()
	u.prompt = kind
	u.input = u.input[:0]
	u.mu.Unlock()
}

func (u *UI) closePrompt() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	text := string(u.input)
	u.prompt = promptNone
	u.input = u.input[:0]
	return text
}

func (u *UI) closePanel() {
	u.mu.Lock()
	u.panelOpen = false
	u.mu.Unlock()
}

func (u *UI) report(err error) {
	sev, msg := app.UserMessage(err)
	if msg != "" {
		u.Notify(sev, msg)
	}
}
