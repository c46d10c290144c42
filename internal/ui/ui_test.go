package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codemate/internal/app"
	"github.com/dshills/codemate/internal/completion"
	"github.com/dshills/codemate/internal/config"
	"github.com/dshills/codemate/internal/engine"
	"github.com/dshills/codemate/internal/engine/buffer"
	"github.com/dshills/codemate/internal/engine/history"
	"github.com/dshills/codemate/internal/presenter"
	"github.com/dshills/codemate/internal/preview"
)

type stubProvider struct {
	mu    sync.Mutex
	reply string
	reqs  []completion.Request
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(_ context.Context, req completion.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reqs = append(p.reqs, req)
	return p.reply, nil
}

type harness struct {
	t      *testing.T
	ui     *UI
	screen tcell.SimulationScreen
	app    *app.App
	done   chan error
}

func start(t *testing.T, reply string) *harness {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nkey = \"sk-test\"\n"), 0o644))
	store, err := config.Open(path, config.WithLookup(func(string) (string, bool) { return "", false }))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	doc := engine.New(engine.WithContent("package main\n"), engine.WithPath(filepath.Join(t.TempDir(), "main.go")))
	doc.SetCursor(doc.Len())

	screen := tcell.NewSimulationScreen("UTF-8")
	u := New(screen)
	a, err := app.New(store,
		app.WithHost(u),
		app.WithProvider(&stubProvider{reply: reply}),
		app.WithDocument(doc),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{t: t, ui: u, screen: screen, app: a, done: make(chan error, 1)}
	go func() { h.done <- u.Run(ctx, a) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Error("Run did not return")
		}
		a.Close()
	})

	select {
	case <-u.started:
	case <-time.After(2 * time.Second):
		t.Fatal("UI did not start")
	}
	return h
}

func (h *harness) key(k tcell.Key) {
	h.screen.InjectKey(k, 0, tcell.ModNone)
}

func (h *harness) alt(r rune) {
	h.screen.InjectKey(tcell.KeyRune, r, tcell.ModAlt)
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.screen.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}
}

func (h *harness) text() string {
	return h.app.Document().Text()
}

func (h *harness) row(y int) string {
	cells, w, _ := h.screen.GetContents()
	var sb strings.Builder
	for x := 0; x < w && y*w+x < len(cells); x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(c.Runes[0])
	}
	return strings.TrimRight(sb.String(), " ")
}

func (h *harness) screenContains(s string) bool {
	_, _, height := h.screen.GetContents()
	for y := 0; y < height; y++ {
		if strings.Contains(h.row(y), s) {
			return true
		}
	}
	return false
}

func (h *harness) eventually(cond func() bool, msg string) {
	h.t.Helper()
	require.Eventually(h.t, cond, 2*time.Second, 5*time.Millisecond, msg)
}

func TestTypingEditsDocument(t *testing.T) {
	h := start(t, "")

	h.typeText("xy")
	h.key(tcell.KeyBackspace2)
	h.key(tcell.KeyEnter)

	h.eventually(func() bool { return h.text() == "package main\nx\n" }, "document not edited")
	h.eventually(func() bool { return h.row(0) == "package main" && h.row(1) == "x" }, "screen not redrawn")
}

func TestCompletionAcceptedWithY(t *testing.T) {
	h := start(t, "```go\nfunc main() {}\n```")

	h.alt('c')
	h.eventually(h.ui.Awaiting, "suggestion not staged")
	h.eventually(func() bool { return h.screenContains("Apply AI suggestion?") }, "confirm prompt not shown")
	assert.Equal(t, "package main\nfunc main() {}", h.text())

	cells, w, _ := h.screen.GetContents()
	staged := cells[1*w+0]
	assert.Equal(t, h.ui.theme.Staged, staged.Style)

	h.typeText("y")
	h.eventually(func() bool { return !h.ui.Awaiting() }, "still awaiting")
	h.eventually(func() bool {
		_, msg := h.ui.Message()
		return msg == "Applied AI update #1"
	}, "no applied notice")
	assert.Equal(t, "package main\nfunc main() {}", h.text())
	assert.Equal(t, 1, h.app.History().Len())
}

func TestCompletionRejectedWithN(t *testing.T) {
	h := start(t, "func main() {}")

	h.alt('c')
	h.eventually(h.ui.Awaiting, "suggestion not staged")
	h.typeText("n")

	h.eventually(func() bool { return h.text() == "package main\n" }, "suggestion not removed")
	assert.False(t, h.ui.Awaiting())
	assert.Equal(t, 0, h.app.History().Len())
}

func TestEditingBlockedWhileAwaiting(t *testing.T) {
	h := start(t, "func main() {}")

	h.alt('c')
	h.eventually(h.ui.Awaiting, "suggestion not staged")
	h.typeText("z")

	h.eventually(func() bool {
		_, msg := h.ui.Message()
		return strings.HasPrefix(msg, "Accept (y) or reject (n)")
	}, "no warning")
	assert.NotContains(t, h.text(), "z")
}

func TestChatPrompt(t *testing.T) {
	h := start(t, "fmt.Println(\"hi\")")

	h.alt('a')
	h.typeText("print hi")
	h.eventually(func() bool { return h.screenContains("Chat: print hi") }, "prompt not drawn")
	h.key(tcell.KeyEnter)

	h.eventually(h.ui.Awaiting, "chat reply not staged")
	h.key(tcell.KeyEnter)
	h.eventually(func() bool { return h.app.History().Len() == 1 }, "not accepted")

	recs := h.app.History().History()
	assert.Equal(t, history.KindChat, recs[0].Kind)
}

func TestChatPromptEscape(t *testing.T) {
	h := start(t, "x")

	h.alt('a')
	h.typeText("abc")
	h.key(tcell.KeyEscape)
	h.typeText("q")

	h.eventually(func() bool { return h.text() == "package main\nq" }, "typing did not return to the editor")
}

func TestHistoryPanelRevealAndUndo(t *testing.T) {
	h := start(t, "func main() {}")

	h.alt('c')
	h.eventually(h.ui.Awaiting, "suggestion not staged")
	h.typeText("y")
	h.eventually(func() bool { return h.app.History().Len() == 1 }, "not accepted")

	h.alt('h')
	h.eventually(h.ui.PanelOpen, "panel not open")
	h.eventually(func() bool { return h.screenContains("#1") && h.screenContains("AI updates") }, "row not drawn")

	h.key(tcell.KeyEnter)
	h.eventually(func() bool {
		h.ui.mu.Lock()
		defer h.ui.mu.Unlock()
		return h.ui.highlight != nil && *h.ui.highlight == buffer.Range{Start: 13, End: 27}
	}, "not revealed")

	h.typeText("u")
	h.eventually(func() bool { return h.text() == "package main\n" }, "not undone")
	h.typeText("r")
	h.eventually(func() bool { return h.text() == "package main\nfunc main() {}" }, "not redone")

	h.key(tcell.KeyEscape)
	h.eventually(func() bool { return !h.ui.PanelOpen() }, "panel not closed")
}

func TestUndoWithNothingToUndo(t *testing.T) {
	h := start(t, "")

	h.alt('u')
	h.eventually(func() bool {
		sev, msg := h.ui.Message()
		return sev == app.SeverityInfo && msg == "No AI updates to undo"
	}, "no notice")
}

func TestCommandPrompt(t *testing.T) {
	h := start(t, "")

	h.alt('x')
	h.typeText("bogus")
	h.key(tcell.KeyEnter)
	h.eventually(func() bool {
		_, msg := h.ui.Message()
		return strings.Contains(msg, "unknown command")
	}, "unknown command not reported")

	h.alt('x')
	h.typeText("quit")
	h.key(tcell.KeyEnter)
	select {
	case err := <-h.done:
		assert.NoError(t, err)
		h.done <- err
	case <-time.After(2 * time.Second):
		t.Fatal("quit command did not stop the UI")
	}
}

func TestCommandPromptMessage(t *testing.T) {
	h := start(t, "func main() {}")

	h.alt('c')
	h.eventually(h.ui.Awaiting, "suggestion not staged")
	h.typeText("y")
	h.eventually(func() bool { return h.app.History().Len() == 1 }, "not accepted")

	h.alt('x')
	h.typeText(`{"command":"undo"}`)
	h.key(tcell.KeyEnter)
	h.eventually(func() bool { return h.text() == "package main\n" }, "not undone")

	h.alt('x')
	h.typeText(`{"command":"reveal","id":1.5}`)
	h.key(tcell.KeyEnter)
	h.eventually(func() bool {
		sev, msg := h.ui.Message()
		return sev == app.SeverityError && strings.Contains(msg, "whole number")
	}, "fractional id not rejected")
}

func TestQuitAsksWhenModified(t *testing.T) {
	h := start(t, "")

	h.typeText("x")
	h.eventually(func() bool { return strings.HasSuffix(h.text(), "x") }, "not typed")
	h.key(tcell.KeyCtrlQ)
	h.eventually(func() bool {
		_, msg := h.ui.Message()
		return strings.HasPrefix(msg, "Unsaved changes")
	}, "no unsaved warning")

	h.key(tcell.KeyCtrlQ)
	select {
	case err := <-h.done:
		assert.NoError(t, err)
		h.done <- err
	case <-time.After(2 * time.Second):
		t.Fatal("second Ctrl+Q did not quit")
	}
}

func TestSaveKey(t *testing.T) {
	h := start(t, "")

	h.typeText("x")
	h.key(tcell.KeyCtrlS)
	h.eventually(func() bool {
		_, msg := h.ui.Message()
		return strings.HasPrefix(msg, "Saved ")
	}, "not saved")

	data, err := os.ReadFile(h.app.Document().Path())
	require.NoError(t, err)
	assert.Equal(t, "package main\nx", string(data))
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want string
		ok   bool
	}{
		{"alt c", tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModAlt), app.CmdComplete, true},
		{"alt shift c", tcell.NewEventKey(tcell.KeyRune, 'C', tcell.ModAlt), app.CmdComplete, true},
		{"plain c", tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone), "", false},
		{"ctrl s", tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl), app.CmdSave, true},
		{"ctrl q", tcell.NewEventKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl), app.CmdQuit, true},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := lookup(tt.ev)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, b.Name)
		})
	}
}

func TestBindingLabels(t *testing.T) {
	labels := map[string]string{}
	for _, b := range Bindings() {
		labels[b.Name] = b.Label()
	}
	assert.Equal(t, "Alt+C", labels[app.CmdComplete])
	assert.Equal(t, "Alt+H", labels[app.CmdHistory])
	assert.Equal(t, "Ctrl-S", labels[app.CmdSave])
	assert.Contains(t, helpLine(), "Alt+C complete")
}

func TestThemeFrom(t *testing.T) {
	th := ThemeFrom(config.PreviewConfig{Color: "#808080", HighlightColor: "#abc"})
	fg, _, attrs := th.Staged.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0x80, 0x80, 0x80), fg)
	assert.NotZero(t, attrs&tcell.AttrItalic)
	_, bg, _ := th.Revealed.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0xaa, 0xbb, 0xcc), bg)

	bad := ThemeFrom(config.PreviewConfig{Color: "grey"})
	fg, _, _ = bad.Staged.Decompose()
	assert.Equal(t, tcell.ColorDefault, fg)

	assert.Equal(t, th.Error, th.Severity(app.SeverityError))
	assert.Equal(t, th.Warning, th.Severity(app.SeverityWarning))
	assert.Equal(t, th.Info, th.Severity(app.SeverityInfo))
}

func TestFormatRow(t *testing.T) {
	row := presenter.Row{ID: 3, Label: "Completion", Time: "10:04:05", Ago: "2 minutes ago", Preview: "func main() {"}
	assert.Equal(t, "#3    Completion 10:04:05  2 minutes ago  func main() {", FormatRow(row))
}

func TestHostState(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	u := New(tcell.NewSimulationScreen("UTF-8"),
		WithClock(func() time.Time { return now }),
		WithHighlightDuration(time.Hour),
	)

	u.Notify(app.SeverityWarning, "careful")
	sev, msg := u.Message()
	assert.Equal(t, app.SeverityWarning, sev)
	assert.Equal(t, "careful", msg)

	u.SetStatus("Generating code...")
	assert.Equal(t, "Generating code...", u.Status())

	u.Mark(buffer.Range{Start: 1, End: 4})
	u.AwaitDecision(preview.Proposal{Content: "abc"})
	assert.True(t, u.Awaiting())
	u.Clear()
	assert.False(t, u.Awaiting())
	assert.Nil(t, u.snapshotView().mark)

	u.Highlight(buffer.Range{Start: 2, End: 5})
	require.NotNil(t, u.snapshotView().highlight)
	now = now.Add(2 * time.Hour)
	assert.Nil(t, u.snapshotView().highlight)

	rows := []presenter.Row{{ID: 1}, {ID: 2}, {ID: 3}}
	u.ShowHistory(rows)
	assert.True(t, u.PanelOpen())
	u.mu.Lock()
	u.selected = 2
	u.mu.Unlock()
	u.HistoryChanged(rows[:1])
	assert.Equal(t, 0, u.snapshotView().selected)
}

func TestApplyConfig(t *testing.T) {
	u := New(tcell.NewSimulationScreen("UTF-8"))
	cfg := config.Default()
	cfg.Preview.Color = "#ff0000"
	cfg.Preview.HighlightDuration = config.Duration(time.Second)
	u.ApplyConfig(cfg)

	fg, _, _ := u.snapshotView().theme.Staged.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0xff, 0, 0), fg)
	assert.Equal(t, time.Second, u.highlightFor)
}
