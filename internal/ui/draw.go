package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/codemate/internal/app"
	"github.com/dshills/codemate/internal/engine"
	"github.com/dshills/codemate/internal/engine/buffer"
	"github.com/dshills/codemate/internal/presenter"
)

const panelMaxRows = 10

type lineView struct {
	start buffer.ByteOffset
	text  string
}

// frame is a copy of the document state taken on the task loop.
type frame struct {
	ok       bool
	path     string
	language string
	modified bool
	cursor   buffer.Point
	tabWidth int
	total    uint32
	lines    []lineView
}

// view is a copy of the UI state for one draw.
type view struct {
	theme      Theme
	mark       *buffer.Range
	highlight  *buffer.Range
	status     string
	message    string
	messageSev app.Severity
	awaiting   bool
	rows       []presenter.Row
	panelOpen  bool
	selected   int
	prompt     promptKind
	input      string
}

func (u *UI) snapshotView() view {
	u.mu.Lock()
	defer u.mu.Unlock()
	v := view{
		theme:      u.theme,
		mark:       u.mark,
		status:     u.status,
		message:    u.message,
		messageSev: u.messageSev,
		awaiting:   u.pending != nil,
		rows:       u.rows,
		panelOpen:  u.panelOpen,
		selected:   u.selected,
		prompt:     u.prompt,
		input:      string(u.input),
	}
	if u.highlight != nil && u.now().Before(u.highlightUntil) {
		v.highlight = u.highlight
	}
	return v
}

// snapshotDoc copies the lines visible in an editor of the given height,
// scrolling so the cursor stays visible.
func (u *UI) snapshotDoc(height int) frame {
	var f frame
	_ = u.app.Edit(func(doc *engine.Engine) error {
		f.ok = true
		f.path = doc.Path()
		f.language = doc.LanguageID()
		f.modified = doc.Modified()
		f.cursor = doc.CursorPoint()
		f.tabWidth = doc.TabWidth()
		f.total = doc.LineCount()

		line := int(f.cursor.Line)
		if line < u.top {
			u.top = line
		}
		if height > 0 && line >= u.top+height {
			u.top = line - height + 1
		}
		for i := u.top; i < u.top+height && i < int(f.total); i++ {
			f.lines = append(f.lines, lineView{
				start: doc.LineStartOffset(uint32(i)),
				text:  doc.LineText(uint32(i)),
			})
		}
		return nil
	})
	if f.tabWidth <= 0 {
		f.tabWidth = 4
	}
	return f
}

func (u *UI) draw() {
	s := u.screen
	s.Clear()
	width, height := s.Size()
	if width <= 0 || height < 3 {
		s.Show()
		return
	}

	v := u.snapshotView()
	msgRow := height - 1
	statusRow := height - 2
	panelHeight := 0
	if v.panelOpen {
		panelHeight = min(max(len(v.rows), 1)+1, panelMaxRows+1, statusRow-1)
	}
	editorHeight := statusRow - panelHeight

	f := u.snapshotDoc(editorHeight)
	cursorX, cursorY := -1, -1
	if f.ok {
		cursorX, cursorY = u.drawEditor(f, v, width, editorHeight)
	} else {
		drawText(s, 0, 0, width, "No file open", v.theme.Text.Dim(true))
	}
	if v.panelOpen {
		drawPanel(s, v, statusRow-panelHeight, width, panelHeight)
	}
	drawStatus(s, f, v, statusRow, width)

	promptX, prompting := drawMessage(s, v, msgRow, width)
	switch {
	case prompting:
		s.ShowCursor(promptX, msgRow)
	case cursorX >= 0 && !v.panelOpen && !v.awaiting:
		s.ShowCursor(cursorX, cursorY)
	default:
		s.HideCursor()
	}
	s.Show()
}

// drawEditor draws the visible lines and returns the cursor cell.
func (u *UI) drawEditor(f frame, v view, width, height int) (int, int) {
	cursorX, cursorY := -1, -1
	for row, lv := range f.lines {
		if row >= height {
			break
		}
		cursorLine := int(f.cursor.Line) == u.top+row
		x := 0
		for i, r := range lv.text {
			if cursorLine && i == int(f.cursor.Column) {
				cursorX, cursorY = x, row
			}
			if x >= width {
				break
			}
			if r == '\r' {
				continue
			}
			style := styleAt(v, lv.start+buffer.ByteOffset(i))
			if r == '\t' {
				n := f.tabWidth - x%f.tabWidth
				for j := 0; j < n && x < width; j++ {
					u.screen.SetContent(x, row, ' ', nil, style)
					x++
				}
				continue
			}
			w := runewidth.RuneWidth(r)
			if w == 0 {
				continue
			}
			u.screen.SetContent(x, row, r, nil, style)
			x += w
		}
		if cursorLine && cursorX < 0 {
			cursorX, cursorY = min(x, width-1), row
		}
	}
	return cursorX, cursorY
}

func styleAt(v view, off buffer.ByteOffset) tcell.Style {
	switch {
	case v.mark != nil && off >= v.mark.Start && off < v.mark.End:
		return v.theme.Staged
	case v.highlight != nil && off >= v.highlight.Start && off < v.highlight.End:
		return v.theme.Revealed
	default:
		return v.theme.Text
	}
}

func drawPanel(s tcell.Screen, v view, top, width, height int) {
	drawText(s, 0, top, width, "AI updates  (Enter reveal, u undo, r redo, Esc close)", v.theme.PanelHead)
	if len(v.rows) == 0 {
		drawText(s, 0, top+1, width, "No AI updates", v.theme.Text.Dim(true))
		return
	}

	visible := height - 1
	first := 0
	if v.selected >= visible {
		first = v.selected - visible + 1
	}
	for i := 0; i < visible && first+i < len(v.rows); i++ {
		idx := first + i
		style := v.theme.Text
		if idx == v.selected {
			style = v.theme.Selected
		}
		fill(s, 0, top+1+i, width, style)
		drawText(s, 0, top+1+i, width, FormatRow(v.rows[idx]), style)
	}
}

// FormatRow renders a history row as one line of the panel.
func FormatRow(r presenter.Row) string {
	return fmt.Sprintf("#%-4d %-10s %s  %-14s %s", r.ID, r.Label, r.Time, r.Ago, r.Preview)
}

func drawStatus(s tcell.Screen, f frame, v view, row, width int) {
	style := v.theme.Status
	fill(s, 0, row, width, style)

	left := " [no file]"
	if f.ok {
		name := filepath.Base(f.path)
		if f.path == "" {
			name = "[scratch]"
		}
		left = " " + name
		if f.modified {
			left += " [+]"
		}
	}
	if v.status != "" {
		left += "  " + v.status
	}

	right := ""
	if f.ok {
		right = fmt.Sprintf("%s  Ln %d, Col %d ", f.language, f.cursor.Line+1, f.cursor.Column+1)
	}
	rw := runewidth.StringWidth(right)
	drawText(s, 0, row, max(width-rw-1, 0), left, style)
	if rw < width {
		drawText(s, width-rw, row, rw, right, style)
	}
}

// drawMessage draws the message line and returns the prompt cursor
// column when a prompt is open.
func drawMessage(s tcell.Screen, v view, row, width int) (int, bool) {
	switch {
	case v.prompt == promptChat:
		x := drawText(s, 0, row, width, "Chat: "+v.input, v.theme.Text)
		return min(x, width-1), true
	case v.prompt == promptCommand:
		x := drawText(s, 0, row, width, ": "+v.input, v.theme.Text)
		return min(x, width-1), true
	case v.awaiting:
		drawText(s, 0, row, width, "Apply AI suggestion? [y]es / [n]o", v.theme.Warning.Bold(true))
	case v.message != "":
		drawText(s, 0, row, width, v.message, v.theme.Severity(v.messageSev))
	default:
		drawText(s, 0, row, width, helpLine(), v.theme.Text.Dim(true))
	}
	return 0, false
}

func helpLine() string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.Label()+" "+b.Help)
	}
	return strings.Join(parts, "  ")
}

// drawText draws s clipped to maxWidth cells and returns the column after
// the last cell drawn.
func drawText(s tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) int {
	end := x + maxWidth
	for _, r := range runewidth.Truncate(text, maxWidth, "…") {
		w := runewidth.RuneWidth(r)
		if w == 0 || x+w > end {
			continue
		}
		s.SetContent(x, y, r, nil, style)
		x += w
	}
	return x
}

func fill(s tcell.Screen, x, y, width int, style tcell.Style) {
	for i := x; i < x+width; i++ {
		s.SetContent(i, y, ' ', nil, style)
	}
}
