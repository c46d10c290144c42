package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/dshills/codemate/internal/engine/buffer"
	"github.com/dshills/codemate/internal/engine/tracking"
)

// Re-export commonly used types for convenience.
type (
	// ByteOffset is a byte position in the buffer.
	ByteOffset = buffer.ByteOffset

	// Point represents a line/column position.
	Point = buffer.Point

	// Range represents a byte range in the buffer.
	Range = buffer.Range

	// Change describes one applied edit.
	Change = buffer.Change

	// LineEnding specifies the line ending style.
	LineEnding = buffer.LineEnding

	// RevisionID uniquely identifies a buffer revision.
	RevisionID = buffer.RevisionID
)

// Re-export constants.
const (
	LineEndingLF   = buffer.LineEndingLF
	LineEndingCRLF = buffer.LineEndingCRLF
)

// Engine is one open document.
type Engine struct {
	mu sync.RWMutex

	// Core components
	buf     *buffer.Buffer
	tracker *tracking.Tracker

	// cursor state has its own lock; it is updated from buffer observers
	cmu       sync.Mutex
	cursor    ByteOffset
	goalCol   int64
	hasGoal   bool
	onCursors []func(ByteOffset)

	// File state
	path          string
	languageID    string
	savedRevision RevisionID

	// Configuration
	tabWidth      int
	lineEnding    buffer.LineEnding
	lineEndingSet bool

	// Initialization
	initContent string
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		tabWidth:   DefaultTabWidth,
		lineEnding: buffer.LineEndingLF,
	}
	for _, opt := range opts {
		opt(e)
	}

	if !e.lineEndingSet && e.initContent != "" {
		e.lineEnding = buffer.DetectLineEnding(e.initContent)
	}
	bufOpts := []buffer.Option{
		buffer.WithTabWidth(e.tabWidth),
		buffer.WithLineEnding(e.lineEnding),
	}
	if e.initContent != "" {
		e.buf = buffer.NewBufferFromString(e.initContent, bufOpts...)
	} else {
		e.buf = buffer.NewBuffer(bufOpts...)
	}
	e.initContent = ""

	if e.languageID == "" {
		e.languageID = DetectLanguageID(e.path)
	}

	e.tracker = tracking.NewTracker()
	e.tracker.Attach(e.buf)
	e.buf.OnChange(e.transformCursor)
	e.savedRevision = e.buf.RevisionID()
	return e
}

// Open loads path into a new Engine. A missing file yields an empty
// document that will be created on Save.
func Open(path string, opts ...Option) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	all := make([]Option, 0, len(opts)+2)
	all = append(all, WithPath(path), WithContent(string(data)))
	all = append(all, opts...)
	return New(all...), nil
}

// ============================================================================
// File operations
// ============================================================================

// Path returns the file path of the document, or "".
func (e *Engine) Path() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.path
}

// LanguageID returns the language of the document.
func (e *Engine) LanguageID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.languageID
}

// SetLanguageID overrides the document language.
func (e *Engine) SetLanguageID(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.languageID = id
}

// Save writes the document to its path.
func (e *Engine) Save() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.path == "" {
		return ErrNoPath
	}
	return e.saveLocked(e.path)
}

// SaveAs writes the document to path and makes it the document's path.
// The language id is re-detected from the new name.
func (e *Engine) SaveAs(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.saveLocked(path); err != nil {
		return err
	}
	e.path = path
	e.languageID = DetectLanguageID(path)
	return nil
}

func (e *Engine) saveLocked(path string) error {
	rev := e.buf.RevisionID()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(e.buf.Text()), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	e.savedRevision = rev
	return nil
}

// Modified reports whether the document changed since it was loaded or
// last saved.
func (e *Engine) Modified() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.RevisionID() != e.savedRevision
}

// ============================================================================
// Read Operations
// ============================================================================

// Buffer returns the underlying buffer.
func (e *Engine) Buffer() *buffer.Buffer {
	return e.buf
}

// Tracker returns the range tracker attached to the buffer.
func (e *Engine) Tracker() *tracking.Tracker {
	return e.tracker
}

// Text returns the full buffer content.
func (e *Engine) Text() string {
	return e.buf.Text()
}

// TextRange returns text in the given byte range.
func (e *Engine) TextRange(start, end ByteOffset) string {
	return e.buf.TextRange(start, end)
}

// Len returns the total byte length of the buffer.
func (e *Engine) Len() ByteOffset {
	return e.buf.Len()
}

// LineCount returns the number of lines.
func (e *Engine) LineCount() uint32 {
	return e.buf.LineCount()
}

// LineText returns the text of a specific line (without newline).
func (e *Engine) LineText(line uint32) string {
	return e.buf.LineText(line)
}

// LineStartOffset returns the byte offset of the start of a line.
func (e *Engine) LineStartOffset(line uint32) ByteOffset {
	return e.buf.LineStartOffset(line)
}

// OffsetToPoint converts a byte offset to line/column.
func (e *Engine) OffsetToPoint(offset ByteOffset) Point {
	return e.buf.OffsetToPoint(offset)
}

// PointToOffset converts line/column to a byte offset.
func (e *Engine) PointToOffset(p Point) ByteOffset {
	return e.buf.PointToOffset(p)
}

// RevisionID returns the current buffer revision.
func (e *Engine) RevisionID() RevisionID {
	return e.buf.RevisionID()
}

// TabWidth returns the configured tab width.
func (e *Engine) TabWidth() int {
	return e.buf.TabWidth()
}

// ContextBefore returns the text from the start of the line n lines above
// the cursor up to the cursor.
func (e *Engine) ContextBefore(n int) string {
	if n < 0 {
		n = 0
	}
	cur := e.Cursor()
	p := e.buf.OffsetToPoint(cur)
	first := uint32(0)
	if int(p.Line) > n {
		first = p.Line - uint32(n)
	}
	return e.buf.TextRange(e.buf.LineStartOffset(first), cur)
}

// ============================================================================
// Write Operations
// ============================================================================

// Insert inserts text at offset and returns the range the text now
// occupies.
func (e *Engine) Insert(offset ByteOffset, text string) (Range, error) {
	end, err := e.buf.Insert(offset, text)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: offset, End: end}, nil
}

// InsertAtCursor inserts text at the cursor.
func (e *Engine) InsertAtCursor(text string) (Range, error) {
	return e.Insert(e.Cursor(), text)
}

// Delete removes text in [start, end).
func (e *Engine) Delete(start, end ByteOffset) error {
	return e.buf.Delete(start, end)
}

// Backspace deletes the character before the cursor.
func (e *Engine) Backspace() error {
	cur := e.Cursor()
	if cur == 0 {
		return nil
	}
	prev := e.prevCharOffset(cur)
	return e.buf.Delete(prev, cur)
}

// DeleteForward deletes the character under the cursor.
func (e *Engine) DeleteForward() error {
	cur := e.Cursor()
	if cur >= e.buf.Len() {
		return nil
	}
	return e.buf.Delete(cur, e.nextCharOffset(cur))
}

// ============================================================================
// Cursor
// ============================================================================

// Cursor returns the cursor offset.
func (e *Engine) Cursor() ByteOffset {
	e.cmu.Lock()
	defer e.cmu.Unlock()
	return e.cursor
}

// CursorPoint returns the cursor as line/column.
func (e *Engine) CursorPoint() Point {
	return e.buf.OffsetToPoint(e.Cursor())
}

// SetCursor moves the cursor to offset, clamped to the buffer.
func (e *Engine) SetCursor(offset ByteOffset) {
	n := e.buf.Len()
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	e.setCursor(offset, false)
}

// OnCursorMove registers fn to be called whenever the cursor changes.
func (e *Engine) OnCursorMove(fn func(ByteOffset)) {
	e.cmu.Lock()
	defer e.cmu.Unlock()
	e.onCursors = append(e.onCursors, fn)
}

func (e *Engine) setCursor(offset ByteOffset, keepGoal bool) {
	e.cmu.Lock()
	e.cursor = offset
	if !keepGoal {
		e.hasGoal = false
	}
	fns := slices.Clone(e.onCursors)
	e.cmu.Unlock()

	for _, fn := range fns {
		fn(offset)
	}
}

// transformCursor keeps the cursor on the same text through an edit.
func (e *Engine) transformCursor(c buffer.Change) {
	edit := c.Edit()
	e.cmu.Lock()
	e.cursor = tracking.TransformOffsetSticky(e.cursor, edit, false)
	e.hasGoal = false
	e.cmu.Unlock()
}

// MoveLeft moves the cursor one character left.
func (e *Engine) MoveLeft() {
	e.setCursor(e.prevCharOffset(e.Cursor()), false)
}

// MoveRight moves the cursor one character right.
func (e *Engine) MoveRight() {
	e.setCursor(e.nextCharOffset(e.Cursor()), false)
}

// MoveUp moves the cursor one line up, keeping the goal column.
func (e *Engine) MoveUp() {
	e.moveVertical(-1)
}

// MoveDown moves the cursor one line down, keeping the goal column.
func (e *Engine) MoveDown() {
	e.moveVertical(1)
}

// MoveLineStart moves the cursor to the start of its line.
func (e *Engine) MoveLineStart() {
	p := e.CursorPoint()
	e.setCursor(e.buf.LineStartOffset(p.Line), false)
}

// MoveLineEnd moves the cursor to the end of its line.
func (e *Engine) MoveLineEnd() {
	p := e.CursorPoint()
	e.setCursor(e.buf.LineEndOffset(p.Line), false)
}

func (e *Engine) moveVertical(delta int) {
	p := e.CursorPoint()
	line := int(p.Line) + delta
	if line < 0 || line >= int(e.buf.LineCount()) {
		return
	}

	e.cmu.Lock()
	if !e.hasGoal {
		e.goalCol = int64(p.Column)
		e.hasGoal = true
	}
	goal := e.goalCol
	e.cmu.Unlock()

	off := e.buf.PointToOffset(Point{Line: uint32(line), Column: uint32(goal)})
	off = e.alignToRune(off, e.buf.LineStartOffset(uint32(line)))
	e.setCursor(off, true)
}

func (e *Engine) prevCharOffset(off ByteOffset) ByteOffset {
	if off <= 0 {
		return 0
	}
	lo := off - utf8.UTFMax
	if lo < 0 {
		lo = 0
	}
	s := e.buf.TextRange(lo, off)
	_, size := utf8.DecodeLastRuneInString(s)
	if size == 0 {
		size = 1
	}
	prev := off - ByteOffset(size)
	// step over a CRLF pair as one character
	if prev > 0 && e.buf.TextRange(prev-1, off) == "\r\n" {
		prev--
	}
	return prev
}

func (e *Engine) nextCharOffset(off ByteOffset) ByteOffset {
	n := e.buf.Len()
	if off >= n {
		return n
	}
	if e.buf.TextRange(off, off+2) == "\r\n" {
		return off + 2
	}
	s := e.buf.TextRange(off, off+utf8.UTFMax)
	_, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		size = 1
	}
	return off + ByteOffset(size)
}

// alignToRune moves off back to the start of the rune containing it.
func (e *Engine) alignToRune(off, lineStart ByteOffset) ByteOffset {
	for off > lineStart {
		b := e.buf.TextRange(off, off+1)
		if b == "" || utf8.RuneStart(b[0]) {
			break
		}
		off--
	}
	return off
}
