package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	e := New()
	assert.Equal(t, ByteOffset(0), e.Len())
	assert.Equal(t, "", e.Text())
	assert.Equal(t, PlainText, e.LanguageID())
	assert.False(t, e.Modified())
}

func TestNewWithContent(t *testing.T) {
	e := New(WithContent("package main\n"), WithPath("main.go"))
	assert.Equal(t, "package main\n", e.Text())
	assert.Equal(t, "go", e.LanguageID())

	e = New(WithPath("main.go"), WithLanguageID("gotmpl"))
	assert.Equal(t, "gotmpl", e.LanguageID())
}

func TestInsertMovesCursor(t *testing.T) {
	e := New(WithContent("ab"))
	e.SetCursor(1)

	r, err := e.InsertAtCursor("XYZ")
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 1, End: 4}, r)
	assert.Equal(t, "aXYZb", e.Text())
	assert.Equal(t, ByteOffset(4), e.Cursor(), "cursor after inserted text")

	// An edit before the cursor shifts it.
	_, err = e.Insert(0, "__")
	require.NoError(t, err)
	assert.Equal(t, ByteOffset(6), e.Cursor())

	// A deletion spanning the cursor pulls it to the deletion start.
	require.NoError(t, e.Delete(3, 7))
	assert.Equal(t, ByteOffset(3), e.Cursor())
	assert.True(t, e.Modified())
}

func TestInsertOutOfRange(t *testing.T) {
	e := New(WithContent("abc"))
	_, err := e.Insert(10, "x")
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
}

func TestSetCursorClamps(t *testing.T) {
	e := New(WithContent("abc"))
	e.SetCursor(99)
	assert.Equal(t, ByteOffset(3), e.Cursor())
	e.SetCursor(-1)
	assert.Equal(t, ByteOffset(0), e.Cursor())
}

func TestMoveHorizontalMultibyte(t *testing.T) {
	e := New(WithContent("héllo"))
	e.SetCursor(1)

	e.MoveRight()
	assert.Equal(t, ByteOffset(3), e.Cursor())
	e.MoveLeft()
	assert.Equal(t, ByteOffset(1), e.Cursor())
	e.MoveLeft()
	e.MoveLeft()
	assert.Equal(t, ByteOffset(0), e.Cursor())
}

func TestMoveVerticalKeepsGoalColumn(t *testing.T) {
	e := New(WithContent("abcdef\nab\nabcdef"))
	e.SetCursor(5)

	e.MoveDown()
	assert.Equal(t, Point{Line: 1, Column: 2}, e.CursorPoint())
	e.MoveDown()
	assert.Equal(t, Point{Line: 2, Column: 5}, e.CursorPoint())
	e.MoveDown()
	assert.Equal(t, Point{Line: 2, Column: 5}, e.CursorPoint(), "last line")
	e.MoveUp()
	e.MoveUp()
	assert.Equal(t, ByteOffset(5), e.Cursor())

	e.MoveLineEnd()
	assert.Equal(t, ByteOffset(6), e.Cursor())
	e.MoveLineStart()
	assert.Equal(t, ByteOffset(0), e.Cursor())
}

func TestBackspaceAndDeleteForward(t *testing.T) {
	e := New(WithContent("abc"))

	require.NoError(t, e.Backspace())
	assert.Equal(t, "abc", e.Text())

	e.SetCursor(2)
	require.NoError(t, e.Backspace())
	assert.Equal(t, "ac", e.Text())
	assert.Equal(t, ByteOffset(1), e.Cursor())

	require.NoError(t, e.DeleteForward())
	assert.Equal(t, "a", e.Text())
	require.NoError(t, e.DeleteForward())
	assert.Equal(t, "a", e.Text())
}

func TestContextBefore(t *testing.T) {
	e := New(WithContent("l1\nl2\nl3\nl4\nl5\nl6\nl7"))
	e.SetCursor(19)

	assert.Equal(t, "l2\nl3\nl4\nl5\nl6\nl", e.ContextBefore(5))
	assert.Equal(t, "l", e.ContextBefore(0))

	e.SetCursor(4)
	assert.Equal(t, "l1\nl", e.ContextBefore(5))
}

func TestTrackerFollowsEngineEdits(t *testing.T) {
	e := New(WithContent("one\ntwo\n"))
	e.Tracker().Track(1, Range{Start: 4, End: 7})

	_, err := e.Insert(0, "zero\n")
	require.NoError(t, err)

	r, ok := e.Tracker().Range(1)
	require.True(t, ok)
	assert.Equal(t, "two", e.TextRange(r.Start, r.End))
}

func TestOpenSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.py")
	require.NoError(t, os.WriteFile(path, []byte("print(1)\n"), 0o644))

	e, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "python", e.LanguageID())
	assert.Equal(t, path, e.Path())

	_, err = e.Insert(e.Len(), "print(2)\n")
	require.NoError(t, err)
	require.True(t, e.Modified())
	require.NoError(t, e.Save())
	assert.False(t, e.Modified())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "print(1)\nprint(2)\n", string(data))
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "new.rs")

	e, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "", e.Text())
	assert.Equal(t, "rust", e.LanguageID())

	require.NoError(t, e.Save())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveWithoutPath(t *testing.T) {
	e := New(WithContent("x"))
	assert.ErrorIs(t, e.Save(), ErrNoPath)

	path := filepath.Join(t.TempDir(), "x.ts")
	require.NoError(t, e.SaveAs(path))
	assert.Equal(t, "typescript", e.LanguageID())
	assert.Equal(t, path, e.Path())
}

func TestDetectLanguageID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"/src/App.TSX", "typescriptreact"},
		{"script.py", "python"},
		{"Dockerfile", "dockerfile"},
		{"Makefile", "makefile"},
		{"notes.txt", PlainText},
		{"", PlainText},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguageID(tt.path))
		})
	}
}
