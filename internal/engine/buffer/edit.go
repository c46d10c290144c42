package buffer

import "fmt"

// Edit replaces Range with NewText.
type Edit struct {
	Range   Range
	NewText string
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(offset ByteOffset, text string) Edit {
	return Edit{Range: Range{Start: offset, End: offset}, NewText: text}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(start, end ByteOffset) Edit {
	return Edit{Range: Range{Start: start, End: end}}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range)
	}
	return fmt.Sprintf("Replace%s with %q", e.Range, e.NewText)
}

// Delta returns the change in buffer length caused by this edit.
func (e Edit) Delta() ByteOffset {
	return ByteOffset(len(e.NewText)) - e.Range.Len()
}

// EditResult describes an applied edit.
type EditResult struct {
	OldRange Range  // range that was replaced
	NewRange Range  // range now holding the new text
	OldText  string // replaced text
	Delta    int64  // change in buffer length
}

// ChangeType categorizes a buffer change.
type ChangeType uint8

const (
	ChangeInsert ChangeType = iota
	ChangeDelete
	ChangeReplace
)

// String returns a string representation of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change is the notification delivered to OnChange observers.
type Change struct {
	Type     ChangeType
	Range    Range  // range before the change
	NewRange Range  // range after the change
	OldText  string // removed text
	NewText  string // inserted text
	Revision RevisionID
}

// Edit returns the change as the edit that produced it.
func (c Change) Edit() Edit {
	return Edit{Range: c.Range, NewText: c.NewText}
}

func classify(r Range, newText string) ChangeType {
	switch {
	case r.IsEmpty():
		return ChangeInsert
	case newText == "":
		return ChangeDelete
	default:
		return ChangeReplace
	}
}
