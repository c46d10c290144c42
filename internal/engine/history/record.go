package history

import (
	"fmt"
	"time"

	"github.com/dshills/codemate/internal/engine/buffer"
)

// Kind tells where an accepted insertion came from.
type Kind uint8

const (
	// KindCompletion is an inline code completion.
	KindCompletion Kind = iota + 1
	// KindChat is code generated from a free-form chat prompt.
	KindChat
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCompletion:
		return "completion"
	case KindChat:
		return "chat"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k == KindCompletion || k == KindChat
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "completion":
		return KindCompletion, nil
	case "chat":
		return KindChat, nil
	}
	return 0, fmt.Errorf("unknown record kind %q", s)
}

// Record describes one accepted insertion.
//
// Range and Start describe where Content was inserted at acceptance time.
// They are never rewritten; the current location of the text is kept by
// the tracking package.
type Record struct {
	ID        int64
	Kind      Kind
	Range     buffer.Range
	Start     buffer.Point
	Content   string
	Language  string
	Timestamp time.Time
}

// String returns a short description for logs.
func (r Record) String() string {
	return fmt.Sprintf("#%d %s %s (%d bytes)", r.ID, r.Kind, r.Range, len(r.Content))
}
