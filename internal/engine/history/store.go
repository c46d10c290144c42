package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/codemate/internal/engine/buffer"
)

// DefaultMaxUndo is the default undo stack capacity.
const DefaultMaxUndo = 10

// Common errors for history operations.
var (
	// ErrEmptyStack is returned when there is nothing to undo or redo.
	ErrEmptyStack = errors.New("empty stack")

	ErrNothingToUndo = fmt.Errorf("nothing to undo: %w", ErrEmptyStack)
	ErrNothingToRedo = fmt.Errorf("nothing to redo: %w", ErrEmptyStack)

	// ErrInvalidRecord is returned by Append for records without a valid
	// id or kind.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrDuplicateID is returned by Append when the id is already in History.
	ErrDuplicateID = errors.New("duplicate record id")
)

// Option configures a Store.
type Option func(*Store)

// WithMaxUndo sets the undo stack capacity.
func WithMaxUndo(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxUndo = n
		}
	}
}

// WithDuplicateOnRedo controls whether Redo appends the record to History
// again. Enabled by default.
func WithDuplicateOnRedo(enabled bool) Option {
	return func(s *Store) {
		s.duplicateOnRedo = enabled
	}
}

// WithClock sets the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store owns History, the undo and redo stacks and the id counter.
type Store struct {
	mu sync.Mutex

	history   []Record
	undoStack []Record
	redoStack []Record

	nextID int64

	// Configuration
	maxUndo         int
	duplicateOnRedo bool
	now             func() time.Time
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		nextID:          1,
		maxUndo:         DefaultMaxUndo,
		duplicateOnRedo: true,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextID draws the next record id. Ids start at 1 and are never reused.
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id
}

// NewRecord builds a record with a fresh id and the current time.
// The record is not appended.
func (s *Store) NewRecord(kind Kind, r buffer.Range, start buffer.Point, content, language string) Record {
	return Record{
		ID:        s.NextID(),
		Kind:      kind,
		Range:     r,
		Start:     start,
		Content:   content,
		Language:  language,
		Timestamp: s.now(),
	}
}

// Append pushes rec onto History and the undo stack. When the undo stack
// exceeds its capacity the oldest entry is evicted from it; History keeps
// the record.
func (s *Store) Append(rec Record) error {
	if rec.ID <= 0 || !rec.Kind.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, rec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(rec.ID) >= 0 {
		return fmt.Errorf("%w: %d", ErrDuplicateID, rec.ID)
	}
	if rec.ID >= s.nextID {
		s.nextID = rec.ID + 1
	}

	s.history = append(s.history, rec)
	s.pushUndoLocked(rec)
	return nil
}

// pushUndoLocked adds rec to the undo stack and enforces the capacity.
func (s *Store) pushUndoLocked(rec Record) {
	s.undoStack = append(s.undoStack, rec)
	if excess := len(s.undoStack) - s.maxUndo; excess > 0 {
		s.undoStack = append([]Record(nil), s.undoStack[excess:]...)
	}
}

// Undo pops the most recent record from the undo stack and passes it to
// apply, which must delete the record's text from the document. On
// success the record moves to the redo stack. If apply fails the record is
// put back and the error returned.
//
// The lock is released while apply runs.
func (s *Store) Undo(apply func(Record) error) (Record, error) {
	s.mu.Lock()
	if len(s.undoStack) == 0 {
		s.mu.Unlock()
		return Record{}, ErrNothingToUndo
	}
	rec := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.mu.Unlock()

	if apply != nil {
		if err := apply(rec); err != nil {
			s.mu.Lock()
			s.undoStack = append(s.undoStack, rec)
			s.mu.Unlock()
			return Record{}, err
		}
	}

	s.mu.Lock()
	s.redoStack = append(s.redoStack, rec)
	s.mu.Unlock()
	return rec, nil
}

// Redo pops the most recently undone record and passes it to apply, which
// must re-insert its content. On success the record goes back onto the
// undo stack and, unless disabled with WithDuplicateOnRedo, is appended to
// History again.
func (s *Store) Redo(apply func(Record) error) (Record, error) {
	s.mu.Lock()
	if len(s.redoStack) == 0 {
		s.mu.Unlock()
		return Record{}, ErrNothingToRedo
	}
	rec := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.mu.Unlock()

	if apply != nil {
		if err := apply(rec); err != nil {
			s.mu.Lock()
			s.redoStack = append(s.redoStack, rec)
			s.mu.Unlock()
			return Record{}, err
		}
	}

	s.mu.Lock()
	s.pushUndoLocked(rec)
	if s.duplicateOnRedo {
		s.history = append(s.history, rec)
	}
	s.mu.Unlock()
	return rec, nil
}

// Lookup returns the record with the given id from History.
func (s *Store) Lookup(id int64) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Record{}, false
	}
	return s.history[i], true
}

// indexLocked returns the index of the latest History entry with id, or -1.
func (s *Store) indexLocked(id int64) int {
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].ID == id {
			return i
		}
	}
	return -1
}

// History returns a copy of History, oldest first.
func (s *Store) History() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.history...)
}

// Recent returns a copy of History, most recent first.
func (s *Store) Recent() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.history))
	for i, rec := range s.history {
		out[len(out)-1-i] = rec
	}
	return out
}

// UndoStack returns a copy of the undo stack, most recent last.
func (s *Store) UndoStack() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.undoStack...)
}

// RedoStack returns a copy of the redo stack, most recent last.
func (s *Store) RedoStack() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.redoStack...)
}

// CanUndo returns true if undo is available.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack) > 0
}

// Len returns the number of History entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// MaxUndo returns the undo stack capacity.
func (s *Store) MaxUndo() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxUndo
}

// SetMaxUndo changes the undo stack capacity. If the stack is larger, the
// oldest entries are evicted.
func (s *Store) SetMaxUndo(n int) {
	if n <= 0 {
		n = DefaultMaxUndo
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.maxUndo = n
	if excess := len(s.undoStack) - n; excess > 0 {
		s.undoStack = append([]Record(nil), s.undoStack[excess:]...)
	}
}

// SetDuplicateOnRedo changes whether Redo re-appends to History.
func (s *Store) SetDuplicateOnRedo(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duplicateOnRedo = enabled
}
