package tracking

import (
	"sync"

	"github.com/dshills/codemate/internal/engine/buffer"
)

// ID identifies a tracked range.
type ID = int64

type entry struct {
	r      buffer.Range
	buried []buffer.ByteOffset
}

// Tracker keeps a set of ranges anchored through buffer edits.
// All operations are thread-safe.
type Tracker struct {
	mu     sync.RWMutex
	ranges map[ID]*entry
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{ranges: make(map[ID]*entry)}
}

// Attach subscribes the tracker to every change applied to buf.
func (t *Tracker) Attach(buf *buffer.Buffer) {
	buf.OnChange(t.Apply)
}

// Track starts tracking r under id, replacing any previous range.
func (t *Tracker) Track(id ID, r buffer.Range) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ranges[id] = &entry{r: r}
}

// Untrack stops tracking id.
func (t *Tracker) Untrack(id ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.ranges, id)
}

// Range returns the current range tracked under id.
func (t *Tracker) Range(id ID) (buffer.Range, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.ranges[id]
	if !ok {
		return buffer.Range{}, false
	}
	return e.r, true
}

// Len returns the number of tracked ranges.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ranges)
}

// Apply transforms every tracked range through a buffer change.
// Collapsed ranges remember the deletions that covered them, so text that
// is deleted and then reinserted at the same place lands on the same side
// of them as before.
func (t *Tracker) Apply(c buffer.Change) {
	edit := c.Edit()

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.ranges {
		if e.r.IsEmpty() {
			var p buffer.ByteOffset
			p, e.buried = transformPoint(e.r.Start, e.buried, edit)
			e.r = buffer.Range{Start: p, End: p}
			continue
		}
		e.r = TransformRange(e.r, edit)
		e.buried = nil
	}
}
