package app

import (
	"context"
	"sync"

	"github.com/dshills/codemate/internal/engine/history"
	"github.com/dshills/codemate/internal/preview"
)

// Task is the pending result of a completion or chat request. It is done
// once the suggestion is staged or the request failed.
type Task struct {
	id   string
	kind history.Kind

	once     sync.Once
	done     chan struct{}
	proposal preview.Proposal
	err      error
}

func newTask(id string, kind history.Kind) *Task {
	return &Task{id: id, kind: kind, done: make(chan struct{})}
}

// ID returns the request id used in log entries.
func (t *Task) ID() string { return t.id }

// Kind returns the kind of suggestion requested.
func (t *Task) Kind() history.Kind { return t.kind }

// Done is closed when the task finishes.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (preview.Proposal, error) {
	select {
	case <-t.done:
		return t.proposal, t.err
	case <-ctx.Done():
		return preview.Proposal{}, ctx.Err()
	}
}

func (t *Task) finish(p preview.Proposal, err error) {
	t.once.Do(func() {
		t.proposal, t.err = p, err
		close(t.done)
	})
}
