package app

import (
	"context"
	"runtime/debug"
	"sync"
)

// Loop runs tasks one at a time on a single goroutine. Every change to the
// document, the preview state and the history goes through it, so those
// never race with each other.
type Loop struct {
	logger *Logger

	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}

	done chan struct{}
}

// NewLoop starts a loop.
func NewLoop(logger *Logger) *Loop {
	if logger == nil {
		logger = NopLogger()
	}
	l := &Loop{
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

// Post queues fn. It reports false if the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it. It must not be called from a
// task running on the loop.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	if !l.Post(func() { errc <- l.call(fn) }) {
		return ErrClosed
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			if l.closed {
				l.mu.Unlock()
				return
			}
			l.mu.Unlock()
			<-l.wake
			continue
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		_ = l.call(func() error { fn(); return nil })
	}
}

// call runs fn, turning a panic into a *RecoveredPanicError.
func (l *Loop) call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RecoveredPanicError{Value: r, Stack: string(debug.Stack())}
			l.logger.Error("recovered panic on task loop", "panic", r)
		}
	}()
	return fn()
}

// Close runs the tasks already queued and stops the loop.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	<-l.done
}
