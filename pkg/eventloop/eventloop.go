// Package eventloop runs submitted functions one at a time on a single goroutine.
package eventloop

import (
	"context"
	"errors"
	"fmt"
)

var ErrStopped = errors.New("event loop stopped")

type task struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

type Loop struct {
	tasks   chan task
	stopped chan struct{}
}

func New(buffer int) *Loop {
	return &Loop{
		tasks:   make(chan task, buffer),
		stopped: make(chan struct{}),
	}
}

// Run processes tasks until ctx is cancelled. It must be called exactly once.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-l.tasks:
			t.done <- l.exec(t)
		}
	}
}

func (l *Loop) exec(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in event loop task: %v", r)
		}
	}()

	return t.fn(t.ctx)
}

// Do runs fn on the loop goroutine and waits for it to finish.
// Tasks are executed in submission order, each to completion before the next.
func (l *Loop) Do(ctx context.Context, fn func(context.Context) error) error {
	t := task{
		ctx:  ctx,
		fn:   fn,
		done: make(chan error, 1),
	}

	select {
	case l.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrStopped
	}

	// once queued the task runs regardless of ctx, so only a stopped loop can abandon it
	select {
	case err := <-t.done:
		return err
	case <-l.stopped:
		return ErrStopped
	}
}
