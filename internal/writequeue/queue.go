// Package writequeue serializes writes to the local store.
//
// The change tracker and the sync orchestrator share one Queue, so a
// tracked local edit can never interleave with the orchestrator's
// read-local-changes / apply-remote-batch critical section.
package writequeue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Do after Close
var ErrClosed = errors.New("write queue closed")

type job struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// Queue runs submitted jobs one at a time on a single goroutine
type Queue struct {
	jobs   chan job
	quit   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	closed chan struct{}
}

// New starts a queue
func New() *Queue {
	q := &Queue{
		jobs:   make(chan job),
		quit:   make(chan struct{}),
		closed: make(chan struct{}),
	}

	q.wg.Add(1)
	go q.loop()

	return q
}

func (q *Queue) loop() {
	defer q.wg.Done()

	for {
		select {
		case j := <-q.jobs:
			// задача, чей контекст уже отменен, не выполняется
			if err := j.ctx.Err(); err != nil {
				j.done <- err
				continue
			}
			j.done <- j.fn(j.ctx)
		case <-q.quit:
			return
		}
	}
}

// Do runs fn on the queue goroutine and waits for its result.
// If ctx is canceled before fn starts, fn is not run.
// Once started, fn runs to completion; it receives ctx and should honor it.
func (q *Queue) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}

	select {
	case q.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closed:
		return ErrClosed
	}

	return <-j.done
}

// Close stops the queue after the running job finishes.
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.closed)
		close(q.quit)
	})
	q.wg.Wait()
}
