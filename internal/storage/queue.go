package storage

import (
	"context"
	"errors"
	"sync"
)

var errQueueClosed = errors.New("write queue closed")

type writeTask struct {
	run    func() error
	result chan error
}

// writeQueue executes tasks one at a time in submission order. A failing task
// reports its error to its own submitter and does not stall later tasks.
type writeQueue struct {
	mu     sync.RWMutex
	closed bool
	tasks  chan writeTask
	done   chan struct{}
}

func newWriteQueue(buffer int) *writeQueue {
	q := &writeQueue{
		tasks: make(chan writeTask, buffer),
		done:  make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *writeQueue) loop() {
	defer close(q.done)
	for task := range q.tasks {
		task.result <- task.run()
	}
}

// submit enqueues run and waits for it to settle. If ctx ends while the task
// is still waiting its turn, submit returns the context error; a task that has
// already been enqueued still runs.
func (q *writeQueue) submit(ctx context.Context, run func() error) error {
	task := writeTask{run: run, result: make(chan error, 1)}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return errQueueClosed
	}
	select {
	case q.tasks <- task:
		q.mu.RUnlock()
	case <-ctx.Done():
		q.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case err := <-task.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting tasks and waits for pending ones to drain.
func (q *writeQueue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()
	<-q.done
}
