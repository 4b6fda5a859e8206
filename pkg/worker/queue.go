// Package worker provides the bounded worker pools both crawl phases run on.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type WorkQueue[T any] struct {
	jobs    chan T
	workers []*Worker[T]
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWorkQueue starts numWorkers workers (at least one) that call handler for
// every enqueued task.
func NewWorkQueue[T any](ctx context.Context, numWorkers int, handler Handler[T], logger *zap.Logger) *WorkQueue[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	wq := &WorkQueue[T]{
		jobs:    make(chan T, numWorkers*2),
		workers: make([]*Worker[T], numWorkers),
	}
	wq.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		wq.workers[i] = NewWorker[T](i, wq.jobs, handler, logger)
		wq.workers[i].Start(ctx, wq.wg.Done)
	}
	return wq
}

// Enqueue blocks until a worker can take the task or ctx is done.
func (wq *WorkQueue[T]) Enqueue(ctx context.Context, job T) error {
	select {
	case wq.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the queue and waits for the workers to finish what they hold.
func (wq *WorkQueue[T]) Stop() {
	wq.once.Do(func() { close(wq.jobs) })
	wq.wg.Wait()
}

// Size returns the number of workers.
func (wq *WorkQueue[T]) Size() int {
	return len(wq.workers)
}

type indexed[T any] struct {
	index int
	task  T
}

// Run executes fn once per task on a pool of numWorkers workers and returns
// when every task has been handled or ctx is done. fn receives the task's
// index so results can be written into a pre-sized slice without locking.
func Run[T any](ctx context.Context, numWorkers int, tasks []T, fn func(ctx context.Context, i int, task T), logger *zap.Logger) error {
	if len(tasks) == 0 {
		return ctx.Err()
	}
	if numWorkers > len(tasks) {
		numWorkers = len(tasks)
	}
	wq := NewWorkQueue[indexed[T]](ctx, numWorkers, func(ctx context.Context, it indexed[T]) {
		fn(ctx, it.index, it.task)
	}, logger)

	var err error
	for i, task := range tasks {
		if err = wq.Enqueue(ctx, indexed[T]{index: i, task: task}); err != nil {
			break
		}
	}
	wq.Stop()
	if err != nil {
		return err
	}
	return ctx.Err()
}
