package worker

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

// Handler processes one task. It owns its own error handling: whatever goes
// wrong stays inside the task.
type Handler[T any] func(ctx context.Context, task T)

type Worker[T any] struct {
	id      int
	jobs    <-chan T
	handler Handler[T]
	logger  *zap.Logger
}

func NewWorker[T any](id int, jobs <-chan T, handler Handler[T], logger *zap.Logger) *Worker[T] {
	return &Worker[T]{
		id:      id,
		jobs:    jobs,
		handler: handler,
		logger:  logger,
	}
}

// Start runs the worker until the jobs channel is closed. Tasks still queued
// after ctx is cancelled are drained without being processed.
func (w *Worker[T]) Start(ctx context.Context, done func()) {
	go func() {
		defer done()
		for job := range w.jobs {
			if ctx.Err() != nil {
				continue
			}
			w.process(ctx, job)
		}
	}()
}

func (w *Worker[T]) process(ctx context.Context, job T) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Worker recovered from panic",
				zap.Int("worker", w.id),
				zap.String("panic", fmt.Sprint(r)),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	w.handler(ctx, job)
}
