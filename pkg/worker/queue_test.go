package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunProcessesEveryTaskOnce(t *testing.T) {
	tasks := make([]int, 100)
	for i := range tasks {
		tasks[i] = i * 2
	}
	results := make([]int, len(tasks))

	err := Run(context.Background(), 7, tasks, func(_ context.Context, i int, task int) {
		results[i] = task + 1
	}, zap.NewNop())

	require.NoError(t, err)
	for i, r := range results {
		assert.Equal(t, i*2+1, r)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var active, peak int32
	tasks := make([]struct{}, 30)

	err := Run(context.Background(), 3, tasks, func(context.Context, int, struct{}) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&active, -1)
	}, nil)

	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.Greater(t, atomic.LoadInt32(&peak), int32(0))
}

func TestRunSurvivesPanickingTask(t *testing.T) {
	var done int32
	tasks := []int{0, 1, 2, 3, 4}

	err := Run(context.Background(), 2, tasks, func(_ context.Context, _ int, task int) {
		if task == 2 {
			panic("boom")
		}
		atomic.AddInt32(&done, 1)
	}, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&done))
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var processed int32
	tasks := make([]int, 50)

	err := Run(ctx, 1, tasks, func(context.Context, int, int) {
		if atomic.AddInt32(&processed, 1) == 3 {
			cancel()
		}
	}, zap.NewNop())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, atomic.LoadInt32(&processed), int32(len(tasks)))
}

func TestRunEmpty(t *testing.T) {
	called := false
	err := Run(context.Background(), 4, []string{}, func(context.Context, int, string) { called = true }, nil)
	require.NoError(t, err)
	assert.False(t, called)
}

func TestWorkQueueStopIsIdempotent(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	wq := NewWorkQueue[string](context.Background(), 2, func(_ context.Context, s string) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}, nil)

	require.NoError(t, wq.Enqueue(context.Background(), "a"))
	require.NoError(t, wq.Enqueue(context.Background(), "b"))
	wq.Stop()
	wq.Stop()

	assert.ElementsMatch(t, []string{"a", "b"}, seen)
	assert.Equal(t, 2, wq.Size())
}
