package scan

import (
	"context"
	"testing"
	"time"

	"github.com/utkarsh5026/scanpool/queue"
)

// executorConfig names an executor for table-driven runs.
type executorConfig struct {
	name string
	make func(t *testing.T) Executor
}

// getAllExecutors returns every executor shape worth exercising.
func getAllExecutors() []executorConfig {
	return []executorConfig{
		{
			name: "Spawn",
			make: func(*testing.T) Executor { return NewSpawnExecutor(4) },
		},
		{
			name: "SpawnSingle",
			make: func(*testing.T) Executor { return NewSpawnExecutor(1) },
		},
		{
			name: "Queue",
			make: func(t *testing.T) Executor { return NewQueueExecutor(newTestQueue(t, 16, 4), 1) },
		},
		{
			name: "QueueGrained",
			make: func(t *testing.T) Executor { return NewQueueExecutor(newTestQueue(t, 4, 3), 3) },
		},
	}
}

// runExecutorTest runs testFn once per executor.
func runExecutorTest(t *testing.T, testFn func(t *testing.T, e Executor)) {
	t.Helper()
	for _, cfg := range getAllExecutors() {
		t.Run(cfg.name, func(t *testing.T) {
			testFn(t, cfg.make(t))
		})
	}
}

func newTestQueue(t *testing.T, capacity, workers int) *queue.Queue {
	t.Helper()
	q, err := queue.New(queue.WithCapacity(capacity), queue.WithWorkerCount(workers))
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}
	t.Cleanup(func() {
		_ = q.Shutdown(5 * time.Second)
	})
	return q
}

// naiveExclusive returns a fresh exclusive prefix sum of in.
func naiveExclusive[T int | int64 | uint32 | int8](in []T) []T {
	out := make([]T, len(in))
	var sum T
	for i, v := range in {
		out[i] = sum
		sum += v
	}
	return out
}

func equal[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var bg = context.Background()
