// Package benchmarks compares the sequential scan with the parallel scan on
// each executor.
package benchmarks

import (
	"math/rand"
	"testing"
	"time"

	"github.com/utkarsh5026/scanpool/queue"
	"github.com/utkarsh5026/scanpool/scan"
)

// executorConfig defines a benchmark configuration for a level executor.
type executorConfig struct {
	name string
	make func(b *testing.B) scan.Executor
}

// getAllExecutors returns the executors to benchmark with the given worker count.
func getAllExecutors(workers int) []executorConfig {
	return []executorConfig{
		{
			name: "Spawn",
			make: func(*testing.B) scan.Executor { return scan.NewSpawnExecutor(workers) },
		},
		{
			name: "Queue_Grain1",
			make: func(b *testing.B) scan.Executor { return scan.NewQueueExecutor(newQueue(b, workers), 1) },
		},
		{
			name: "Queue_Grain256",
			make: func(b *testing.B) scan.Executor { return scan.NewQueueExecutor(newQueue(b, workers), 256) },
		},
	}
}

// newQueue creates a queue with the default capacity that closes when the benchmark ends.
func newQueue(b *testing.B, workers int) *queue.Queue {
	b.Helper()
	q, err := queue.New(queue.WithWorkerCount(workers))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() {
		_ = q.Shutdown(10 * time.Second)
	})
	return q
}

// randomInput returns n values in [0, 10), seeded like the benchmark harness.
func randomInput(n int) []int64 {
	rng := rand.New(rand.NewSource(0)) // #nosec G404 -- benchmark data
	data := make([]int64, n)
	for i := range data {
		data[i] = rng.Int63n(10)
	}
	return data
}
