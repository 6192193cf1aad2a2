package scan

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/utkarsh5026/scanpool/queue"
	"golang.org/x/sync/errgroup"
)

// Executor runs one level of a parallel algorithm.
//
// Run calls fn(i) exactly once for every i in [0, n), in any order and with
// any degree of concurrency, and returns only after every call has returned.
// That return is the barrier between levels. A panic inside fn is reported as
// an error once the rest of the level has finished.
type Executor interface {
	Run(ctx context.Context, n int, fn func(i int)) error
}

// SpawnExecutor starts a fresh wave of goroutines for every level and joins
// them before returning.
type SpawnExecutor struct {
	limit int
}

// NewSpawnExecutor returns an executor that splits each level into at most
// limit contiguous chunks, one goroutine per chunk.
// A limit below 1 means runtime.GOMAXPROCS(0).
func NewSpawnExecutor(limit int) *SpawnExecutor {
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &SpawnExecutor{limit: limit}
}

// Run executes fn over [0, n) and waits for the whole wave.
func (e *SpawnExecutor) Run(ctx context.Context, n int, fn func(i int)) error {
	if n <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	chunks := min(e.limit, n)
	size := (n + chunks - 1) / chunks

	var g errgroup.Group
	g.SetLimit(e.limit)
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		g.Go(func() error {
			return runRange(lo, hi, fn)
		})
	}
	return g.Wait()
}

// QueueExecutor dispatches each level as range tasks on a queue.Queue and
// uses Drain as the barrier. The queue should not be shared with unrelated
// work while a scan runs, since Drain waits for everything in it.
type QueueExecutor struct {
	q     *queue.Queue
	grain int
}

// NewQueueExecutor returns an executor that submits ceil(n/grain) tasks per
// level, each covering grain consecutive indexes.
// A grain below 1 means 1, one task per unit.
func NewQueueExecutor(q *queue.Queue, grain int) *QueueExecutor {
	return &QueueExecutor{
		q:     q,
		grain: max(grain, 1),
	}
}

// Run submits the level and waits for it to drain.
//
// ctx bounds submission only. Once any unit of a level has been submitted the
// executor always waits for the level to finish, so no unit can outlive Run.
func (e *QueueExecutor) Run(ctx context.Context, n int, fn func(i int)) error {
	if n <= 0 {
		return nil
	}

	var (
		mu    sync.Mutex
		first error
	)
	record := func(err error) {
		mu.Lock()
		if first == nil {
			first = err
		}
		mu.Unlock()
	}

	for lo := 0; lo < n; lo += e.grain {
		hi := min(lo+e.grain, n)
		err := e.q.SubmitContext(ctx, func() {
			if err := runRange(lo, hi, fn); err != nil {
				record(err)
			}
		})
		if err != nil {
			_ = e.barrier()
			return err
		}
	}

	if err := e.barrier(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	return first
}

// barrier waits for the queue to go idle. If the queue halts instead, it
// waits for the workers to exit so that no unit is still touching the slice.
func (e *QueueExecutor) barrier() error {
	if err := e.q.Drain(); err != nil {
		<-e.q.Done()
		return err
	}
	return nil
}

// runRange calls fn for every index in [lo, hi), converting a panic into an error.
func runRange(lo, hi int, fn func(i int)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("worker panic: %v\nstack trace:\n%s", r, buf[:n])
		}
	}()

	for i := lo; i < hi; i++ {
		fn(i)
	}
	return nil
}
