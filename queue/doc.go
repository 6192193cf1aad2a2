// Package queue provides a bounded task queue backed by a fixed pool of
// worker goroutines.
//
// The primary type is Queue, a circular buffer of deferred Task values shared
// by a fixed number of workers. Submission applies backpressure at half of the
// ring capacity: a producer blocks while the number of queued tasks is at or
// above Threshold (Capacity/2), and the consumer that brings occupancy back
// under that line wakes every blocked producer.
//
// # Basic Usage
//
//	q, err := queue.New(queue.WithCapacity(64), queue.WithWorkerCount(4))
//	if err != nil {
//	    return err
//	}
//	defer q.Close()
//
//	for i := range 100 {
//	    _ = q.Submit(func() { work(i) })
//	}
//	_ = q.Drain() // returns once every submitted task has finished
//
// # Cancellation
//
// Submit and Drain block indefinitely. SubmitContext and DrainContext give
// up when the context ends and return its error.
//
// # Shutdown
//
// Shutdown (and Close) halts the queue, wakes every blocked producer, worker,
// and drain waiter, and waits for the workers to exit. Tasks that are already
// running finish normally. Tasks still sitting in the ring are discarded and
// never run; callers must not assume a submitted task executes once shutdown
// has begun.
//
// # Configuration Options
//
//   - WithCapacity(n): ring capacity (default 2000, must be at least 2)
//   - WithWorkerCount(n): number of workers (default 32)
//   - WithRateLimit(tasksPerSecond, burst): throttle task execution
//   - WithCPUAffinity(): pin each worker to its own OS thread and core
//   - WithPanicHandler(fn): observe tasks that panic
//   - WithBeforeTaskStart(fn), WithOnTaskEnd(fn): per-task hooks
package queue
