package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidCapacity    = errors.New("queue capacity must be at least 2")
	ErrInvalidWorkerCount = errors.New("queue worker count must be positive")
	ErrNilTask            = errors.New("task is nil")
	ErrQueueClosed        = errors.New("queue is closed")
	ErrShutdownTimeout    = errors.New("shutdown timed out")
)

// Task is a unit of deferred work. It captures whatever state it needs.
type Task func()

// Stats is a point-in-time snapshot of queue counters.
type Stats struct {
	Submitted int64 // tasks accepted into the ring
	Completed int64 // tasks that returned normally
	Panicked  int64 // tasks that panicked and were recovered
	Discarded int64 // tasks dropped by shutdown without running
	Running   int   // tasks executing right now
	Pending   int   // tasks waiting in the ring
}

// Queue is a fixed-capacity ring of tasks consumed by a fixed pool of workers.
//
// A single mutex guards both cursors, the running count and the halt flag.
// Tasks always execute outside that lock.
type Queue struct {
	conf      *config
	threshold int

	mu       sync.Mutex
	notEmpty *sync.Cond // workers wait here for work
	notFull  *sync.Cond // producers wait here for the fill level to drop below threshold
	idle     *sync.Cond // drain waiters

	ring    []Task
	write   int // next slot a producer fills
	read    int // next slot a worker drains
	running int
	halt    bool

	ctx    context.Context // cancelled on shutdown
	cancel context.CancelFunc
	done   chan struct{}   // closed once every worker has exited

	submitted atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
	discarded atomic.Int64
}

// New creates a queue and starts its workers.
//
// Default configuration:
//   - capacity: 2000 (threshold 1000)
//   - workers: 32
//
// Example:
//
//	q, err := New(WithCapacity(16), WithWorkerCount(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer q.Close()
func New(opts ...Option) (*Queue, error) {
	cfg := newConfig(opts...)
	if cfg.capacity < 2 {
		return nil, ErrInvalidCapacity
	}
	if cfg.workerCount < 1 {
		return nil, ErrInvalidWorkerCount
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		conf:      cfg,
		threshold: cfg.capacity / 2,
		ring:      make([]Task, cfg.capacity),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	q.idle = sync.NewCond(&q.mu)

	var g errgroup.Group
	for i := range cfg.workerCount {
		g.Go(func() error {
			q.worker(i)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(q.done)
	}()

	debugLog("started: capacity=%d threshold=%d workers=%d", cfg.capacity, q.threshold, cfg.workerCount)
	return q, nil
}

// Submit blocks until the number of waiting tasks is below Threshold and
// then enqueues task. It returns ErrQueueClosed, without enqueuing, if the
// queue is or becomes halted.
func (q *Queue) Submit(task Task) error {
	return q.SubmitContext(context.Background(), task)
}

// SubmitContext is Submit with a way out: it returns ctx.Err() if the context
// ends while the producer is throttled.
func (q *Queue) SubmitContext(ctx context.Context, task Task) error {
	if task == nil {
		return ErrNilTask
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() { q.broadcast(q.notFull) })
		defer stop()
	}

	for !q.halt && q.occupancy() >= q.threshold {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.notFull.Wait()
	}

	if q.halt {
		return ErrQueueClosed
	}

	wasEmpty := q.write == q.read
	q.ring[q.write] = task
	q.write = (q.write + 1) % len(q.ring)
	q.submitted.Add(1)

	if wasEmpty {
		q.notEmpty.Broadcast()
	}
	return nil
}

// Drain blocks until the ring is empty and no task is still executing.
// It returns ErrQueueClosed if the queue halts first.
func (q *Queue) Drain() error {
	return q.DrainContext(context.Background())
}

// DrainContext is Drain bounded by ctx.
func (q *Queue) DrainContext(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() { q.broadcast(q.idle) })
		defer stop()
	}

	for !q.isIdle() {
		if q.halt {
			return ErrQueueClosed
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		q.idle.Wait()
	}
	return nil
}

// Shutdown halts the queue and waits for the workers to exit.
// Tasks still in the ring are discarded; running tasks finish.
//
// Parameters:
//   - timeout: Maximum duration to wait for workers (0 = wait forever)
//
// Returns:
//   - error: ErrQueueClosed if already halted, ErrShutdownTimeout if the wait timed out
func (q *Queue) Shutdown(timeout time.Duration) error {
	q.mu.Lock()
	if q.halt {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.halt = true

	dropped := 0
	for q.read != q.write {
		q.ring[q.read] = nil
		q.read = (q.read + 1) % len(q.ring)
		dropped++
	}
	q.discarded.Add(int64(dropped))

	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
	q.idle.Broadcast()
	q.mu.Unlock()

	q.cancel()
	debugLog("shutdown: discarded=%d", dropped)

	return waitUntil(q.done, timeout)
}

// Close halts the queue and waits for every worker to exit.
func (q *Queue) Close() error {
	return q.Shutdown(0)
}

// Done returns a channel that is closed once every worker has exited.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Closed reports whether shutdown has begun.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.halt
}

// Cap returns the ring capacity.
func (q *Queue) Cap() int {
	return len(q.ring)
}

// Threshold returns the occupancy at which Submit starts blocking.
func (q *Queue) Threshold() int {
	return q.threshold
}

// Workers returns the number of workers.
func (q *Queue) Workers() int {
	return q.conf.workerCount
}

// Len returns the number of tasks waiting in the ring.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.occupancy()
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	running, pending := q.running, q.occupancy()
	q.mu.Unlock()

	return Stats{
		Submitted: q.submitted.Load(),
		Completed: q.completed.Load(),
		Panicked:  q.panicked.Load(),
		Discarded: q.discarded.Load(),
		Running:   running,
		Pending:   pending,
	}
}

// occupancy is the circular distance from read to write. Callers hold mu.
func (q *Queue) occupancy() int {
	return distance(q.write, q.read, len(q.ring))
}

// isIdle reports an empty ring with nothing executing. Callers hold mu.
func (q *Queue) isIdle() bool {
	return q.write == q.read && q.running == 0
}

// broadcast wakes every waiter on c. Taking mu first keeps a waiter that is
// between its predicate check and Wait from missing the wakeup.
func (q *Queue) broadcast(c *sync.Cond) {
	q.mu.Lock()
	c.Broadcast()
	q.mu.Unlock()
}
