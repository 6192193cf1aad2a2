package queue

import (
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultCapacity is the ring size used when WithCapacity is not given.
	DefaultCapacity = 2000

	// DefaultWorkerCount is the worker count used when WithWorkerCount is not given.
	DefaultWorkerCount = 32
)

// Option is a functional option for configuring a Queue.
type Option func(*config)

type config struct {
	capacity        int
	workerCount     int
	rateLimiter     *rate.Limiter
	affinity        bool
	panicHandler    func(recovered any, stack []byte)
	beforeTaskStart func(workerID int)
	onTaskEnd       func(workerID int, elapsed time.Duration)
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		capacity:    DefaultCapacity,
		workerCount: DefaultWorkerCount,
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithCapacity sets the number of slots in the task ring.
// Submission blocks once capacity/2 tasks are waiting, so capacity must be
// at least 2; New rejects anything smaller with ErrInvalidCapacity.
func WithCapacity(capacity int) Option {
	return func(cfg *config) {
		cfg.capacity = capacity
	}
}

// WithWorkerCount sets the number of worker goroutines started by New.
// New rejects a non-positive count with ErrInvalidWorkerCount.
func WithWorkerCount(count int) Option {
	return func(cfg *config) {
		cfg.workerCount = count
	}
}

// WithRateLimit limits how fast workers start tasks.
// tasksPerSecond is the sustained rate and burst the bucket size.
// Non-positive values leave the queue unthrottled.
//
// Example:
//
//	WithRateLimit(100, 10) // 100 tasks/sec with bursts of 10
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithCPUAffinity locks every worker to its own OS thread and pins that
// thread to a single core, chosen round-robin from the cores the process may use.
// Pinning is best effort; platforms without support only lock the thread.
func WithCPUAffinity() Option {
	return func(cfg *config) {
		cfg.affinity = true
	}
}

// WithPanicHandler installs a callback that receives the recovered value and
// stack of any task that panics. The worker survives the panic either way.
func WithPanicHandler(fn func(recovered any, stack []byte)) Option {
	return func(cfg *config) {
		cfg.panicHandler = fn
	}
}

// WithBeforeTaskStart installs a hook called on the worker right before a task runs.
func WithBeforeTaskStart(fn func(workerID int)) Option {
	return func(cfg *config) {
		cfg.beforeTaskStart = fn
	}
}

// WithOnTaskEnd installs a hook called on the worker after a task returns or panics.
func WithOnTaskEnd(fn func(workerID int, elapsed time.Duration)) Option {
	return func(cfg *config) {
		cfg.onTaskEnd = fn
	}
}
