package queue

import (
	"runtime"
	"time"

	"github.com/utkarsh5026/scanpool/internal/cpu"
)

// worker runs the consume loop for one worker until the queue halts.
func (q *Queue) worker(workerID int) {
	if q.conf.affinity {
		release := cpu.Pin(workerID)
		defer release()
	}

	for {
		task, ok := q.next()
		if !ok {
			debugLog("worker %d exiting", workerID)
			return
		}
		q.run(workerID, task)
	}
}

// next waits until a task is consumable or the queue halts, then takes the
// task at the read cursor. The task is counted as running before mu is
// released so that Drain cannot observe an idle queue in between.
func (q *Queue) next() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.halt && !q.consumable() {
		q.notEmpty.Wait()
	}
	if q.halt {
		return nil, false
	}

	before := q.occupancy()
	task := q.ring[q.read]
	q.ring[q.read] = nil
	q.read = (q.read + 1) % len(q.ring)
	q.running++

	// Fill level just dropped back under the throttle line.
	if before == q.threshold {
		q.notFull.Broadcast()
	}
	return task, true
}

// consumable reports whether occupancy is in (0, threshold]. Callers hold mu.
func (q *Queue) consumable() bool {
	d := q.occupancy()
	return d > 0 && d <= q.threshold
}

// run executes one dequeued task outside the lock and settles drain accounting.
func (q *Queue) run(workerID int, task Task) {
	defer q.finish()

	if q.conf.rateLimiter != nil {
		if err := q.conf.rateLimiter.Wait(q.ctx); err != nil {
			// Halted while throttled; the task never started.
			q.discarded.Add(1)
			return
		}
	}

	if q.conf.beforeTaskStart != nil {
		q.conf.beforeTaskStart(workerID)
	}

	start := time.Now()
	q.execute(task)

	if q.conf.onTaskEnd != nil {
		q.conf.onTaskEnd(workerID, time.Since(start))
	}
}

// execute runs task with panic recovery so a failing task cannot take the
// worker down with it.
func (q *Queue) execute(task Task) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			q.panicked.Add(1)
			debugLog("task panic: %v", r)
			if q.conf.panicHandler != nil {
				q.conf.panicHandler(r, buf[:n])
			}
		}
	}()

	task()
	q.completed.Add(1)
}

// finish marks a task as no longer running and wakes drain waiters once the
// queue has gone idle.
func (q *Queue) finish() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.running--
	if q.isIdle() {
		q.idle.Broadcast()
	}
}
