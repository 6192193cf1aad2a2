package queue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestHooks(t *testing.T) {
	t.Run("before and after run once per task", func(t *testing.T) {
		var before, after atomic.Int64
		q := newTestQueue(t,
			WithCapacity(8),
			WithWorkerCount(3),
			WithBeforeTaskStart(func(int) { before.Add(1) }),
			WithOnTaskEnd(func(int, time.Duration) { after.Add(1) }),
		)

		for range 50 {
			_ = q.Submit(func() {})
		}
		_ = q.Drain()

		if before.Load() != 50 || after.Load() != 50 {
			t.Errorf("expected 50/50 hook calls, got %d/%d", before.Load(), after.Load())
		}
	})

	t.Run("worker ids are in range", func(t *testing.T) {
		const workers = 4
		var mu sync.Mutex
		seen := map[int]bool{}
		q := newTestQueue(t,
			WithCapacity(8),
			WithWorkerCount(workers),
			WithBeforeTaskStart(func(id int) {
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}),
		)

		for range 100 {
			_ = q.Submit(func() { time.Sleep(100 * time.Microsecond) })
		}
		_ = q.Drain()

		mu.Lock()
		defer mu.Unlock()
		for id := range seen {
			if id < 0 || id >= workers {
				t.Errorf("worker id %d out of range", id)
			}
		}
	})

	t.Run("end hook reports elapsed time", func(t *testing.T) {
		var elapsed atomic.Int64
		q := newTestQueue(t,
			WithCapacity(4),
			WithWorkerCount(1),
			WithOnTaskEnd(func(_ int, d time.Duration) { elapsed.Store(int64(d)) }),
		)

		_ = q.Submit(func() { time.Sleep(10 * time.Millisecond) })
		_ = q.Drain()

		if time.Duration(elapsed.Load()) < 10*time.Millisecond {
			t.Errorf("expected elapsed >= 10ms, got %v", time.Duration(elapsed.Load()))
		}
	})

	t.Run("end hook runs after panic", func(t *testing.T) {
		var after atomic.Int64
		q := newTestQueue(t,
			WithCapacity(4),
			WithWorkerCount(1),
			WithOnTaskEnd(func(int, time.Duration) { after.Add(1) }),
		)

		_ = q.Submit(func() { panic("boom") })
		_ = q.Drain()

		if after.Load() != 1 {
			t.Errorf("expected end hook after panic, got %d calls", after.Load())
		}
	})
}

func TestPanicHandler_ReceivesValueAndStack(t *testing.T) {
	type capture struct {
		value any
		stack []byte
	}
	got := make(chan capture, 1)
	q := newTestQueue(t,
		WithCapacity(4),
		WithWorkerCount(1),
		WithPanicHandler(func(r any, stack []byte) { got <- capture{r, stack} }),
	)

	_ = q.Submit(func() { panic("task exploded") })

	select {
	case c := <-got:
		if c.value != "task exploded" {
			t.Errorf("expected panic value 'task exploded', got %v", c.value)
		}
		if len(c.stack) == 0 {
			t.Error("expected a stack trace")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("panic handler not called")
	}

	// The worker must survive and keep consuming.
	var ran atomic.Bool
	_ = q.Submit(func() { ran.Store(true) })
	_ = q.Drain()
	if !ran.Load() {
		t.Error("worker did not survive the panic")
	}
}

func TestCPUAffinity(t *testing.T) {
	q := newTestQueue(t, WithCapacity(8), WithWorkerCount(2), WithCPUAffinity())

	var count atomic.Int64
	for range 20 {
		_ = q.Submit(func() { count.Add(1) })
	}
	if err := q.Drain(); err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if count.Load() != 20 {
		t.Errorf("expected 20 executions, got %d", count.Load())
	}
}
