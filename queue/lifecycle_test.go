package queue

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestShutdown_DiscardsQueuedTasks(t *testing.T) {
	q, err := New(WithCapacity(8), WithWorkerCount(1))
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}

	release := blockWorker(t, q)

	var ran atomic.Int64
	for range 3 {
		if err := q.Submit(func() { ran.Add(1) }); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	closed := make(chan error, 1)
	go func() { closed <- q.Close() }()

	// Only free the running task once halt is visible, so the worker cannot
	// reach the queued tasks first.
	waitFor(t, 2*time.Second, q.Closed)
	release()

	select {
	case err := <-closed:
		if err != nil {
			t.Fatalf("close failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("close hung with queued tasks")
	}

	if got := ran.Load(); got != 0 {
		t.Errorf("expected queued tasks to be discarded, %d ran", got)
	}
	stats := q.Stats()
	if stats.Discarded != 3 {
		t.Errorf("expected 3 discarded tasks, got %d", stats.Discarded)
	}
	if stats.Completed != 1 {
		t.Errorf("expected the running task to complete, got %d", stats.Completed)
	}
}

func TestShutdown_JoinsWorkers(t *testing.T) {
	q, err := New(WithCapacity(16), WithWorkerCount(8))
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}

	if err := q.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	select {
	case <-q.Done():
	default:
		t.Error("workers still running after shutdown returned")
	}
}

func TestShutdown_Twice(t *testing.T) {
	q, err := New(WithCapacity(4), WithWorkerCount(1))
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}

	if err := q.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := q.Close(); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed on second close, got %v", err)
	}
}

func TestShutdown_Timeout(t *testing.T) {
	q, err := New(WithCapacity(4), WithWorkerCount(1))
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}

	release := blockWorker(t, q)

	if err := q.Shutdown(30 * time.Millisecond); !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("expected ErrShutdownTimeout, got %v", err)
	}

	release()
	select {
	case <-q.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit after its task finished")
	}
}

func TestSubmit_AfterShutdown(t *testing.T) {
	q, err := New(WithCapacity(4), WithWorkerCount(1))
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}
	_ = q.Close()

	var ran atomic.Bool
	if err := q.Submit(func() { ran.Store(true) }); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}
	if ran.Load() {
		t.Error("task submitted after shutdown must not run")
	}
	if q.Stats().Submitted != 0 {
		t.Error("task submitted after shutdown must not be counted")
	}
}

func TestShutdown_WakesBlockedProducer(t *testing.T) {
	q, err := New(WithCapacity(4), WithWorkerCount(1))
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}
	release := fillToThreshold(t, q)

	blocked := make(chan error, 1)
	go func() { blocked <- q.Submit(func() {}) }()
	time.Sleep(20 * time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- q.Close() }()

	select {
	case err := <-blocked:
		if !errors.Is(err, ErrQueueClosed) {
			t.Errorf("expected ErrQueueClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not wake the blocked producer")
	}

	release()
	if err := <-closed; err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestShutdown_WakesDrainWaiter(t *testing.T) {
	q, err := New(WithCapacity(4), WithWorkerCount(1))
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}
	release := blockWorker(t, q)

	drained := make(chan error, 1)
	go func() { drained <- q.Drain() }()
	time.Sleep(20 * time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- q.Close() }()

	select {
	case err := <-drained:
		if !errors.Is(err, ErrQueueClosed) {
			t.Errorf("expected ErrQueueClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not wake the drain waiter")
	}

	release()
	if err := <-closed; err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestClose_ManyIdleWorkers(t *testing.T) {
	q, err := New() // 32 workers, all parked
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- q.Close() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("close failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("idle workers were not woken by close")
	}
}
