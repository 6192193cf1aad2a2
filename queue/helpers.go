package queue

import "time"

// distance returns the forward distance from b to a on a ring of the given size.
func distance(a, b, size int) int {
	if a >= b {
		return a - b
	}
	return a + size - b
}

// waitUntil blocks until either the done channel is closed or the timeout is reached.
// It is used during shutdown to wait for workers to exit.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	select {
	case <-d:
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}
