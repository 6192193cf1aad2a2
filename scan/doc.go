// Package scan computes prefix sums over integer slices, sequentially and in
// parallel.
//
// The parallel path is the work-efficient two-phase scan (Blelloch): an
// upsweep that reduces pairs bottom-up over an implicit balanced binary tree
// laid over the slice, followed by a downsweep that pushes the partial sums
// back down. Each phase runs log2(n) levels. All units of one level touch
// disjoint index pairs and run concurrently; a barrier separates every level
// from the next.
//
// # Basic Usage
//
//	data := []int64{1, 2, 3, 4, 5, 6, 7, 8}
//	total, err := scan.Exclusive(ctx, data)
//	// data:  [0 1 3 6 10 15 21 28]
//	// total: 36
//
// The slice length must be a power of two; anything else is rejected with
// ErrInvalidSize before the slice is touched.
//
// # Executors
//
// An Executor runs one level: it calls fn(i) for every i in [0, n) and
// returns once all calls have returned. Two are provided:
//
//   - NewSpawnExecutor(limit): a fresh wave of at most limit goroutines per level
//   - NewQueueExecutor(q, grain): range tasks submitted to a queue.Queue,
//     with Drain as the barrier
//
//	q, _ := queue.New(queue.WithWorkerCount(8))
//	defer q.Close()
//	s := scan.NewScanner[int64](scan.WithExecutor(scan.NewQueueExecutor(q, 64)))
//	total, err := s.Exclusive(ctx, data)
//
// # Sequential reference
//
// SequentialInclusive is the single-pass baseline. For equal inputs,
// SequentialInclusive(x)[i] == Exclusive(x)[i] + x[i].
package scan
