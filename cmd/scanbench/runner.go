package main

import (
	"cmp"
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/utkarsh5026/scanpool/queue"
	"github.com/utkarsh5026/scanpool/scan"
)

var allExecutors = []string{
	"Sequential",
	"Spawn",
	"Queue",
}

// RunResult holds the timing of one executor.
type RunResult struct {
	Name     string
	Elapsed  time.Duration
	Total    int64
	Verified bool
	Err      error
	Rank     int
}

type benchConfig struct {
	log2n    int
	workers  int
	capacity int
	grain    int
	seed     int64
	maxValue int64
	verify   bool
}

// generateInput fills an array with pseudo-random values in [0, max).
func generateInput(n int, seed, maxValue int64) []int64 {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- benchmark data
	data := make([]int64, n)
	for i := range data {
		data[i] = rng.Int63n(maxValue)
	}
	return data
}

// Runner times one executor against a shared input.
type Runner struct {
	name     string
	conf     benchConfig
	input    []int64
	expected []int64 // exclusive reference, nil unless verifying
}

func newRunner(name string, conf benchConfig, input, expected []int64) *Runner {
	return &Runner{
		name:     name,
		conf:     conf,
		input:    input,
		expected: expected,
	}
}

// Run copies the input, times the scan and checks it against the reference.
func (r *Runner) Run(bar *progressbar.ProgressBar) RunResult {
	data := slices.Clone(r.input)
	res := RunResult{Name: r.name}

	var elapsed time.Duration
	switch r.name {
	case "Sequential":
		start := time.Now()
		res.Total = scan.SequentialInclusive(data)
		elapsed = time.Since(start)
		// Compare in exclusive form.
		for i := len(data) - 1; i >= 0; i-- {
			data[i] -= r.input[i]
		}

	case "Queue":
		q, err := queue.New(queue.WithCapacity(r.conf.capacity), queue.WithWorkerCount(r.conf.workers))
		if err != nil {
			res.Err = err
			return res
		}
		defer q.Close()
		res.Total, elapsed, res.Err = timeExclusive(data, scan.NewQueueExecutor(q, r.conf.grain))

	default:
		res.Total, elapsed, res.Err = timeExclusive(data, scan.NewSpawnExecutor(r.conf.workers))
	}

	res.Elapsed = elapsed
	if res.Err == nil && r.expected != nil {
		res.Verified = slices.Equal(data, r.expected)
		if !res.Verified {
			res.Err = fmt.Errorf("%s: result differs from reference", r.name)
		}
	}

	if bar != nil {
		_ = bar.Add(1)
	}
	return res
}

func timeExclusive(data []int64, e scan.Executor) (int64, time.Duration, error) {
	s := scan.NewScanner[int64](scan.WithExecutor(e))
	start := time.Now()
	total, err := s.Exclusive(context.Background(), data)
	return total, time.Since(start), err
}

// calculateStats returns the median run by elapsed time.
func calculateStats(name string, results []RunResult) RunResult {
	if len(results) == 0 {
		return RunResult{Name: name}
	}

	slices.SortFunc(results, func(a, b RunResult) int {
		return cmp.Compare(a.Elapsed, b.Elapsed)
	})

	for _, r := range results {
		if r.Err != nil {
			return r
		}
	}
	return results[len(results)/2]
}
