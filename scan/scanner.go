package scan

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

var (
	ErrInvalidSize       = errors.New("scan length must be a power of two and at least 1")
	ErrOverlappingBorrow = errors.New("units of one level touched the same index")
)

// Scanner runs parallel prefix sums over slices of T.
//
// Type parameters:
//   - T: any integer type; sums wrap on overflow like ordinary Go arithmetic
type Scanner[T constraints.Integer] struct {
	conf *config
}

// NewScanner creates a scanner with the given options.
//
// Example:
//
//	s := NewScanner[int](WithExecutor(NewSpawnExecutor(8)))
//	total, err := s.Exclusive(ctx, data)
func NewScanner[T constraints.Integer](opts ...Option) *Scanner[T] {
	return &Scanner[T]{
		conf: newConfig(opts...),
	}
}

// Exclusive replaces data with its exclusive prefix sum and returns the sum
// of the original elements.
//
// len(data) must be a power of two; otherwise ErrInvalidSize is returned and
// data is left untouched. ctx is checked at every level barrier. If it ends
// mid-scan, ctx.Err() is returned and data holds an intermediate state.
func (s *Scanner[T]) Exclusive(ctx context.Context, data []T) (T, error) {
	n := len(data)
	if !IsPowerOfTwo(n) {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidSize, n)
	}

	if err := s.upsweep(ctx, data); err != nil {
		return 0, err
	}

	total := data[n-1]
	data[n-1] = 0

	if err := s.downsweep(ctx, data); err != nil {
		return 0, err
	}
	return total, nil
}

// Inclusive replaces data with its inclusive prefix sum and returns the sum
// of the original elements. It runs Exclusive and then shifts the result one
// slot left in two barriered levels, writing the total into the last slot.
// The size precondition is the same as for Exclusive.
func (s *Scanner[T]) Inclusive(ctx context.Context, data []T) (T, error) {
	total, err := s.Exclusive(ctx, data)
	if err != nil {
		return 0, err
	}

	n := len(data)
	shifted := make([]T, n)
	shifted[n-1] = total

	if err := s.run(ctx, n-1, func(i int) { shifted[i] = data[i+1] }); err != nil {
		return 0, err
	}
	if err := s.run(ctx, n, func(i int) { data[i] = shifted[i] }); err != nil {
		return 0, err
	}
	return total, nil
}

// upsweep builds partial sums bottom-up. After the last level data[n-1]
// holds the total.
func (s *Scanner[T]) upsweep(ctx context.Context, data []T) error {
	offset := 1
	for d := len(data) >> 1; d > 0; d >>= 1 {
		off := offset
		debugLog("upsweep: units=%d offset=%d", d, off)

		err := s.level(ctx, len(data), d,
			func(i int) (int, int) {
				return off*(2*i) - 1, off*(2*i-1) - 1
			},
			func(a, b int) {
				data[a] += data[b]
			},
		)
		if err != nil {
			return err
		}
		offset <<= 1
	}
	return nil
}

// downsweep pushes the accumulated sums back down the tree. It expects the
// root slot to have been cleared.
func (s *Scanner[T]) downsweep(ctx context.Context, data []T) error {
	n := len(data)
	offset := n >> 1
	for d := 1; d <= n>>1; d <<= 1 {
		off := offset
		debugLog("downsweep: units=%d offset=%d", d, off)

		err := s.level(ctx, n, d,
			func(i int) (int, int) {
				return off*(2*i-1) - 1, off*(2*i) - 1
			},
			func(a, b int) {
				data[a] += data[b]
				data[a], data[b] = data[b], data[a]
			},
		)
		if err != nil {
			return err
		}
		offset >>= 1
	}
	return nil
}

// level runs d units numbered 1..d. pair maps a unit to the two indexes it
// owns for this level and apply does the work on them.
func (s *Scanner[T]) level(ctx context.Context, n, d int, pair func(i int) (a, b int), apply func(a, b int)) error {
	var borrows *borrowSet
	if s.conf.borrowCheck {
		borrows = newBorrowSet(n)
	}

	err := s.run(ctx, d, func(i int) {
		unit := i + 1
		a, b := pair(unit)
		if borrows != nil && !borrows.claim(unit, a, b) {
			return
		}
		apply(a, b)
	})
	if err != nil {
		return err
	}

	if borrows != nil {
		return borrows.err()
	}
	return nil
}

// run checks ctx and hands one level to the executor.
func (s *Scanner[T]) run(ctx context.Context, n int, fn func(i int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.conf.executor.Run(ctx, n, fn)
}

// Exclusive runs a one-shot Scanner over data. See Scanner.Exclusive.
func Exclusive[T constraints.Integer](ctx context.Context, data []T, opts ...Option) (T, error) {
	return NewScanner[T](opts...).Exclusive(ctx, data)
}

// Inclusive runs a one-shot Scanner over data. See Scanner.Inclusive.
func Inclusive[T constraints.Integer](ctx context.Context, data []T, opts ...Option) (T, error) {
	return NewScanner[T](opts...).Inclusive(ctx, data)
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
