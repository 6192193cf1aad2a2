package scan

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// borrowSet records which unit owns each index during one level.
// A set lives for exactly one level and is dropped at its barrier.
type borrowSet struct {
	owners []atomic.Int64
	once   sync.Once
	fail   error
}

func newBorrowSet(n int) *borrowSet {
	return &borrowSet{owners: make([]atomic.Int64, n)}
}

// claim takes every index for unit. It returns false, and records the first
// conflict, if any index already belongs to another unit.
func (b *borrowSet) claim(unit int, idx ...int) bool {
	for _, i := range idx {
		if i < 0 || i >= len(b.owners) {
			b.record(fmt.Errorf("%w: unit %d index %d out of range [0, %d)", ErrOverlappingBorrow, unit, i, len(b.owners)))
			return false
		}

		owner := &b.owners[i]
		if owner.CompareAndSwap(0, int64(unit)) || owner.Load() == int64(unit) {
			continue
		}
		b.record(fmt.Errorf("%w: index %d claimed by units %d and %d", ErrOverlappingBorrow, i, owner.Load(), unit))
		return false
	}
	return true
}

func (b *borrowSet) record(err error) {
	b.once.Do(func() { b.fail = err })
}

// err returns the first conflict. Call it only after the level's barrier.
func (b *borrowSet) err() error {
	return b.fail
}
