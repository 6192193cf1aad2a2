//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Pin locks the calling goroutine to its OS thread and restricts that thread
// to one core, picked round-robin by workerID from the cores in the thread's
// current affinity mask. The returned func restores the previous mask and
// unlocks the thread; it must run on the same goroutine.
//
// If the mask cannot be read or set the thread stays locked but unpinned.
func Pin(workerID int) (release func()) {
	runtime.LockOSThread()

	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return runtime.UnlockOSThread
	}

	core, ok := nthAllowed(&prev, workerID)
	if !ok {
		return runtime.UnlockOSThread
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(core)
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return runtime.UnlockOSThread
	}

	return func() {
		_ = unix.SchedSetaffinity(0, &prev)
		runtime.UnlockOSThread()
	}
}

// nthAllowed returns the (workerID mod count)-th core set in allowed.
func nthAllowed(allowed *unix.CPUSet, workerID int) (int, bool) {
	count := allowed.Count()
	if count == 0 {
		return 0, false
	}

	want := workerID % count
	if want < 0 {
		want += count
	}

	seen := 0
	for core := 0; seen < count; core++ {
		if !allowed.IsSet(core) {
			continue
		}
		if seen == want {
			return core, true
		}
		seen++
	}
	return 0, false
}
