//go:build windows

package cpu

import (
	"runtime"

	"golang.org/x/sys/windows"
)

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// Pin locks the calling goroutine to its OS thread and restricts that thread
// to core workerID mod NumCPU. The returned func restores the previous mask
// and unlocks the thread; it must run on the same goroutine.
func Pin(workerID int) (release func()) {
	runtime.LockOSThread()

	n := runtime.NumCPU()
	core := workerID % n
	if core < 0 {
		core += n
	}
	if core >= 64 {
		return runtime.UnlockOSThread
	}

	thread := windows.CurrentThread()
	prev, _, _ := setThreadAffinityMask.Call(uintptr(thread), uintptr(1)<<core)
	if prev == 0 {
		return runtime.UnlockOSThread
	}

	return func() {
		_, _, _ = setThreadAffinityMask.Call(uintptr(thread), prev)
		runtime.UnlockOSThread()
	}
}
