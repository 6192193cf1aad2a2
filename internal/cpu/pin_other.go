//go:build !linux && !windows

package cpu

import "runtime"

// Pin locks the calling goroutine to its OS thread. Core pinning is not
// available on this platform.
func Pin(int) (release func()) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread
}
