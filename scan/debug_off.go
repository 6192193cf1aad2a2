//go:build !debug

package scan

func debugLog(string, ...any) {}
