// Package cpu pins worker goroutines to individual cores.
package cpu
