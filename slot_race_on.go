//go:build race

package atomichash

import (
	"sync/atomic"
	"unsafe"
)

const raceEnabled = true

// Under race detector, disable TSO optimizations
const isTSO = false

// Conservative: atomic pointer load to satisfy race detector
//
//go:nosplit
func loadPtr(addr *unsafe.Pointer) unsafe.Pointer {
	return atomic.LoadPointer(addr)
}
