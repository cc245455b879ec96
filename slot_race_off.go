//go:build !race

package atomichash

import (
	"runtime"
	"sync/atomic"
	"unsafe"
)

const raceEnabled = false

// Detect TSO architectures; on TSO, plain reads are safe for pointers
const isTSO = runtime.GOARCH == "amd64" ||
	runtime.GOARCH == "386" ||
	runtime.GOARCH == "s390x"

// TSO: plain pointer load; non-TSO: use atomic.LoadPointer
//
//go:nosplit
func loadPtr(addr *unsafe.Pointer) unsafe.Pointer {
	//goland:noinspection ALL
	if isTSO {
		return *addr
	} else {
		return atomic.LoadPointer(addr)
	}
}
