package atomichash

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is the padding unit used to keep the table header off the
// cache lines of neighbouring allocations. It is taken from golang.org/x/sys.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})
