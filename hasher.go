package atomichash

import (
	"math/bits"
	"unsafe"

	"github.com/zeebo/xxh3"
)

// ways is the number of candidate slots per key.
const ways = 4

// defaultSeeds are the fixed seeds of the four candidate hash functions.
// They are copied into every table on construction and never change.
var defaultSeeds = [ways]uint64{
	0xbb8c484891ec6c86,
	0x8311d8f153515ff4,
	0x1bb782fb90137932,
	0xba4b6fc9f600b396,
}

type hashFunc func(ptr unsafe.Pointer, seed uintptr) uintptr

// hasherSet derives the candidate slot positions of a key.
type hasherSet struct {
	keyHash hashFunc
	seeds   [ways]uintptr
	mask    uintptr
}

func newHasherSet(keyHash hashFunc, tableLen int) hasherSet {
	h := hasherSet{
		keyHash: keyHash,
		mask:    uintptr(tableLen - 1),
	}
	for i, s := range defaultSeeds {
		// on 32-bit platforms fold the high half in rather than dropping it
		if bits.UintSize == 32 {
			s ^= s >> 32
		}
		h.seeds[i] = uintptr(s)
	}
	return h
}

// position returns the i-th candidate slot index of the key at ptr.
//
//go:nosplit
func (h *hasherSet) position(i int, ptr unsafe.Pointer) uintptr {
	return h.keyHash(ptr, h.seeds[i]) & h.mask
}

// positions returns all candidate slot indexes of the key at ptr, in probe
// order. Indexes may coincide.
func (h *hasherSet) positions(ptr unsafe.Pointer) (p [ways]uintptr) {
	for i := range p {
		p[i] = h.keyHash(ptr, h.seeds[i]) & h.mask
	}
	return p
}

// HashString is a seeded xxh3 hash for string keys, usable with
// WithKeyHasher:
//
//	t := New[string, int](1024, WithKeyHasher(HashString))
func HashString(key string, seed uintptr) uintptr {
	return uintptr(xxh3.HashStringSeed(key, uint64(seed)))
}

// builtInHasher obtains Go's built-in map hash function for K.
//
// Notes:
//   - This implementation relies on Go's internal type representation
//   - It should be verified for compatibility with each Go version upgrade
func builtInHasher[K comparable]() hashFunc {
	var m map[K]struct{}
	return iTypeOf(m).MapType().Hasher
}

// nextPowOf2 calculates the smallest power of 2 that is greater than or equal to n.
func nextPowOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// noescape hides a pointer from escape analysis. It is the identity function
// but escape analysis doesn't think the output depends on the input.
//
// nolint:all
//
//go:nosplit
//goland:noinspection ALL
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}

type iTFlag uint8
type iKind uint8
type iNameOff int32
type iTypeOff int32

// iType mirrors the head of the runtime's abi.Type.
type iType struct {
	Size_       uintptr
	PtrBytes    uintptr
	Hash        uint32
	TFlag       iTFlag
	Align_      uint8
	FieldAlign_ uint8
	Kind_       iKind
	Equal       func(unsafe.Pointer, unsafe.Pointer) bool
	GCData      *byte
	Str         iNameOff
	PtrToThis   iTypeOff
}

func (t *iType) MapType() *iMapType {
	return (*iMapType)(unsafe.Pointer(t))
}

// iMapType mirrors the head of the runtime's map type descriptor.
type iMapType struct {
	iType
	Key   *iType
	Elem  *iType
	Group *iType
	// function for hashing keys (ptr to key, seed) -> hash
	Hasher func(unsafe.Pointer, uintptr) uintptr
}

func iTypeOf(a any) *iType {
	eface := *(*iEmptyInterface)(unsafe.Pointer(&a))
	// Types are statically allocated or always reachable, so there is no
	// need to let them escape.
	return (*iType)(noescape(unsafe.Pointer(eface.Type)))
}

type iEmptyInterface struct {
	Type *iType
	Data unsafe.Pointer
}
