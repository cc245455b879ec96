package atomichash

import (
	"fmt"
	"unsafe"
)

// Table is a fixed-capacity concurrent hash table. All methods are safe for
// concurrent use by multiple goroutines without additional locking or
// coordination, and none of them blocks.
//
// Unlike a Go map or sync.Map the table never resizes. Every key may live in
// one of four candidate slots chosen by four independently seeded hash
// functions (cuckoo hashing without probing). Get and Remove look at no more
// than those four slots. Insert additionally tries to move one occupant of a
// candidate slot to one of the occupant's own vacant candidates, checking at
// most 16 further slots before failing with ErrNoVacancy. This can happen
// well below the nominal capacity for unlucky key sets: size the table for
// about twice the expected number of keys.
//
// The table favours lookups of existing keys over inserts of new ones and
// suits workloads whose key set is largely fixed over the lifetime of the
// program, such as metrics or connection state keyed by a stable id.
//
// Concurrent writers of the same key race and the last write wins. There is
// no ordering between operations on different keys, and iteration is not a
// snapshot of the table.
//
// A Table must not be copied after first use.
type Table[K comparable, V any] struct {
	//lint:ignore U1000 prevents false sharing
	pad [(CacheLineSize - unsafe.Sizeof(struct {
		slots      []unsafe.Pointer
		hashers    hasherSet
		maxRescues int
	}{})%CacheLineSize) % CacheLineSize]byte

	_          noCopy
	slots      []slot[K, V]
	hashers    hasherSet
	maxRescues int // WithMaxRescues
}

// New creates a table with room for at least capacity entries. The slot
// count is capacity rounded up to the next power of two and never changes.
//
// Parameters:
//   - capacity: requested number of slots; values below one give a single slot
//   - WithMaxRescues option to bound race recovery per Insert
//   - WithKeyHasher option to replace the built-in hash function
func New[K comparable, V any](capacity int, options ...func(*Config)) *Table[K, V] {
	c := &Config{
		maxRescues: defaultMaxRescues,
	}
	for _, o := range options {
		o(c)
	}

	keyHash := builtInHasher[K]()
	if c.keyHasher != nil {
		fn, ok := c.keyHasher.(func(K, uintptr) uintptr)
		if !ok {
			panic(fmt.Sprintf("atomichash: key hasher %T does not hash %T keys", c.keyHasher, *new(K)))
		}
		keyHash = func(ptr unsafe.Pointer, seed uintptr) uintptr {
			return fn(*(*K)(ptr), seed)
		}
	}

	tableLen := nextPowOf2(capacity)
	return &Table[K, V]{
		slots:      make([]slot[K, V], tableLen),
		hashers:    newHasherSet(keyHash, tableLen),
		maxRescues: c.maxRescues,
	}
}

// Capacity returns the number of slots.
func (t *Table[K, V]) Capacity() int {
	return len(t.slots)
}

// Get returns the value stored for key.
func (t *Table[K, V]) Get(key K) (value V, ok bool) {
	ptr := noescape(unsafe.Pointer(&key))
	for i := 0; i < ways; i++ {
		if e := t.slots[t.hashers.position(i, ptr)].load(); e != nil && e.key == key {
			return e.value, true
		}
	}
	return
}

// Insert stores value for key, replacing any previous value.
//
// On failure the returned error is an *InsertError carrying a pair back to
// the caller and wrapping ErrNoVacancy or ErrContention. See InsertError for
// when that pair is not the one passed in.
func (t *Table[K, V]) Insert(key K, value V) error {
	e := &entry[K, V]{key: key, value: value}
	rescued := false
	for rescues := 0; ; rescues++ {
		displaced, ok := t.publish(e)
		if !ok {
			return &InsertError[K, V]{Key: e.key, Value: e.value, Rescued: rescued, err: ErrNoVacancy}
		}
		if displaced == nil {
			return nil
		}
		if rescues >= t.maxRescues {
			return &InsertError[K, V]{Key: displaced.key, Value: displaced.value, Rescued: true, err: ErrContention}
		}
		// a concurrent writer changed a slot between our check and our
		// swap, publish the entry we pushed out again
		e, rescued = displaced, true
	}
}

// publish runs one pass of the insert protocol for e. It reports false if
// no slot could be found. Otherwise e is published and the returned entry,
// if not nil, belongs to another key and was pushed out by a race; the
// caller must publish it again.
func (t *Table[K, V]) publish(e *entry[K, V]) (*entry[K, V], bool) {
	pos := t.hashers.positions(unsafe.Pointer(&e.key))

	// the key is already present: replace its entry
	for _, p := range pos {
		s := &t.slots[p]
		if cur := s.load(); cur != nil && cur.key == e.key {
			return casualty(s.swap(e), e.key), true
		}
	}

	// take the first vacant candidate
	for _, p := range pos {
		s := &t.slots[p]
		if s.isEmpty() {
			return casualty(s.swap(e), e.key), true
		}
	}

	// every candidate is taken by another key, try to move one of them to a
	// vacant slot among its own candidates
	for _, p := range pos {
		s := &t.slots[p]
		cur := s.load()
		if cur == nil {
			// vacated since the previous pass
			return casualty(s.swap(e), e.key), true
		}
		for i := 0; i < ways; i++ {
			dst := &t.slots[t.hashers.position(i, unsafe.Pointer(&cur.key))]
			if !dst.isEmpty() {
				continue
			}
			evicted := s.swap(e)
			if evicted == nil || evicted.key == e.key {
				return nil, true
			}
			if evicted.key != cur.key {
				// someone replaced the occupant; dst is not
				// necessarily one of this key's candidates
				return evicted, true
			}
			return casualty(dst.swap(evicted), evicted.key), true
		}
	}

	return nil, false
}

// casualty returns prev if it is an entry of a key other than key.
//
//go:nosplit
func casualty[K comparable, V any](prev *entry[K, V], key K) *entry[K, V] {
	if prev != nil && prev.key != key {
		return prev
	}
	return nil
}

// Remove deletes the entry for key from the first candidate slot holding
// it. It is a no-op if the key is absent.
//
// An entry is only cleared while it is still the one found, so a different
// key that a concurrent Insert publishes into the same slot is never lost.
func (t *Table[K, V]) Remove(key K) {
	ptr := noescape(unsafe.Pointer(&key))
	for i := 0; i < ways; i++ {
		s := &t.slots[t.hashers.position(i, ptr)]
		for {
			e := s.load()
			if e == nil || e.key != key {
				break
			}
			if s.compareAndClear(e) {
				return
			}
		}
	}
}

// Range calls yield for each key and value present in the table, scanning
// the slots once in index order. If yield returns false, Range stops.
//
// Range does not block other operations and is not a snapshot: entries
// stored, removed, or moved concurrently may be missed or seen twice.
func (t *Table[K, V]) Range(yield func(key K, value V) bool) {
	for i := range t.slots {
		if e := t.slots[i].load(); e != nil {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// All returns an iterator function for use with range-over-func. Each call
// starts a fresh scan.
func (t *Table[K, V]) All() func(yield func(K, V) bool) {
	return t.Range
}

// Len returns the number of occupied slots. It scans the whole table.
func (t *Table[K, V]) Len() int {
	n := 0
	for i := range t.slots {
		if !t.slots[i].isEmpty() {
			n++
		}
	}
	return n
}

// Clear empties every slot. Inserts running concurrently may survive it.
func (t *Table[K, V]) Clear() {
	for i := range t.slots {
		t.slots[i].clear()
	}
}

// noCopy may be added to structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
//goland:noinspection GoVetCopyLock
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
