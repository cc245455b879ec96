package atomichash

import (
	"errors"
	"fmt"
)

var (
	// ErrNoVacancy is reported when none of a key's candidate slots, nor any
	// slot its occupants could move to, is free. The table may be far from
	// full when this happens; callers should size the table generously.
	ErrNoVacancy = errors.New("atomichash: no vacant slot for key")

	// ErrContention is reported when an insert keeps displacing other keys'
	// entries through races and runs out of rescue attempts.
	ErrContention = errors.New("atomichash: too many displaced entries")
)

// InsertError is returned by Insert. It hands the pair that could not be
// stored back to the caller.
//
// When Rescued is true the pair is not the one passed to Insert: the
// caller's pair was stored, but doing so displaced an entry of another key
// through a race, and re-inserting that entry failed. The caller is now the
// only holder of that pair.
type InsertError[K comparable, V any] struct {
	Key     K
	Value   V
	Rescued bool
	err     error
}

func (e *InsertError[K, V]) Error() string {
	if e.Rescued {
		return fmt.Sprintf("%v (displaced key %v)", e.err, e.Key)
	}
	return fmt.Sprintf("%v (key %v)", e.err, e.Key)
}

func (e *InsertError[K, V]) Unwrap() error {
	return e.err
}
