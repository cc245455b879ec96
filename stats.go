package atomichash

import (
	"fmt"
	"strings"
	"unsafe"
)

// TableStats is Table statistics.
//
// Warning: map statistics are intended to be used for diagnostic
// purposes, not for production code. This means that breaking changes
// may be introduced into this struct even between minor releases.
type TableStats struct {
	// Capacity is the number of slots.
	Capacity int
	// Occupied is the number of slots holding an entry.
	Occupied int
	// Empty is the number of vacant slots.
	Empty int
	// Occupancy is Occupied as a percentage of Capacity.
	Occupancy float64
	// ByCandidate counts entries by the candidate index (probe order) of
	// the slot they occupy. Entries in later candidates cost Get more probes.
	ByCandidate [ways]int
	// Shadowed is the number of entries whose key also sits in an earlier
	// candidate slot. Get never returns them. Only races between inserts of
	// the same key produce them.
	Shadowed int
	// Misplaced is the number of entries occupying a slot that is none of
	// their key's candidates. It must be zero.
	Misplaced int
}

// Stats walks the table and returns its statistics. Run it on a settled
// table: entries moving concurrently skew the counters.
func (t *Table[K, V]) Stats() *TableStats {
	stats := &TableStats{
		Capacity: len(t.slots),
	}
	for i := range t.slots {
		e := t.slots[i].load()
		if e == nil {
			stats.Empty++
			continue
		}
		stats.Occupied++

		pos := t.hashers.positions(noescape(unsafe.Pointer(&e.key)))
		placed := false
		for j, p := range pos {
			if p == uintptr(i) {
				stats.ByCandidate[j]++
				placed = true
				break
			}
			if o := t.slots[p].load(); o != nil && o.key == e.key {
				stats.Shadowed++
				placed = true
				break
			}
		}
		if !placed {
			stats.Misplaced++
		}
	}
	if stats.Capacity > 0 {
		stats.Occupancy = 100 * float64(stats.Occupied) / float64(stats.Capacity)
	}
	return stats
}

// ToString returns string representation of table stats.
func (s *TableStats) ToString() string {
	var sb strings.Builder
	sb.WriteString("TableStats{\n")
	sb.WriteString(fmt.Sprintf("Capacity:    %d\n", s.Capacity))
	sb.WriteString(fmt.Sprintf("Occupied:    %d\n", s.Occupied))
	sb.WriteString(fmt.Sprintf("Empty:       %d\n", s.Empty))
	sb.WriteString(fmt.Sprintf("Occupancy:   %.2f%%\n", s.Occupancy))
	sb.WriteString(fmt.Sprintf("ByCandidate: %v\n", s.ByCandidate))
	sb.WriteString(fmt.Sprintf("Shadowed:    %d\n", s.Shadowed))
	sb.WriteString(fmt.Sprintf("Misplaced:   %d\n", s.Misplaced))
	sb.WriteString("}\n")
	return sb.String()
}
