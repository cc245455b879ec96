package atomichash

import (
	"testing"

	"github.com/thepudds/fzgen/fuzzer"
)

// Fuzz_Table_Chain runs sequences of operations against a small table and a
// plain map that models it. Without concurrency an Insert either stores the
// caller's pair or fails with ErrNoVacancy; it never rescues another key.
func Fuzz_Table_Chain(f *testing.F) {
	f.Add([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15})
	f.Add([]byte("insert get remove len range"))

	f.Fuzz(func(t *testing.T, data []byte) {
		var capacity uint8
		fz := fuzzer.NewFuzzer(data)
		fz.Fill(&capacity)

		target := New[uint16, uint16](int(capacity))
		model := make(map[uint16]uint16)

		steps := []fuzzer.Step{
			{
				Name: "Fuzz_Table_Insert",
				Func: func(key, value uint16) {
					err := target.Insert(key, value)
					if err == nil {
						model[key] = value
						return
					}
					ie, ok := err.(*InsertError[uint16, uint16])
					if !ok || ie.Rescued || ie.Key != key || ie.Value != value {
						t.Fatalf("Insert(%d, %d) returned unexpected error %v", key, value, err)
					}
					if _, present := model[key]; present {
						t.Fatalf("Insert(%d, %d) failed to update a present key: %v", key, value, err)
					}
				},
			},
			{
				Name: "Fuzz_Table_Get",
				Func: func(key uint16) {
					got, ok := target.Get(key)
					want, wantOk := model[key]
					if got != want || ok != wantOk {
						t.Fatalf("Get(%d) = (%d, %v), want (%d, %v)", key, got, ok, want, wantOk)
					}
				},
			},
			{
				Name: "Fuzz_Table_Remove",
				Func: func(key uint16) {
					target.Remove(key)
					delete(model, key)
				},
			},
			{
				Name: "Fuzz_Table_Len",
				Func: func() int {
					n := target.Len()
					if n != len(model) {
						t.Fatalf("Len() = %d, want %d", n, len(model))
					}
					return n
				},
			},
			{
				Name: "Fuzz_Table_Range",
				Func: func() {
					seen := 0
					target.Range(func(k, v uint16) bool {
						seen++
						if want, ok := model[k]; !ok || want != v {
							t.Fatalf("Range yielded (%d, %d), model has (%d, %v)", k, v, want, ok)
						}
						return true
					})
					if seen != len(model) {
						t.Fatalf("Range yielded %d entries, want %d", seen, len(model))
					}
					if stats := target.Stats(); stats.Misplaced != 0 || stats.Shadowed != 0 {
						t.Fatalf("inconsistent table:\n%s", stats.ToString())
					}
				},
			},
		}

		// Execute a specific chain of steps, with the count, sequence and arguments controlled by fz.Chain
		fz.Chain(steps)
	})
}
