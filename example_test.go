package atomichash_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/llxisdsh/atomichash"
)

// Values that are themselves atomic can be updated in place by any number
// of goroutines once their keys are in the table.
func ExampleTable() {
	m := atomichash.New[uint64, *atomic.Uint64](128)
	if err := m.Insert(0, new(atomic.Uint64)); err != nil {
		panic(err)
	}

	var wg sync.WaitGroup
	for _, v := range []uint64{0, 1} {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if c, ok := m.Get(0); ok {
					c.Store(v)
				}
			}
		}(v)
	}
	wg.Wait()

	c, _ := m.Get(0)
	// the last write is going to win
	fmt.Println(c.Load() == 0 || c.Load() == 1)
	// Output: true
}

func ExampleTable_Insert() {
	m := atomichash.New[string, int](1)
	fmt.Println(m.Insert("a", 1))

	err := m.Insert("b", 2)
	var ie *atomichash.InsertError[string, int]
	if errors.As(err, &ie) && errors.Is(err, atomichash.ErrNoVacancy) {
		fmt.Println("no room for", ie.Key, ie.Value)
	}
	// Output:
	// <nil>
	// no room for b 2
}
