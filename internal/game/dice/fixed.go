package dice

import (
	"fmt"
	"sync"
)

// FixedSource replays a predetermined sequence of draws. It is used to
// reproduce a battle exactly, and by tests to force specific outcomes.
//
// Ints are returned verbatim from Intn; Floats are returned from Float64.
type FixedSource struct {
	mu     sync.Mutex
	ints   []int
	floats []float64
}

// NewFixedSource creates a FixedSource replaying ints for Intn and floats for Float64.
func NewFixedSource(ints []int, floats ...float64) *FixedSource {
	return &FixedSource{ints: append([]int(nil), ints...), floats: append([]float64(nil), floats...)}
}

// Intn returns the next queued int.
//
// Precondition: a queued int exists and lies in [0, n). Panics otherwise.
func (f *FixedSource) Intn(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ints) == 0 {
		panic(fmt.Sprintf("dice: FixedSource exhausted (Intn(%d))", n))
	}
	v := f.ints[0]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("dice: FixedSource value %d out of range [0, %d)", v, n))
	}
	f.ints = f.ints[1:]
	return v
}

// Float64 returns the next queued float.
//
// Precondition: a queued float exists. Panics otherwise.
func (f *FixedSource) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.floats) == 0 {
		panic("dice: FixedSource exhausted (Float64)")
	}
	v := f.floats[0]
	f.floats = f.floats[1:]
	return v
}

// Remaining returns how many ints and floats have not been consumed.
func (f *FixedSource) Remaining() (ints, floats int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ints), len(f.floats)
}
