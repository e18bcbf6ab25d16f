package load

import "iter"

// Seed is the fixed seed of the synthetic household load. The same request
// must always produce the same schedule, so it is not configurable.
const Seed uint32 = 42

const mulberryIncrement uint32 = 0x6D2B79F5

// Mulberry32 is a counter-based 32-bit generator. It is a replayable
// sequence of floats in [0, 1), not a source of entropy.
type Mulberry32 struct {
	seed  uint32
	state uint32
}

func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{seed: seed, state: seed}
}

// Next advances the counter and returns the next value in [0, 1).
func (m *Mulberry32) Next() float64 {
	m.state += mulberryIncrement
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296
}

// Reset rewinds the generator to its seed.
func (m *Mulberry32) Reset() {
	m.state = m.seed
}

// Draws yields the first n values of the sequence. Each iteration starts
// from the seed, independent of the generator's current position.
func (m *Mulberry32) Draws(n int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		g := NewMulberry32(m.seed)
		for i := 0; i < n; i++ {
			if !yield(g.Next()) {
				return
			}
		}
	}
}
