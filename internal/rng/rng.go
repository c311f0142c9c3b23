package rng

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
)

// RNG is a seeded ChaCha8 stream. The same seed yields the same sequence of
// values on every platform.
type RNG struct {
	seed uint64
	r    *rand.Rand
}

// New returns a stream seeded from seed.
func New(seed uint64) *RNG {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	return &RNG{seed: seed, r: rand.New(rand.NewChaCha8(key))}
}

// NewRandom seeds a stream from process entropy. Only entry points should
// call it; generation code must be handed an explicit seed.
func NewRandom() *RNG {
	return New(rand.Uint64())
}

func (g *RNG) Seed() uint64 {
	return g.seed
}

func (g *RNG) Uint64() uint64 {
	return g.r.Uint64()
}

func (g *RNG) Uint32() uint32 {
	return g.r.Uint32()
}

// Fork consumes exactly one draw and returns an independent child stream
// seeded from it.
func (g *RNG) Fork() *RNG {
	return New(g.r.Uint64())
}

// Seed8 draws a short seed from [1, 8192). Zero is reserved.
func (g *RNG) Seed8() uint64 {
	return uint64(g.IntRange(1, 8191))
}

// IntRange returns a value in [lo, hi].
func (g *RNG) IntRange(lo, hi int) int {
	if hi < lo {
		panic(fmt.Sprintf("rng: empty range [%d, %d]", lo, hi))
	}
	return lo + int(g.r.Int64N(int64(hi)-int64(lo)+1))
}

// Float64Range returns a value in [lo, hi).
func (g *RNG) Float64Range(lo, hi float64) float64 {
	if hi < lo {
		panic(fmt.Sprintf("rng: empty range [%g, %g)", lo, hi))
	}
	return lo + g.r.Float64()*(hi-lo)
}

func (g *RNG) Float64() float64 {
	return g.r.Float64()
}

func (g *RNG) Bool() bool {
	return g.r.Uint64()&1 == 1
}

// Sign returns 1 or -1.
func (g *RNG) Sign() int {
	if g.Bool() {
		return 1
	}
	return -1
}

func (g *RNG) D4() int   { return g.IntRange(1, 4) }
func (g *RNG) D6() int   { return g.IntRange(1, 6) }
func (g *RNG) D8() int   { return g.IntRange(1, 8) }
func (g *RNG) D10() int  { return g.IntRange(1, 10) }
func (g *RNG) D20() int  { return g.IntRange(1, 20) }
func (g *RNG) D100() int { return g.IntRange(1, 100) }

// Radians returns an angle in [0, 2π).
func (g *RNG) Radians() float64 {
	return g.Float64Range(0, 2*math.Pi)
}

// Select returns a uniformly chosen element. It panics on an empty slice.
func Select[T any](g *RNG, items []T) T {
	return items[g.IntRange(0, len(items)-1)]
}

// SelectN draws n distinct elements without replacement. Each pick swaps the
// chosen pool slot to the back and shrinks the pool.
func SelectN[T any](g *RNG, n int, items []T) []T {
	n = min(n, len(items))
	pool := make([]int, len(items))
	for i := range pool {
		pool[i] = i
	}
	out := make([]T, 0, n)
	for ; n > 0; n-- {
		last := len(pool) - 1
		i := g.IntRange(0, last)
		pool[i], pool[last] = pool[last], pool[i]
		out = append(out, items[pool[last]])
		pool = pool[:last]
	}
	return out
}

// SelectFn returns a picker backed by a forked stream, so calls to the picker
// never shift the parent sequence.
func SelectFn[T any](g *RNG, items []T) func() T {
	child := g.Fork()
	dup := append([]T(nil), items...)
	return func() T {
		return Select(child, dup)
	}
}

// Weighted pairs a value with its selection weight.
type Weighted[T any] struct {
	Weight uint32
	Value  T
}

// W is shorthand for building a Weighted entry.
func W[T any](weight uint32, value T) Weighted[T] {
	return Weighted[T]{Weight: weight, Value: value}
}

// SelectWeighted draws u in [0, total) and returns the first entry whose
// running weight sum exceeds u.
func SelectWeighted[T any](g *RNG, items []Weighted[T]) T {
	var total uint64
	for _, it := range items {
		total += uint64(it.Weight)
	}
	if total == 0 {
		panic("rng: weighted selection with zero total weight")
	}
	u := g.r.Uint64N(total)
	for _, it := range items {
		if u < uint64(it.Weight) {
			return it.Value
		}
		u -= uint64(it.Weight)
	}
	panic("rng: weighted selection fell through")
}
