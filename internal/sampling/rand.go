// Package sampling draws the hosts, capped positives and negatives that make
// up a dataset. Every draw goes through one Rand created per run, and every
// set is canonicalized by sorting before it is sampled from, so a seed fully
// determines the result.
package sampling

import (
	"math/rand/v2"
	"slices"
)

// pcgStream is the fixed PCG increment; only the seed varies between runs.
const pcgStream = 0x9e3779b97f4a7c15

// Rand is the single pseudo-random stream of a run.
type Rand struct {
	rng   *rand.Rand
	seed  int64
	draws uint64
}

// NewRand returns a generator whose output depends only on seed.
func NewRand(seed int64) *Rand {
	return &Rand{
		rng:  rand.New(rand.NewPCG(uint64(seed), pcgStream)), //nolint:gosec // reproducible sampling, not security
		seed: seed,
	}
}

// Seed returns the seed the generator was created with.
func (r *Rand) Seed() int64 {
	return r.seed
}

// Draws returns how many values have been taken from the stream.
func (r *Rand) Draws() uint64 {
	return r.draws
}

// intN returns a uniform int in [0, n).
func (r *Rand) intN(n int) int {
	r.draws++
	return r.rng.IntN(n)
}

// choose returns k distinct elements of items picked uniformly, in pick
// order. items is not modified. k must be in [0, len(items)].
func (r *Rand) choose(items []string, k int) []string {
	pool := slices.Clone(items)
	for i := range k {
		j := i + r.intN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k:k]
}

// shuffle permutes n elements in place through swap (Fisher-Yates).
func (r *Rand) shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.intN(i + 1)
		swap(i, j)
	}
}

// canonical returns a sorted copy of items without duplicates.
func canonical(items []string) []string {
	out := slices.Clone(items)
	slices.Sort(out)
	return slices.Compact(out)
}
