package scheduler

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/combin"
)

// permPool hands out permutation indices in [0, n!) uniformly at random,
// each at most once. It runs a Fisher-Yates shuffle lazily: only positions
// that were swapped are stored, so memory grows with the number of draws
// instead of with n!.
type permPool struct {
	n         int
	size      int
	remaining int
	swapped   map[int]int
	rng       *rand.Rand
}

func newPermPool(n int, rng *rand.Rand) *permPool {
	size := 1
	if n > 0 {
		size = combin.NumPermutations(n, n)
	}
	return &permPool{n: n, size: size, remaining: size, swapped: make(map[int]int), rng: rng}
}

// Size is the number of distinct permutations.
func (p *permPool) Size() int { return p.size }

// Remaining is the number of permutations not drawn yet.
func (p *permPool) Remaining() int { return p.remaining }

// Next removes a random index from the pool. ok is false once it is empty.
func (p *permPool) Next() (idx int, ok bool) {
	if p.remaining == 0 {
		return 0, false
	}
	j := p.rng.IntN(p.remaining)
	last := p.remaining - 1
	idx = p.at(j)
	p.swapped[j] = p.at(last)
	delete(p.swapped, last)
	p.remaining--
	return idx, true
}

func (p *permPool) at(i int) int {
	if v, ok := p.swapped[i]; ok {
		return v
	}
	return i
}

// Permutation writes the ordering for idx into dst, which must have length n.
func (p *permPool) Permutation(idx int, dst []int) []int {
	if p.n == 0 {
		return dst[:0]
	}
	return combin.IndexToPermutation(dst, idx, p.n, p.n)
}
