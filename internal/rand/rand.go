// Package rand provides the seeded random source used by the package spawner.
package rand

import (
	"math"
	"sync"
	"time"

	"github.com/MichaelTJones/pcg"
)

// Source is the subset of randomness the simulation draws on.
type Source interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// Rand is a PCG32 generator safe for concurrent use.
type Rand struct {
	mu sync.Mutex
	r  *pcg.PCG32
}

// New returns a generator seeded with seed, or with the current time when seed is 0.
func New(seed int64) *Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := &Rand{r: pcg.NewPCG32()}
	r.r.Seed(uint64(seed), 0xda3e39cb94b95bdb)
	return r
}

func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic("rand: Intn called with n <= 0")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.r.Bounded(uint32(n)))
}

func (r *Rand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(r.r.Random()) / (1 << 32)
}

// Between returns an integer uniformly drawn from [lo, hi].
func Between(s Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.Intn(hi-lo+1)
}

// ExponentialIndex samples an index in [0, n) from floor(-ln(1-U)/lambda), clamped
// to n-1, so small indices are favored.
func ExponentialIndex(s Source, lambda float64, n int) int {
	if n <= 1 {
		return 0
	}
	idx := math.Floor(-math.Log(1-s.Float64()) / lambda)
	if idx >= float64(n-1) {
		return n - 1
	}
	return int(idx)
}
