// Package generator draws randomized punch delays.
package generator

import (
	"math/rand"
	"time"
)

// Generator produces uniformly distributed delays.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a Generator with a fixed seed.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Delay returns a duration drawn uniformly from [lo, hi].
// When hi <= lo the result is lo.
func (g *Generator) Delay(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	span := float64(hi - lo)
	d := lo + time.Duration(g.rnd.Float64()*span)
	if d > hi {
		d = hi
	}
	return d
}
