package traffic

import (
	"hash/fnv"
	"math/rand"
	"time"
)

// Jitter is a source of uniform noise for one venue's synthesis.
type Jitter interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// JitterSource hands out an independent Jitter per venue. A source built from a
// fixed seed yields the same stream for the same venue id no matter in which
// order concurrent lookups run.
type JitterSource interface {
	ForVenue(venueID string) Jitter
}

type seededSource struct {
	seed int64
}

// NewSeededJitter returns a reproducible JitterSource.
func NewSeededJitter(seed int64) JitterSource {
	return seededSource{seed: seed}
}

// NewRandomJitter seeds from the clock. Used when no seed is configured.
func NewRandomJitter() JitterSource {
	return seededSource{seed: time.Now().UnixNano()}
}

func (s seededSource) ForVenue(venueID string) Jitter {
	h := fnv.New64a()
	_, _ = h.Write([]byte(venueID))
	return rand.New(rand.NewSource(s.seed ^ int64(h.Sum64())))
}

// uniform draws from [lo, hi).
func uniform(j Jitter, lo, hi float64) float64 {
	return lo + j.Float64()*(hi-lo)
}

// spread draws a symmetric multiplier in [1-pct, 1+pct).
func spread(j Jitter, pct float64) float64 {
	return uniform(j, 1-pct, 1+pct)
}

// intBetween draws an integer in [lo, hi].
func intBetween(j Jitter, lo, hi int) int {
	return lo + j.Intn(hi-lo+1)
}
