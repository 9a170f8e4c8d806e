package shark

import "math/rand"

// RandomSource is a reseedable stream of random numbers.  A RandomSource is
// owned by a single solver and must not be shared between goroutines.
type RandomSource interface {
	// Seed resets the stream so that the same sequence of numbers is produced
	// for the same seed.
	Seed(seed int64)
	// NormFloat64 returns a standard normal draw.
	NormFloat64() float64
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
}

// NewRand returns a RandomSource backed by math/rand seeded with seed.
func NewRand(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// RandPoint generates a uniformly distributed position in the box bounds
// defined by low and up.  The number of dimensions is equal to len(low).
func RandPoint(rng RandomSource, low, up []float64) []float64 {
	if len(low) != len(up) {
		panic("low and up vectors are not same length")
	}

	pos := make([]float64, len(low))
	for j := range pos {
		pos[j] = low[j] + rng.Float64()*(up[j]-low[j])
	}
	return pos
}
