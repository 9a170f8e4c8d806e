package cma

import (
	"github.com/aldor007/shark-old"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// sampler draws candidates from N(mean, sigma^2 * B*diag(D^2)*B^T).
type sampler struct {
	rng shark.RandomSource
}

// sample draws lambda individuals.  All random numbers are drawn here, in
// sampling order, so that evaluation order cannot affect reproducibility.
func (s sampler) sample(lambda int, mean []float64, sigma float64, b *mat.Dense, d []float64) Population {
	n := len(mean)
	pop := make(Population, lambda)
	scaled := make([]float64, n)
	for k := range pop {
		ind := &Individual{
			Index: k,
			X:     make([]float64, n),
			Z:     make([]float64, n),
			Y:     make([]float64, n),
		}
		for i := range ind.Z {
			ind.Z[i] = s.rng.NormFloat64()
		}

		floats.MulTo(scaled, d, ind.Z)
		y := mat.NewVecDense(n, ind.Y)
		y.MulVec(b, mat.NewVecDense(n, scaled))

		floats.AddScaledTo(ind.X, mean, sigma, ind.Y)
		pop[k] = ind
	}
	return pop
}
