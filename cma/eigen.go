package cma

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultMaxCondition bounds the ratio between the largest and smallest
	// eigenvalue of the covariance matrix.  Smaller eigenvalues are raised
	// to largest/DefaultMaxCondition.
	DefaultMaxCondition = 1e14
	// MinEigenvalue is the smallest acceptable largest eigenvalue.  Below it
	// the distribution has collapsed.
	MinEigenvalue = 1e-280
)

// Eigen is the eigendecomposition C = B * diag(D^2) * B^T of a symmetric
// positive definite matrix.
type Eigen struct {
	// B holds the orthonormal eigenvectors as columns.
	B *mat.Dense
	// Values are the eigenvalues in ascending order, matching the columns
	// of B.
	Values []float64
	// D holds the square roots of Values.
	D []float64
	// Clamped reports whether any eigenvalue was raised to the floor.
	Clamped bool
}

// Decompose computes the eigendecomposition of m.  m is symmetrized as
// (m + m^T)/2 unless it already is a mat.Symmetric.  Eigenvalues below
// largest/maxCondition are clamped to that floor; maxCondition <= 0 selects
// DefaultMaxCondition.  The returned error wraps ErrNumericalDegeneracy if
// the factorization fails or m has no usable positive eigenvalue.
func Decompose(m mat.Matrix, maxCondition float64) (*Eigen, error) {
	if maxCondition <= 0 {
		maxCondition = DefaultMaxCondition
	}

	sym, err := symmetrize(m)
	if err != nil {
		return nil, err
	}
	n := sym.SymmetricDim()

	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition did not converge", ErrNumericalDegeneracy)
	}

	vals := es.Values(nil)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite eigenvalue %v", ErrNumericalDegeneracy, v)
		}
	}
	largest := vals[n-1]
	if largest <= MinEigenvalue {
		return nil, fmt.Errorf("%w: largest eigenvalue %v collapsed", ErrNumericalDegeneracy, largest)
	}

	e := &Eigen{B: &mat.Dense{}, Values: vals, D: make([]float64, n)}
	es.VectorsTo(e.B)

	floor := largest / maxCondition
	for i, v := range vals {
		if v < floor {
			vals[i] = floor
			e.Clamped = true
		}
		e.D[i] = math.Sqrt(vals[i])
	}
	return e, nil
}

// Reconstruct returns B * diag(D^2) * B^T.
func (e *Eigen) Reconstruct() *mat.SymDense {
	n := len(e.Values)
	c := mat.NewSymDense(n, nil)
	col := make([]float64, n)
	for k, v := range e.Values {
		mat.Col(col, k, e.B)
		c.SymRankOne(c, v, mat.NewVecDense(n, col))
	}
	return c
}

// Condition returns the ratio of the largest to the smallest eigenvalue.
func (e *Eigen) Condition() float64 {
	return e.Values[len(e.Values)-1] / e.Values[0]
}

func symmetrize(m mat.Matrix) (*mat.SymDense, error) {
	if s, ok := m.(*mat.SymDense); ok {
		return s, nil
	}

	r, c := m.Dims()
	if r != c || r == 0 {
		return nil, fmt.Errorf("%w: cannot decompose %vx%v matrix", ErrInvalidArgument, r, c)
	}
	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s.SetSym(i, j, (m.At(i, j)+m.At(j, i))/2)
		}
	}
	return s, nil
}
