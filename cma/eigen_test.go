package cma

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func requireMatClose(t *testing.T, want, got mat.Matrix, tol float64) {
	t.Helper()
	r, c := want.Dims()
	gr, gc := got.Dims()
	require.Equal(t, r, gr)
	require.Equal(t, c, gc)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if diff := math.Abs(want.At(i, j) - got.At(i, j)); diff > tol {
				t.Errorf("(%v,%v): expect %v, got %v", i, j, want.At(i, j), got.At(i, j))
			}
		}
	}
}

func TestDecompose(t *testing.T) {
	c := mat.NewSymDense(2, []float64{2, 1, 1, 2})
	e, err := Decompose(c, 0)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1, 3}, e.Values, 1e-12)
	require.InDeltaSlice(t, []float64{1, math.Sqrt(3)}, e.D, 1e-12)
	require.False(t, e.Clamped)
	require.InDelta(t, 3, e.Condition(), 1e-12)
	requireMatClose(t, c, e.Reconstruct(), 1e-12)

	// B must be orthonormal
	var btb mat.Dense
	btb.Mul(e.B.T(), e.B)
	requireMatClose(t, mat.NewDiagDense(2, []float64{1, 1}), &btb, 1e-12)
}

func TestDecomposeSymmetrizes(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{
		2, 0,
		2, 2,
	})
	e, err := Decompose(m, 0)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1, 3}, e.Values, 1e-12)
	requireMatClose(t, mat.NewSymDense(2, []float64{2, 1, 1, 2}), e.Reconstruct(), 1e-12)
}

func TestDecomposeClamps(t *testing.T) {
	c := mat.NewSymDense(3, []float64{
		1, 0, 0,
		0, 1e-20, 0,
		0, 0, 4,
	})
	e, err := Decompose(c, 1e10)
	require.NoError(t, err)
	require.True(t, e.Clamped)
	require.InDelta(t, 4e-10, e.Values[0], 1e-22)
	require.InDelta(t, 1e10, e.Condition(), 1)
	for _, d := range e.D {
		require.Greater(t, d, 0.0)
	}
}

func TestDecomposeDegenerate(t *testing.T) {
	_, err := Decompose(mat.NewSymDense(3, nil), 0)
	require.ErrorIs(t, err, ErrNumericalDegeneracy)

	negdef := mat.NewSymDense(2, []float64{-1, 0, 0, -2})
	_, err = Decompose(negdef, 0)
	require.ErrorIs(t, err, ErrNumericalDegeneracy)

	_, err = Decompose(mat.NewDense(2, 3, nil), 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDecomposeOneDimension(t *testing.T) {
	e, err := Decompose(mat.NewSymDense(1, []float64{0.25}), 0)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.5}, e.D, 1e-15)
	require.InDelta(t, 1, math.Abs(e.B.At(0, 0)), 1e-15)
}
