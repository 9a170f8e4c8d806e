package cma

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultLambda(t *testing.T) {
	tests := map[int]int{1: 4, 2: 6, 3: 7, 10: 10, 100: 17}
	for n, want := range tests {
		if got := DefaultLambda(n); got != want {
			t.Errorf("DefaultLambda(%v): want %v, got %v", n, want, got)
		}
	}
}

func TestWeightsInvariant(t *testing.T) {
	for _, wt := range []Weighting{Superlinear, Linear, Equal} {
		for n := 1; n <= 40; n += 3 {
			for lambda := 2; lambda <= 60; lambda++ {
				// mu == 0 selects lambda/2
				for mu := 0; mu <= lambda; mu++ {
					checkParams(t, n, lambda, mu, wt)
				}
			}
		}
	}
}

func checkParams(t *testing.T, n, lambda, mu int, wt Weighting) {
	t.Helper()
	eps := 1e-12
	p, err := NewStrategyParameters(n, lambda, mu, wt)
	require.NoError(t, err, "n=%v lambda=%v mu=%v %v", n, lambda, mu, wt)
	if mu == 0 {
		mu = lambda / 2
	}
	require.Equal(t, mu, p.Mu)
	require.Len(t, p.Weights, p.Mu)

	sum := 0.0
	for i, w := range p.Weights {
		sum += w
		if w <= 0 {
			t.Fatalf("%v n=%v lambda=%v mu=%v: weight %v is %v", wt, n, lambda, mu, i, w)
		}
		if i > 0 && w > p.Weights[i-1] {
			t.Fatalf("%v n=%v lambda=%v mu=%v: weights increase at %v: %v", wt, n, lambda, mu, i, p.Weights)
		}
	}
	if math.Abs(sum-1) > eps {
		t.Fatalf("%v n=%v lambda=%v mu=%v: weights sum to %v", wt, n, lambda, mu, sum)
	}
	if p.MuEff < 1 || p.MuEff > float64(p.Mu)+eps {
		t.Fatalf("%v n=%v lambda=%v mu=%v: mueff %v outside [1, mu]", wt, n, lambda, mu, p.MuEff)
	}
	if p.C1+p.Cmu > 1+eps || p.Cmu < 0 {
		t.Fatalf("%v n=%v lambda=%v mu=%v: c1=%v cmu=%v", wt, n, lambda, mu, p.C1, p.Cmu)
	}
	for _, rate := range []float64{p.Cc, p.Cs, p.C1} {
		if rate <= 0 || rate >= 1 {
			t.Fatalf("%v n=%v lambda=%v mu=%v: learning rate %v outside (0, 1)", wt, n, lambda, mu, rate)
		}
	}
}

func TestStrategyParametersKnownValues(t *testing.T) {
	p, err := NewStrategyParameters(10, 0, 0, Superlinear)
	require.NoError(t, err)
	require.Equal(t, 10, p.Lambda)
	require.Equal(t, 5, p.Mu)
	require.InDelta(t, 3.1672, p.MuEff, 1e-4)
	require.InDelta(t, math.Sqrt(10)*(1-1/40.0+1/2100.0), p.ChiN, 1e-12)
	require.InDelta(t, 10/(10*(p.C1+p.Cmu)), p.EigenInterval, 1e-12)

	equal, err := NewStrategyParameters(4, 8, 4, Equal)
	require.NoError(t, err)
	require.InDelta(t, 4, equal.MuEff, 1e-12)
}

func TestSuperlinearWeightsAllParents(t *testing.T) {
	for _, lm := range [][2]int{{10, 6}, {10, 10}, {7, 4}, {9, 5}, {4, 4}} {
		p, err := NewStrategyParameters(10, lm[0], lm[1], Superlinear)
		require.NoError(t, err, "lambda=%v mu=%v", lm[0], lm[1])
		require.Len(t, p.Weights, lm[1])
		require.Greater(t, p.Weights[lm[1]-1], 0.0)
	}

	// ln(mu+1/2) - ln(i) for mu=2 is proportional to ln(2.5), ln(1.25)
	p, err := NewStrategyParameters(3, 5, 2, Superlinear)
	require.NoError(t, err)
	tot := math.Log(2.5) + math.Log(1.25)
	require.InDeltaSlice(t, []float64{math.Log(2.5) / tot, math.Log(1.25) / tot}, p.Weights, 1e-12)
}

func TestStrategyParametersMinimumPopulation(t *testing.T) {
	p, err := NewStrategyParameters(3, 2, 0, Superlinear)
	require.NoError(t, err)
	require.Equal(t, 1, p.Mu)
	require.Equal(t, []float64{1}, p.Weights)
	require.InDelta(t, 0, p.Cmu, 1e-12)
}

func TestStrategyParametersInvalid(t *testing.T) {
	tests := []struct {
		n, lambda, mu int
		wt            Weighting
	}{
		{n: 0},
		{n: -3},
		{n: 2, lambda: 1},
		{n: 2, lambda: 4, mu: 5},
		{n: 2, lambda: 4, wt: Weighting(17)},
	}
	for _, test := range tests {
		_, err := NewStrategyParameters(test.n, test.lambda, test.mu, test.wt)
		require.ErrorIs(t, err, ErrInvalidArgument, "%+v", test)
	}
}

func TestParseWeighting(t *testing.T) {
	for _, wt := range []Weighting{Superlinear, Linear, Equal} {
		got, err := ParseWeighting(wt.String())
		require.NoError(t, err)
		require.Equal(t, wt, got)
	}
	got, err := ParseWeighting("LINEAR")
	require.NoError(t, err)
	require.Equal(t, Linear, got)

	_, err = ParseWeighting("cubic")
	require.ErrorIs(t, err, ErrInvalidArgument)
}
