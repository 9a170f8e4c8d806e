package cma

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// Weighting selects how recombination weights decrease with rank.
type Weighting int

const (
	// Superlinear weights are proportional to ln(mu+1/2) - ln(i).
	Superlinear Weighting = iota
	// Linear weights are proportional to mu+1-i.
	Linear
	// Equal gives every parent the same weight.
	Equal
)

var weightingNames = map[Weighting]string{
	Superlinear: "superlinear",
	Linear:      "linear",
	Equal:       "equal",
}

func (w Weighting) String() string {
	if s, ok := weightingNames[w]; ok {
		return s
	}
	return fmt.Sprintf("Weighting(%d)", int(w))
}

// ParseWeighting converts a weighting name (as returned by String) back to a
// Weighting.
func ParseWeighting(s string) (Weighting, error) {
	for w, name := range weightingNames {
		if strings.EqualFold(s, name) {
			return w, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weighting %q", ErrInvalidArgument, s)
}

func (w Weighting) MarshalYAML() (interface{}, error) { return w.String(), nil }

func (w *Weighting) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseWeighting(value.Value)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// StrategyParameters are the constants of a search.  They depend only on
// the problem dimension, the population size and the weighting scheme and
// do not change once derived.
type StrategyParameters struct {
	N         int
	Lambda    int
	Mu        int
	Weighting Weighting
	// Weights holds Mu positive, non-increasing recombination weights that
	// sum to one.
	Weights []float64
	// MuEff is the variance effective selection mass 1/sum(w_i^2).
	MuEff float64
	// Cc is the learning rate of the covariance evolution path.
	Cc float64
	// Cs is the learning rate of the step size evolution path.
	Cs float64
	// C1 is the learning rate of the rank-one covariance update.
	C1 float64
	// Cmu is the learning rate of the rank-mu covariance update.
	Cmu float64
	// Damps damps the step size update.
	Damps float64
	// ChiN is the expected length of an n-dimensional standard normal
	// vector.
	ChiN float64
	// EigenInterval is the number of generations between
	// eigendecompositions of the covariance matrix.
	EigenInterval float64
}

// DefaultLambda returns the default population size 4 + floor(3 ln n).
func DefaultLambda(n int) int {
	return 4 + int(math.Floor(3*math.Log(float64(n))))
}

// NewStrategyParameters derives the strategy parameters for an
// n-dimensional problem.  If lambda <= 0, DefaultLambda(n) is used.  If mu
// <= 0, mu = lambda/2.
func NewStrategyParameters(n, lambda, mu int, wt Weighting) (*StrategyParameters, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: dimension %v < 1", ErrInvalidArgument, n)
	}
	if lambda <= 0 {
		lambda = DefaultLambda(n)
	}
	if lambda < 2 {
		return nil, fmt.Errorf("%w: population size %v < 2", ErrInvalidArgument, lambda)
	}
	if mu <= 0 {
		mu = lambda / 2
	}
	if mu > lambda {
		return nil, fmt.Errorf("%w: parent number %v > population size %v", ErrInvalidArgument, mu, lambda)
	}

	w, err := recombinationWeights(mu, wt)
	if err != nil {
		return nil, err
	}

	nf := float64(n)
	mueff := 1 / floats.Dot(w, w)

	p := &StrategyParameters{
		N:         n,
		Lambda:    lambda,
		Mu:        mu,
		Weighting: wt,
		Weights:   w,
		MuEff:     mueff,
		Cc:        (4 + mueff/nf) / (nf + 4 + 2*mueff/nf),
		Cs:        (mueff + 2) / (nf + mueff + 5),
		C1:        2 / ((nf+1.3)*(nf+1.3) + mueff),
		ChiN:      math.Sqrt(nf) * (1 - 1/(4*nf) + 1/(21*nf*nf)),
	}
	p.Cmu = math.Min(1-p.C1, 2*(mueff-2+1/mueff)/((nf+2)*(nf+2)+mueff))
	p.Damps = 1 + 2*math.Max(0, math.Sqrt((mueff-1)/(nf+1))-1) + p.Cs
	p.EigenInterval = nf / (10 * (p.C1 + p.Cmu))
	return p, nil
}

func recombinationWeights(mu int, wt Weighting) ([]float64, error) {
	w := make([]float64, mu)
	for i := range w {
		rank := float64(i + 1)
		switch wt {
		case Superlinear:
			w[i] = math.Log(float64(mu)+0.5) - math.Log(rank)
		case Linear:
			w[i] = float64(mu) + 1 - rank
		case Equal:
			w[i] = 1
		default:
			return nil, fmt.Errorf("%w: unknown weighting %v", ErrInvalidArgument, wt)
		}
	}

	floats.Scale(1/floats.Sum(w), w)
	return w, nil
}
