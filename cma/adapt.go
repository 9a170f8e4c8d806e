package cma

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// state is the adaptive part of a search.
type state struct {
	mean    []float64
	sigma   float64
	cov     *mat.SymDense
	eig     *Eigen
	pc      []float64
	ps      []float64
	gen     int
	lastEig int
}

func newState(start []float64, sigma float64) *state {
	n := len(start)
	b := mat.NewDense(n, n, nil)
	cov := mat.NewSymDense(n, nil)
	vals := make([]float64, n)
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		b.Set(i, i, 1)
		cov.SetSym(i, i, 1)
		vals[i] = 1
		d[i] = 1
	}
	return &state{
		mean:  append([]float64(nil), start...),
		sigma: sigma,
		cov:   cov,
		eig:   &Eigen{B: b, Values: vals, D: d},
		pc:    make([]float64, n),
		ps:    make([]float64, n),
	}
}

// adaptation reports what happened during a state update.
type adaptation struct {
	hsig      bool
	psNorm    float64
	refreshed bool
}

// adapt updates s from the ranked population pop.  pop must be sorted and
// its individuals must have been sampled from s.
func (s *state) adapt(p *StrategyParameters, pop Population, maxCondition float64) (adaptation, error) {
	n := p.N
	var a adaptation

	// weighted means of the mu best steps
	yw := make([]float64, n)
	zw := make([]float64, n)
	for i, w := range p.Weights {
		floats.AddScaled(yw, w, pop[i].Y)
		floats.AddScaled(zw, w, pop[i].Z)
	}

	mean := append([]float64(nil), s.mean...)
	floats.AddScaled(mean, s.sigma, yw)

	// B*zw == C^(-1/2)*yw for the B and D the population was sampled with
	bz := mat.NewVecDense(n, nil)
	bz.MulVec(s.eig.B, mat.NewVecDense(n, zw))
	ps := append([]float64(nil), s.ps...)
	floats.Scale(1-p.Cs, ps)
	floats.AddScaled(ps, math.Sqrt(p.Cs*(2-p.Cs)*p.MuEff), bz.RawVector().Data)
	a.psNorm = floats.Norm(ps, 2)

	// nothing is committed until the new step size is known to be usable
	sigma := s.sigma * math.Exp((p.Cs/p.Damps)*(a.psNorm/p.ChiN-1))
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 {
		return a, fmt.Errorf("%w: step size became %v", ErrNumericalDegeneracy, sigma)
	}
	s.mean = mean
	s.ps = ps

	// stall the rank-one path when the step size path is unusually long
	norm := a.psNorm / math.Sqrt(1-math.Pow(1-p.Cs, 2*float64(s.gen+1)))
	a.hsig = norm < (1.4+2/float64(n+1))*p.ChiN
	hsig := 0.0
	if a.hsig {
		hsig = 1
	}

	floats.Scale(1-p.Cc, s.pc)
	floats.AddScaled(s.pc, hsig*math.Sqrt(p.Cc*(2-p.Cc)*p.MuEff), yw)

	// C = (1-c1-cmu)*C + c1*(pc*pc' + (1-hsig)*cc*(2-cc)*C) + cmu*sum(w_i*y_i*y_i')
	s.cov.ScaleSym(1-p.C1-p.Cmu+p.C1*(1-hsig)*p.Cc*(2-p.Cc), s.cov)
	s.cov.SymRankOne(s.cov, p.C1, mat.NewVecDense(n, s.pc))
	for i, w := range p.Weights {
		s.cov.SymRankOne(s.cov, p.Cmu*w, mat.NewVecDense(n, pop[i].Y))
	}

	s.sigma = sigma
	s.gen++

	if float64(s.gen-s.lastEig) >= p.EigenInterval {
		if err := s.refresh(maxCondition); err != nil {
			return a, err
		}
		a.refreshed = true
	}
	return a, nil
}

// refresh recomputes the eigendecomposition of the covariance matrix.
func (s *state) refresh(maxCondition float64) error {
	e, err := Decompose(s.cov, maxCondition)
	if err != nil {
		return fmt.Errorf("generation %v: %w", s.gen, err)
	}
	if e.Clamped {
		s.cov = e.Reconstruct()
	}
	s.eig = e
	s.lastEig = s.gen
	return nil
}
