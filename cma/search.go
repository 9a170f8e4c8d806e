// Package cma implements the Covariance Matrix Adaptation Evolution Strategy
// (CMA-ES) for minimizing continuous objective functions without gradients.
//
// Each generation samples lambda candidates from a multivariate normal
// distribution, ranks them by objective value and moves the distribution's
// mean, covariance matrix and global step size towards the better
// candidates.  The method and its constants follow:
//
//	N. Hansen, "The CMA Evolution Strategy: A Tutorial", arXiv:1604.00772
//
// Stopping is left to the caller, either with a plain loop
//
//	s := cma.New(cma.Rand(shark.NewRand(42)))
//	if err := s.Init(problem, start, 1); err != nil {
//		...
//	}
//	for s.BestSolutionFitness() > 1e-10 {
//		if err := s.Run(); err != nil {
//			...
//		}
//	}
//
// or by handing the search to a shark.Solver.
package cma

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"

	"github.com/aldor007/shark-old"
	"gonum.org/v1/gonum/mat"
)

type Option func(*Search)

// Lambda sets the population size.  Values <= 0 select DefaultLambda.
func Lambda(n int) Option {
	return func(s *Search) {
		s.lambda = n
	}
}

// Mu sets the number of parents.  Values <= 0 select lambda/2.
func Mu(n int) Option {
	return func(s *Search) {
		s.mu = n
	}
}

func Weights(w Weighting) Option {
	return func(s *Search) {
		s.weighting = w
	}
}

// Evaler sets the evaluator used for each generation.  The default is a
// shark.SerialEvaler that continues past failed evaluations.
func Evaler(ev shark.Evaler) Option {
	return func(s *Search) {
		s.ev = ev
	}
}

// Rand sets the random source.  The search owns it from then on.
func Rand(rng shark.RandomSource) Option {
	return func(s *Search) {
		s.rng = rng
	}
}

// DB enables recording of every generation to db.  See TblSamples and
// TblGen.
func DB(db *sql.DB) Option {
	return func(s *Search) {
		s.db = db
	}
}

func Logger(l *slog.Logger) Option {
	return func(s *Search) {
		s.log = l
	}
}

// WithMetrics reports search progress to m.
func WithMetrics(m *Metrics) Option {
	return func(s *Search) {
		s.metrics = m
	}
}

// MaxCondition bounds the condition number of the covariance matrix.  See
// Decompose.
func MaxCondition(c float64) Option {
	return func(s *Search) {
		s.maxCond = c
	}
}

// Search is a CMA-ES optimizer.  A Search is not safe for concurrent use.
type Search struct {
	lambda    int
	mu        int
	weighting Weighting
	maxCond   float64
	ev        shark.Evaler
	rng       shark.RandomSource
	db        *sql.DB
	log       *slog.Logger
	metrics   *Metrics

	problem shark.Problem
	params  *StrategyParameters
	st      *state
	best    shark.Point
	hasBest bool
	nfailed int
	trial   int
}

func New(opts ...Option) *Search {
	s := &Search{
		weighting: Superlinear,
		maxCond:   DefaultMaxCondition,
		ev:        shark.SerialEvaler{ContinueOnErr: true},
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = shark.NewRand(0)
	}
	return s
}

// Seed reseeds the search's random source.
func (s *Search) Seed(seed int64) { s.rng.Seed(seed) }

// Init (re)starts the search on problem from start with initial step size
// sigma.  If start is nil and problem implements shark.StartProposer, the
// proposed starting point is used.  Any previous state, including the best
// solution, is discarded.  The random source is not reseeded.
func (s *Search) Init(problem shark.Problem, start []float64, sigma float64) error {
	if problem == nil {
		return fmt.Errorf("%w: nil problem", ErrInvalidArgument)
	}
	n := problem.Dimension()
	if n < 1 {
		return fmt.Errorf("%w: dimension %v < 1", ErrInvalidArgument, n)
	}
	if start == nil {
		if sp, ok := problem.(shark.StartProposer); ok {
			start = sp.ProposeStartingPoint()
		}
	}
	if len(start) != n {
		return fmt.Errorf("%w: start point has %v variables, problem has %v", ErrInvalidArgument, len(start), n)
	}
	if !(sigma > 0) || math.IsInf(sigma, 1) {
		return fmt.Errorf("%w: initial step size %v must be positive and finite", ErrInvalidArgument, sigma)
	}

	params, err := NewStrategyParameters(n, s.lambda, s.mu, s.weighting)
	if err != nil {
		return err
	}

	if s.problem != nil {
		s.trial++
	}
	s.problem = problem
	s.params = params
	s.st = newState(start, sigma)
	s.best = shark.Point{Val: math.Inf(1)}
	s.hasBest = false
	s.nfailed = 0

	if err := s.initdb(); err != nil {
		return err
	}
	s.log.Debug("cma initialized", "n", n, "lambda", params.Lambda, "mu", params.Mu,
		"mueff", params.MuEff, "sigma", sigma, "eigen_interval", params.EigenInterval)
	return nil
}

// Run executes one generation on the problem given to Init.
func (s *Search) Run() error {
	if s.st == nil {
		return ErrNotInitialized
	}
	_, _, err := s.Iterate(s.problem)
	return err
}

// Iterate executes one generation evaluating candidates with obj and
// returns the best point found so far and the number of evaluations.  It
// implements shark.Iterator.
func (s *Search) Iterate(obj shark.Objectiver) (best shark.Point, n int, err error) {
	if s.st == nil {
		return shark.Point{Val: math.Inf(1)}, 0, ErrNotInitialized
	}
	p := s.params
	st := s.st

	pop := sampler{rng: s.rng}.sample(p.Lambda, st.mean, st.sigma, st.eig.B, st.eig.D)
	n = s.evaluate(obj, pop)
	pop.Sort()

	if pop[0].Val < s.best.Val || !s.hasBest {
		s.best = shark.NewPoint(pop[0].X, pop[0].Val)
		s.hasBest = true
	}

	// the trace records the generation as sampled, before adaptation
	if err := s.updateDb(pop); err != nil {
		return s.best, n, err
	}

	a, err := st.adapt(p, pop, s.maxCond)
	if err != nil {
		s.log.Error("cma adaptation failed", "generation", st.gen, "error", err)
		return s.best, n, err
	}
	if a.refreshed {
		s.log.Debug("cma eigen refresh", "generation", st.gen, "condition", st.eig.Condition(),
			"clamped", st.eig.Clamped)
	}
	s.log.Debug("cma generation", "generation", st.gen, "sigma", st.sigma, "best", s.best.Val,
		"gen_best", pop[0].Val, "ps_norm", a.psNorm, "hsig", a.hsig, "evals", n)
	s.metrics.observe(s, pop, n, a)

	return s.best, n, nil
}

// evaluate fills in the objective value of every individual.  Failures are
// not fatal: the individual gets +Inf and the error is kept on it.
func (s *Search) evaluate(obj shark.Objectiver, pop Population) int {
	results, n, err := s.ev.Eval(obj, pop.Points()...)
	for i, ind := range pop {
		if i >= len(results) {
			ind.Val = math.Inf(1)
			ind.Err = fmt.Errorf("not evaluated: %w", err)
			continue
		}
		ind.Val = results[i].Val
		if math.IsNaN(ind.Val) {
			ind.Val = math.Inf(1)
		}
		if err != nil && math.IsInf(ind.Val, 1) {
			ind.Err = err
		}
	}

	if err != nil {
		failed := pop.Failed()
		s.nfailed += failed
		s.log.Warn("cma candidate evaluation failed", "generation", s.st.gen+1, "failed", failed, "error", err)
	}
	return n
}

// BestSolutionFitness returns the objective value of the best solution seen
// since Init, or +Inf if no generation has run.
func (s *Search) BestSolutionFitness() float64 { return s.best.Val }

// BestSolution returns the best solution seen since Init, or nil if no
// generation has run.
func (s *Search) BestSolution() []float64 {
	if !s.hasBest {
		return nil
	}
	return s.best.Pos()
}

// Best returns the best point seen since Init.  It fails with
// ErrNotInitialized until at least one generation has run.
func (s *Search) Best() (shark.Point, error) {
	if !s.hasBest {
		return shark.Point{Val: math.Inf(1)}, ErrNotInitialized
	}
	return s.best, nil
}

// Mean returns a copy of the current distribution mean, or nil before Init.
func (s *Search) Mean() []float64 {
	if s.st == nil {
		return nil
	}
	return append([]float64(nil), s.st.mean...)
}

// Sigma returns the current global step size, or 0 before Init.
func (s *Search) Sigma() float64 {
	if s.st == nil {
		return 0
	}
	return s.st.sigma
}

// Generation returns the number of generations run since Init.
func (s *Search) Generation() int {
	if s.st == nil {
		return 0
	}
	return s.st.gen
}

// Params returns the strategy parameters derived by Init, or nil before
// Init.
func (s *Search) Params() *StrategyParameters { return s.params }

// State is a snapshot of the adaptive state of a search.
type State struct {
	Mean       []float64
	Sigma      float64
	Covariance *mat.SymDense
	// Eigenvectors holds the eigenbasis B used for sampling as columns.
	Eigenvectors *mat.Dense
	// Eigenvalues of the covariance matrix at the last eigen refresh.
	Eigenvalues []float64
	// D holds the square roots of Eigenvalues.
	D               []float64
	PathC           []float64
	PathSigma       []float64
	Generation      int
	LastEigenUpdate int
	// Failed counts candidates whose evaluation failed since Init.
	Failed int
}

// State returns a deep copy of the current search state.
func (s *Search) State() (State, error) {
	if s.st == nil {
		return State{}, ErrNotInitialized
	}
	st := s.st
	cov := mat.NewSymDense(s.params.N, nil)
	cov.CopySym(st.cov)
	return State{
		Mean:            append([]float64(nil), st.mean...),
		Sigma:           st.sigma,
		Covariance:      cov,
		Eigenvectors:    mat.DenseCopyOf(st.eig.B),
		Eigenvalues:     append([]float64(nil), st.eig.Values...),
		D:               append([]float64(nil), st.eig.D...),
		PathC:           append([]float64(nil), st.pc...),
		PathSigma:       append([]float64(nil), st.ps...),
		Generation:      st.gen,
		LastEigenUpdate: st.lastEig,
		Failed:          s.nfailed,
	}, nil
}
