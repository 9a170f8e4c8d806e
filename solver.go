package shark

import "math"

// Solver repeatedly calls an Iterator until one of its stopping criteria is
// met.  Zero valued limits are ignored.  Typical use:
//
//	solv := &shark.Solver{Iter: it, Obj: obj, MaxIter: 1000}
//	for solv.Next() {
//	}
//	if err := solv.Err(); err != nil {
//		...
//	}
//	best := solv.Best()
type Solver struct {
	Iter Iterator
	Obj  Objectiver
	// MaxIter is the maximum number of iterations.
	MaxIter int
	// MaxEval is the maximum number of objective evaluations.  The limit is
	// checked between iterations, so it may be exceeded by up to one
	// iteration's worth of evaluations.
	MaxEval int
	// MaxNoImprove is the maximum number of successive iterations that do
	// not improve the best point.
	MaxNoImprove int
	// Converged reports whether best is good enough to stop.  Nil means
	// never.
	Converged func(best Point) bool

	best      Point
	started   bool
	niter     int
	neval     int
	noimprove int
	err       error
}

// Next runs a single iteration and reports whether iteration should
// continue.  It returns false without iterating once a stopping criterion
// has been met or an error occurred.
func (s *Solver) Next() bool {
	if !s.started {
		s.started = true
		s.best = Point{Val: math.Inf(1)}
	}
	if s.err != nil || s.limited() {
		return false
	}

	best, n, err := s.Iter.Iterate(s.Obj)
	s.niter++
	s.neval += n
	if err != nil {
		s.err = err
		return false
	}

	if best.Val < s.best.Val {
		s.best = best
		s.noimprove = 0
	} else {
		s.noimprove++
	}

	if s.Converged != nil && s.Converged(s.best) {
		return false
	}
	return !s.limited()
}

func (s *Solver) limited() bool {
	return (s.MaxIter > 0 && s.niter >= s.MaxIter) ||
		(s.MaxEval > 0 && s.neval >= s.MaxEval) ||
		(s.MaxNoImprove > 0 && s.noimprove >= s.MaxNoImprove)
}

// Best returns the best point reported by the iterator so far.
func (s *Solver) Best() Point {
	if !s.started {
		return Point{Val: math.Inf(1)}
	}
	return s.best
}

func (s *Solver) Niter() int { return s.niter }

func (s *Solver) Neval() int { return s.neval }

// Err returns the error that stopped iteration, if any.
func (s *Solver) Err() error { return s.err }
