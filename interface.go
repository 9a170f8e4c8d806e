// Package shark holds the solver-agnostic pieces shared by the optimizers in
// this module: points, objective functions, evaluators, random sources and
// the caller-side Solver loop.  Individual algorithms live in subpackages
// (see package cma).
package shark

type Objectiver interface {
	// Objective evaluates the variables in v and returns the objective
	// function value.  The objective function must be framed so that lower
	// values are better. If the evaluation fails, positive infinity should be
	// returned along with an error.
	Objective(v []float64) (float64, error)
}

// Problem is an Objectiver with a fixed number of variables.
type Problem interface {
	Objectiver
	// Dimension returns the number of variables accepted by Objective.
	Dimension() int
}

// StartProposer is implemented by problems that know a reasonable place to
// start searching from.
type StartProposer interface {
	ProposeStartingPoint() []float64
}

type Evaler interface {
	// Eval evaluates each point using obj and returns the values and number
	// of function evaluations n.  Results are returned in the same order as
	// points.  Unevaluated points should not be returned in the results
	// slice.
	Eval(obj Objectiver, points ...Point) (results []Point, n int, err error)
}

type Iterator interface {
	// Iterate runs a single iteration of a solver and reports the number of
	// function evaluations n and the best point.
	Iterate(obj Objectiver) (best Point, n int, err error)
}
