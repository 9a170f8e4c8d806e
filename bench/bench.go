// Package bench provides benchmark objective functions for testing solvers,
// mostly from http://en.wikipedia.org/wiki/Test_functions_for_optimization.
package bench

import (
	"fmt"
	"math"

	"github.com/aldor007/shark-old"
	"gonum.org/v1/gonum/mat"
)

var (
	cos  = math.Cos
	exp  = math.Exp
	sqrt = math.Sqrt
)

var AllFuncs = []Func{
	Sphere{NDim: 10},
	Ellipsoid{NDim: 10},
	Ackley{},
	Styblinski{NDim: 1},
	Styblinski{NDim: 10},
	Rosenbrock{NDim: 2},
	Rosenbrock{NDim: 10},
}

type Func interface {
	Name() string
	Dimension() int
	Eval(v []float64) float64
	// Bounds returns the box that starting points are proposed from.
	Bounds() (low, up []float64)
	Optima() []shark.Point
}

func box(n int, low, up float64) (l, u []float64) {
	l = make([]float64, n)
	u = make([]float64, n)
	for i := range l {
		l[i] = low
		u[i] = up
	}
	return l, u
}

func fill(n int, v float64) []float64 {
	pos := make([]float64, n)
	for i := range pos {
		pos[i] = v
	}
	return pos
}

type Sphere struct {
	NDim int
}

func (fn Sphere) Name() string { return fmt.Sprintf("Sphere_%vD", fn.NDim) }

func (fn Sphere) Dimension() int { return fn.NDim }

func (fn Sphere) Eval(x []float64) float64 {
	tot := 0.0
	for _, v := range x {
		tot += v * v
	}
	return tot
}

func (fn Sphere) Bounds() (low, up []float64) { return box(fn.NDim, -5, 5) }

func (fn Sphere) Optima() []shark.Point {
	return []shark.Point{shark.NewPoint(make([]float64, fn.NDim), 0)}
}

// Ellipsoid is the axis-parallel ellipsoid sum(1e6^(i/(n-1)) * x_i^2) with
// condition number 1e6.
type Ellipsoid struct {
	NDim int
}

func (fn Ellipsoid) Name() string { return fmt.Sprintf("Ellipsoid_%vD", fn.NDim) }

func (fn Ellipsoid) Dimension() int { return fn.NDim }

func (fn Ellipsoid) Eval(x []float64) float64 {
	tot := 0.0
	for i, v := range x {
		coeff := 1.0
		if fn.NDim > 1 {
			coeff = math.Pow(1e6, float64(i)/float64(fn.NDim-1))
		}
		tot += coeff * v * v
	}
	return tot
}

func (fn Ellipsoid) Bounds() (low, up []float64) { return box(fn.NDim, -5, 5) }

func (fn Ellipsoid) Optima() []shark.Point {
	return []shark.Point{shark.NewPoint(make([]float64, fn.NDim), 0)}
}

// SchwefelEllipsoidRotated is Schwefel's problem 1.2,
// sum_i (sum_{j<=i} y_j)^2, evaluated on y = R*x for a fixed random
// rotation R.
type SchwefelEllipsoidRotated struct {
	NDim int
	rot  *mat.Dense
}

// NewSchwefelEllipsoidRotated draws a random rotation for an n-dimensional
// problem from rng.
func NewSchwefelEllipsoidRotated(n int, rng shark.RandomSource) SchwefelEllipsoidRotated {
	return SchwefelEllipsoidRotated{NDim: n, rot: RandomRotation(n, rng)}
}

func (fn SchwefelEllipsoidRotated) Name() string {
	return fmt.Sprintf("SchwefelEllipsoidRotated_%vD", fn.NDim)
}

func (fn SchwefelEllipsoidRotated) Dimension() int { return fn.NDim }

func (fn SchwefelEllipsoidRotated) Eval(x []float64) float64 {
	y := mat.NewVecDense(fn.NDim, nil)
	y.MulVec(fn.rot, mat.NewVecDense(fn.NDim, x))

	tot, partial := 0.0, 0.0
	for i := 0; i < fn.NDim; i++ {
		partial += y.AtVec(i)
		tot += partial * partial
	}
	return tot
}

func (fn SchwefelEllipsoidRotated) Bounds() (low, up []float64) { return box(fn.NDim, -1, 1) }

func (fn SchwefelEllipsoidRotated) Optima() []shark.Point {
	return []shark.Point{shark.NewPoint(make([]float64, fn.NDim), 0)}
}

// RandomRotation returns an n by n orthogonal matrix computed from the QR
// factorization of a matrix of standard normal draws.
func RandomRotation(n int, rng shark.RandomSource) *mat.Dense {
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, rng.NormFloat64())
		}
	}
	var qr mat.QR
	qr.Factorize(a)
	q := &mat.Dense{}
	qr.QTo(q)
	return q
}

type Ackley struct{}

func (fn Ackley) Name() string { return "Ackley" }

func (fn Ackley) Dimension() int { return 2 }

func (fn Ackley) Eval(v []float64) float64 {
	x := v[0]
	y := v[1]
	return -20*exp(-0.2*sqrt(0.5*(x*x+y*y))) -
		exp(0.5*(cos(2*math.Pi*x)+cos(2*math.Pi*y))) +
		20 + math.E
}

func (fn Ackley) Bounds() (low, up []float64) {
	return []float64{-5, -5}, []float64{5, 5}
}

func (fn Ackley) Optima() []shark.Point {
	return []shark.Point{
		shark.NewPoint([]float64{0, 0}, 0),
	}
}

type Styblinski struct {
	NDim int
}

func (fn Styblinski) Name() string { return fmt.Sprintf("Styblinski_%vD", fn.NDim) }

func (fn Styblinski) Dimension() int { return fn.NDim }

func (fn Styblinski) Eval(x []float64) float64 {
	tot := 0.0
	for _, v := range x {
		tot += math.Pow(v, 4) - 16*math.Pow(v, 2) + 5*v
	}
	return tot / 2
}

func (fn Styblinski) Bounds() (low, up []float64) { return box(fn.NDim, -5, 5) }

func (fn Styblinski) Optima() []shark.Point {
	return []shark.Point{
		shark.NewPoint(fill(fn.NDim, -2.903534), -39.16599*float64(fn.NDim)),
	}
}

type Rosenbrock struct {
	NDim int
}

func (fn Rosenbrock) Name() string { return fmt.Sprintf("Rosenbrock_%vD", fn.NDim) }

func (fn Rosenbrock) Dimension() int { return fn.NDim }

func (fn Rosenbrock) Eval(x []float64) float64 {
	tot := 0.0
	for i := 0; i < fn.NDim-1; i++ {
		tot += 100*math.Pow(x[i+1]-x[i]*x[i], 2) + math.Pow(x[i]-1, 2)
	}
	return tot
}

func (fn Rosenbrock) Bounds() (low, up []float64) { return box(fn.NDim, -2, 2) }

func (fn Rosenbrock) Optima() []shark.Point {
	return []shark.Point{
		shark.NewPoint(fill(fn.NDim, 1), 0),
	}
}

// Problem adapts a Func to shark.Problem and shark.StartProposer.  Starting
// points are drawn uniformly from the function's bounds.
type Problem struct {
	Func
	Rng shark.RandomSource
}

func NewProblem(fn Func, rng shark.RandomSource) *Problem {
	return &Problem{Func: fn, Rng: rng}
}

func (p *Problem) Objective(v []float64) (float64, error) {
	if len(v) != p.Dimension() {
		return math.Inf(1), fmt.Errorf("%v expects %v variables, got %v", p.Name(), p.Dimension(), len(v))
	}
	return p.Eval(v), nil
}

func (p *Problem) ProposeStartingPoint() []float64 {
	low, up := p.Bounds()
	return shark.RandPoint(p.Rng, low, up)
}

// Lookup returns the function named name with n dimensions.  Rotated
// functions draw their rotation from rng.
func Lookup(name string, n int, rng shark.RandomSource) (Func, error) {
	switch name {
	case "sphere":
		return Sphere{NDim: n}, nil
	case "ellipsoid":
		return Ellipsoid{NDim: n}, nil
	case "schwefel":
		return NewSchwefelEllipsoidRotated(n, rng), nil
	case "rosenbrock":
		return Rosenbrock{NDim: n}, nil
	case "styblinski":
		return Styblinski{NDim: n}, nil
	case "ackley":
		if n != 2 {
			return nil, fmt.Errorf("ackley is 2-dimensional, got %v", n)
		}
		return Ackley{}, nil
	}
	return nil, fmt.Errorf("unknown benchmark function %q", name)
}

// Benchmark runs it on fn until the best value is within tol (relative,
// with an absolute floor of 0.001) of the optimum or maxeval evaluations
// have been used.
func Benchmark(it shark.Iterator, fn Func, tol float64, maxeval int) (best shark.Point, niter, neval int, err error) {
	optimum := fn.Optima()[0].Val
	thresh := tol * math.Abs(optimum)
	if 0.001 > thresh {
		thresh = 0.001
	}

	solv := &shark.Solver{
		Iter:    it,
		Obj:     shark.Func(fn.Eval),
		MaxEval: maxeval,
		Converged: func(best shark.Point) bool {
			return math.Abs(optimum-best.Val) < thresh
		},
	}
	for solv.Next() {
	}
	return solv.Best(), solv.Niter(), solv.Neval(), solv.Err()
}
