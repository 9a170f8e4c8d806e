package bench_test

import (
	"math"
	"testing"

	"github.com/aldor007/shark-old"
	"github.com/aldor007/shark-old/bench"
	"github.com/aldor007/shark-old/cma"
)

const seed = 7

func TestOptima(t *testing.T) {
	funcs := append([]bench.Func{}, bench.AllFuncs...)
	funcs = append(funcs, bench.NewSchwefelEllipsoidRotated(6, shark.NewRand(seed)))
	for _, fn := range funcs {
		for _, opt := range fn.Optima() {
			if opt.Len() != fn.Dimension() {
				t.Errorf("[%v] optimum has %v dims, want %v", fn.Name(), opt.Len(), fn.Dimension())
				continue
			}
			got := fn.Eval(opt.Pos())
			if diff := math.Abs(got - opt.Val); diff > 1e-3*math.Max(1, math.Abs(opt.Val)) {
				t.Errorf("[%v] f(optimum) = %v, want %v", fn.Name(), got, opt.Val)
			}
		}
	}
}

func TestRandomRotation(t *testing.T) {
	n := 5
	q := bench.RandomRotation(n, shark.NewRand(seed))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dot := 0.0
			for k := 0; k < n; k++ {
				dot += q.At(k, i) * q.At(k, j)
			}
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(dot-want) > 1e-12 {
				t.Errorf("columns %v and %v: dot = %v, want %v", i, j, dot, want)
			}
		}
	}
}

func TestSchwefelRotationPreservesOptimum(t *testing.T) {
	fn := bench.NewSchwefelEllipsoidRotated(4, shark.NewRand(seed))
	if v := fn.Eval(make([]float64, 4)); v != 0 {
		t.Errorf("f(0) = %v, want 0", v)
	}
	if v := fn.Eval([]float64{1, 0, 0, 0}); v <= 0 {
		t.Errorf("f(e1) = %v, want > 0", v)
	}
}

func TestProblem(t *testing.T) {
	p := bench.NewProblem(bench.Sphere{NDim: 3}, shark.NewRand(seed))
	start := p.ProposeStartingPoint()
	low, up := p.Bounds()
	for i, v := range start {
		if v < low[i] || v > up[i] {
			t.Errorf("start[%v] = %v outside [%v, %v]", i, v, low[i], up[i])
		}
	}
	if _, err := p.Objective([]float64{1}); err == nil {
		t.Errorf("expected error for wrong dimension")
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"sphere", "ellipsoid", "schwefel", "rosenbrock", "styblinski"} {
		fn, err := bench.Lookup(name, 3, shark.NewRand(seed))
		if err != nil {
			t.Errorf("%v: %v", name, err)
		} else if fn.Dimension() != 3 {
			t.Errorf("%v: dimension %v", name, fn.Dimension())
		}
	}
	if _, err := bench.Lookup("nope", 3, nil); err == nil {
		t.Errorf("expected unknown function error")
	}
	if _, err := bench.Lookup("ackley", 3, nil); err == nil {
		t.Errorf("expected dimension error for ackley")
	}
}

func TestBenchmarkCMA(t *testing.T) {
	for _, fn := range []bench.Func{bench.Sphere{NDim: 5}, bench.Ellipsoid{NDim: 5}, bench.Rosenbrock{NDim: 2}} {
		rng := shark.NewRand(seed)
		s := cma.New(cma.Rand(rng))
		if err := s.Init(bench.NewProblem(fn, rng), nil, 1); err != nil {
			t.Fatal(err)
		}

		best, niter, neval, err := bench.Benchmark(s, fn, 0, 100000)
		if err != nil {
			t.Errorf("[%v] %v", fn.Name(), err)
			continue
		}
		t.Logf("[%v] %v iters, %v evals: best %v", fn.Name(), niter, neval, best.Val)
		if best.Val > 0.001 {
			t.Errorf("[%v] did not converge: best %v after %v evals", fn.Name(), best.Val, neval)
		}
	}
}
