package shark

import (
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
)

type Point struct {
	pos []float64
	Val float64
}

func NewPoint(pos []float64, val float64) Point {
	cpos := make([]float64, len(pos))
	copy(cpos, pos)
	return Point{pos: cpos, Val: val}
}

func (p Point) At(i int) float64 { return p.pos[i] }

func (p Point) Len() int { return len(p.pos) }

func (p Point) Pos() []float64 {
	pos := make([]float64, len(p.pos))
	copy(pos, p.pos)
	return pos
}

func (p Point) String() string { return fmt.Sprintf("%v -> %v", p.pos, p.Val) }

func hashPoint(p Point) [sha1.Size]byte {
	data := make([]byte, p.Len()*8)
	for i := 0; i < p.Len(); i++ {
		binary.BigEndian.PutUint64(data[i*8:], math.Float64bits(p.At(i)))
	}
	return sha1.Sum(data)
}

// CacheEvaler wraps another Evaler and remembers the objective value of
// every point it has seen.  Points with a cached value are not passed on to
// the wrapped Evaler.  Failed evaluations are not cached.
type CacheEvaler struct {
	ev    Evaler
	cache map[[sha1.Size]byte]float64
}

func NewCacheEvaler(ev Evaler) *CacheEvaler {
	return &CacheEvaler{
		ev:    ev,
		cache: map[[sha1.Size]byte]float64{},
	}
}

func (ev *CacheEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	results = make([]Point, len(points))
	copy(results, points)

	fromnew := make([]int, 0, len(points))
	newp := make([]Point, 0, len(points))
	for i, p := range points {
		if val, ok := ev.cache[hashPoint(p)]; ok {
			results[i].Val = val
		} else {
			fromnew = append(fromnew, i)
			newp = append(newp, p)
		}
	}
	if len(newp) == 0 {
		return results, 0, nil
	}

	newresults, n, err := ev.ev.Eval(obj, newp...)
	for i, p := range newresults {
		if !math.IsInf(p.Val, 1) {
			ev.cache[hashPoint(p)] = p.Val
		}
		results[fromnew[i]].Val = p.Val
	}

	// shrink if error resulted in fewer new results being returned
	if len(newresults) < len(newp) {
		results = results[:fromnew[len(newresults)]]
	}
	return results, n, err
}

// Len returns the number of cached values.
func (ev *CacheEvaler) Len() int { return len(ev.cache) }

// SerialEvaler evaluates points one at a time in order.  If ContinueOnErr is
// false, evaluation stops at the first failure and the results up to and
// including the failed point are returned.  Otherwise all points are
// evaluated and the individual failures are joined into the returned error.
type SerialEvaler struct {
	ContinueOnErr bool
}

func (ev SerialEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	results = make([]Point, 0, len(points))
	var errs []error
	for _, p := range points {
		val, perr := obj.Objective(p.Pos())
		p.Val = val
		results = append(results, p)
		if perr != nil {
			if !ev.ContinueOnErr {
				return results, len(results), perr
			}
			errs = append(errs, perr)
		}
	}
	return results, len(results), errors.Join(errs...)
}

// ParallelEvaler evaluates points concurrently using up to Limit goroutines
// (unbounded if Limit <= 0).  All points are always evaluated and results
// keep the order of the input points.  obj must be safe for concurrent use.
type ParallelEvaler struct {
	Limit int
}

func (ev ParallelEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	results = make([]Point, len(points))
	errs := make([]error, len(points))

	var g errgroup.Group
	if ev.Limit > 0 {
		g.SetLimit(ev.Limit)
	}
	for i := range points {
		i := i
		g.Go(func() error {
			p := points[i]
			p.Val, errs[i] = obj.Objective(p.Pos())
			results[i] = p
			return nil
		})
	}
	g.Wait()

	return results, len(results), errors.Join(errs...)
}

// Func is a plain objective function that cannot fail.
type Func func([]float64) float64

func (fn Func) Objective(v []float64) (float64, error) { return fn(v), nil }

// FixedDim turns a Func into a Problem with N variables.
type FixedDim struct {
	N  int
	Fn Func
}

func (p FixedDim) Dimension() int { return p.N }

func (p FixedDim) Objective(v []float64) (float64, error) {
	if len(v) != p.N {
		return math.Inf(1), fmt.Errorf("objective expects %v variables, got %v", p.N, len(v))
	}
	return p.Fn(v), nil
}

// ObjectiveLogger wraps an Objectiver and logs every evaluation at debug
// level.
type ObjectiveLogger struct {
	Objectiver
	Logger *slog.Logger
	Count  int
}

func NewObjectiveLogger(obj Objectiver, l *slog.Logger) *ObjectiveLogger {
	if l == nil {
		l = slog.Default()
	}
	return &ObjectiveLogger{Objectiver: obj, Logger: l}
}

func (ol *ObjectiveLogger) Objective(v []float64) (float64, error) {
	val, err := ol.Objectiver.Objective(v)

	ol.Count++
	if err != nil {
		ol.Logger.Warn("objective evaluation failed", "eval", ol.Count, "x", v, "error", err)
	} else {
		ol.Logger.Debug("objective evaluated", "eval", ol.Count, "x", v, "val", val)
	}
	return val, err
}
