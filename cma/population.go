package cma

import (
	"math"

	"github.com/aldor007/shark-old"
	"github.com/petar/GoLLRB/llrb"
)

// Individual is one sampled candidate of a generation.
type Individual struct {
	// Index is the position of the individual in sampling order.
	Index int
	// X is the candidate solution m + sigma*Y.
	X []float64
	// Z is the standard normal draw the candidate was built from.
	Z []float64
	// Y is B*(D.*Z), the step from the mean before scaling by sigma.
	Y []float64
	// Val is the objective value; +Inf if the evaluation failed.
	Val float64
	// Err is the evaluation error, if any.
	Err error
}

// Population holds the individuals of a single generation.
type Population []*Individual

// Points returns the candidate solutions of pop as points in pop order.
func (pop Population) Points() []shark.Point {
	points := make([]shark.Point, len(pop))
	for i, ind := range pop {
		points[i] = shark.NewPoint(ind.X, ind.Val)
	}
	return points
}

type ranked struct {
	*Individual
}

// Less orders by objective value and breaks ties by sampling order.
func (r ranked) Less(than llrb.Item) bool {
	other := than.(ranked)
	if r.Val != other.Val {
		return r.Val < other.Val
	}
	return r.Index < other.Index
}

// Sort orders pop by ascending objective value.  Individuals with equal
// values keep their sampling order.  NaN values are replaced by +Inf so that
// they rank last.
func (pop Population) Sort() {
	tree := llrb.New()
	for _, ind := range pop {
		if math.IsNaN(ind.Val) {
			ind.Val = math.Inf(1)
		}
		tree.InsertNoReplace(ranked{ind})
	}
	for i := range pop {
		pop[i] = tree.DeleteMin().(ranked).Individual
	}
}

// Failed returns the number of individuals whose evaluation failed.
func (pop Population) Failed() int {
	n := 0
	for _, ind := range pop {
		if ind.Err != nil || math.IsInf(ind.Val, 1) {
			n++
		}
	}
	return n
}
