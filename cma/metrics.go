package cma

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports the progress of one or more searches to prometheus.
type Metrics struct {
	generations    prometheus.Counter
	evaluations    prometheus.Counter
	failures       prometheus.Counter
	eigenRefresh   prometheus.Counter
	sigma          prometheus.Gauge
	best           prometheus.Gauge
	condition      prometheus.Gauge
	stalledRankOne prometheus.Counter
}

// NewMetrics creates the search metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cma_generations_total",
			Help: "Number of completed generations.",
		}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cma_evaluations_total",
			Help: "Number of objective function evaluations.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cma_failed_evaluations_total",
			Help: "Number of candidates whose evaluation failed.",
		}),
		eigenRefresh: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cma_eigen_refreshes_total",
			Help: "Number of covariance eigendecompositions.",
		}),
		stalledRankOne: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cma_stalled_rank_one_total",
			Help: "Number of generations with the rank-one path update stalled.",
		}),
		sigma: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cma_sigma",
			Help: "Current global step size.",
		}),
		best: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cma_best_fitness",
			Help: "Best objective value seen since the last restart.",
		}),
		condition: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cma_covariance_condition",
			Help: "Condition number of the covariance matrix at the last eigen refresh.",
		}),
	}

	collectors := []prometheus.Collector{
		m.generations, m.evaluations, m.failures, m.eigenRefresh,
		m.stalledRankOne, m.sigma, m.best, m.condition,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(s *Search, pop Population, neval int, a adaptation) {
	if m == nil {
		return
	}
	m.generations.Inc()
	m.evaluations.Add(float64(neval))
	m.failures.Add(float64(pop.Failed()))
	if a.refreshed {
		m.eigenRefresh.Inc()
	}
	if !a.hsig {
		m.stalledRankOne.Inc()
	}
	m.sigma.Set(s.st.sigma)
	m.best.Set(s.best.Val)
	m.condition.Set(s.st.eig.Condition())
}
