package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aldor007/shark-old"
	"github.com/aldor007/shark-old/bench"
	"github.com/aldor007/shark-old/cma"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

// searchFlags are the flags shared by the run and bench commands.
type searchFlags struct {
	config      string
	fn          string
	dim         int
	sigma       float64
	target      float64
	maxIter     int
	lambda      int
	mu          int
	weighting   string
	parallel    int
	seed        int64
	db          string
	metricsAddr string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "YAML file with search settings; flags override it")
	fl.StringVar(&f.fn, "func", "schwefel", "Benchmark function (sphere, ellipsoid, schwefel, rosenbrock, styblinski, ackley)")
	fl.IntVar(&f.dim, "dim", 10, "Number of variables")
	fl.Float64Var(&f.sigma, "sigma", 1, "Initial step size")
	fl.Float64Var(&f.target, "target", 1e-10, "Stop once the best value is at or below target")
	fl.IntVar(&f.maxIter, "max-iter", 10000, "Maximum number of generations per search")
	fl.IntVar(&f.lambda, "lambda", 0, "Population size (0 for the default)")
	fl.IntVar(&f.mu, "mu", 0, "Number of parents (0 for lambda/2)")
	fl.StringVar(&f.weighting, "weighting", "superlinear", "Recombination weights (superlinear, linear, equal)")
	fl.IntVar(&f.parallel, "parallel", 1, "Concurrent objective evaluations (negative for unlimited)")
	fl.Int64Var(&f.seed, "seed", 42, "Random seed")
	fl.StringVar(&f.db, "db", "", "SQLite file to record every generation to")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address, e.g. :9090")
}

// searchConfig merges the config file with the flags set on cmd.
func (f *searchFlags) searchConfig(cmd *cobra.Command) (cma.Config, error) {
	cfg := cma.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = cma.LoadConfig(f.config); err != nil {
			return cfg, err
		}
	}

	fl := cmd.Flags()
	if fl.Changed("lambda") {
		cfg.Lambda = f.lambda
	}
	if fl.Changed("mu") {
		cfg.Mu = f.mu
	}
	if fl.Changed("weighting") {
		w, err := cma.ParseWeighting(f.weighting)
		if err != nil {
			return cfg, err
		}
		cfg.Weighting = w
	}
	if fl.Changed("parallel") {
		cfg.Parallel = f.parallel
	}
	if fl.Changed("seed") || f.config == "" {
		cfg.Seed = f.seed
	}
	return cfg, cfg.Validate()
}

// env holds a configured search and the resources it uses.
type env struct {
	search  *cma.Search
	problem *bench.Problem
	closers []func() error
}

func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	return errors.Join(errs...)
}

func (f *searchFlags) setup(cmd *cobra.Command) (*env, error) {
	cfg, err := f.searchConfig(cmd)
	if err != nil {
		return nil, err
	}

	// the benchmark, its starting points and the search share one stream
	rng := shark.NewRand(cfg.Seed)
	fn, err := bench.Lookup(f.fn, f.dim, rng)
	if err != nil {
		return nil, err
	}

	e := &env{problem: bench.NewProblem(fn, rng)}
	opts := append(cfg.Options(), cma.Rand(rng), cma.Logger(slog.Default()))

	if f.db != "" {
		db, err := sql.Open("sqlite", f.db)
		if err != nil {
			return nil, fmt.Errorf("opening trace db: %w", err)
		}
		db.SetMaxOpenConns(1)
		e.closers = append(e.closers, db.Close)
		opts = append(opts, cma.DB(db))
	}

	if f.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		m, err := cma.NewMetrics(reg)
		if err != nil {
			e.Close()
			return nil, err
		}
		opts = append(opts, cma.WithMetrics(m))

		srv := &http.Server{
			Addr:              f.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", "addr", f.metricsAddr, "error", err)
			}
		}()
		slog.Info("serving metrics", "addr", f.metricsAddr)
		e.closers = append(e.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		})
	}

	e.search = cma.New(opts...)
	return e, nil
}

// minimize restarts the search from a proposed starting point and runs it
// until the target is reached, maxIter generations have run or ctx is
// done.
func (f *searchFlags) minimize(ctx context.Context, e *env) (reached bool, err error) {
	if err := e.search.Init(e.problem, nil, f.sigma); err != nil {
		return false, err
	}
	for e.search.Generation() < f.maxIter {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if err := e.search.Run(); err != nil {
			return false, err
		}
		if e.search.BestSolutionFitness() <= f.target {
			return true, nil
		}
	}
	return false, nil
}
