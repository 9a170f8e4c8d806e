package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

var runFlags searchFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single search",
	Long:  `Runs one search on a benchmark function and prints the best solution found.`,
	RunE:  runSearch,
}

func init() {
	runFlags.register(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runSearch(cmd *cobra.Command, args []string) (err error) {
	e, err := runFlags.setup(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.Close(); err == nil {
			err = cerr
		}
	}()

	slog.Info("starting search", "func", e.problem.Name(), "dim", e.problem.Dimension(), "sigma", runFlags.sigma)
	start := time.Now()
	reached, err := runFlags.minimize(cmd.Context(), e)
	if err != nil {
		return err
	}

	s := e.search
	slog.Info("search finished",
		"elapsed", time.Since(start),
		"generations", s.Generation(),
		"reached_target", reached,
		"best", s.BestSolutionFitness(),
		"sigma", s.Sigma(),
	)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "generations: %v\n", s.Generation())
	fmt.Fprintf(out, "evaluations: %v\n", s.Generation()*s.Params().Lambda)
	fmt.Fprintf(out, "best: %v\n", s.BestSolutionFitness())
	fmt.Fprintf(out, "solution: %v\n", s.BestSolution())
	if !reached {
		fmt.Fprintf(out, "target %v not reached\n", runFlags.target)
	}
	return nil
}
