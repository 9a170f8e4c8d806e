package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"
)

var (
	benchFlags  searchFlags
	benchTrials int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure generations needed to reach a target",
	Long: `Restarts the search for a number of trials on the same benchmark
function and reports the median number of generations needed to reach the
target value.  Trials share a single random stream, so results depend only
on the seed.`,
	RunE: runBench,
}

func init() {
	benchFlags.register(benchCmd)
	benchCmd.Flags().IntVar(&benchTrials, "trials", 30, "Number of trials")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) (err error) {
	if benchTrials < 1 {
		return fmt.Errorf("need at least one trial, got %v", benchTrials)
	}
	e, err := benchFlags.setup(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.Close(); err == nil {
			err = cerr
		}
	}()

	var gens []int
	failed := 0
	for trial := 0; trial < benchTrials; trial++ {
		reached, err := benchFlags.minimize(cmd.Context(), e)
		if err != nil {
			return err
		}
		if !reached {
			failed++
			slog.Warn("trial did not reach target", "trial", trial, "best", e.search.BestSolutionFitness())
			continue
		}
		gens = append(gens, e.search.Generation())
		slog.Debug("trial finished", "trial", trial, "generations", e.search.Generation())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%v: %v of %v trials reached %v\n", e.problem.Name(), len(gens), benchTrials, benchFlags.target)
	if len(gens) == 0 {
		return nil
	}
	sort.Ints(gens)
	fmt.Fprintf(out, "generations: median %v, min %v, max %v\n", gens[len(gens)/2], gens[0], gens[len(gens)-1])
	return nil
}
