package main

import (
	"github.com/spf13/cobra"

	"github.com/alexshd/quadbench"
	"github.com/alexshd/quadbench/internal/catalog"
	"github.com/alexshd/quadbench/internal/report"
)

type paretoOptions struct {
	function string
	rules    []string
	counts   []int64
	parallel bool
	all      bool
}

func newParetoCmd(a *app) *cobra.Command {
	o := &paretoOptions{
		function: "exp",
		counts:   []int64{10, 100, 1000, 10000, 100000},
	}
	cmd := &cobra.Command{
		Use:   "pareto",
		Short: "Find the cheapest rule for each accuracy level",
		Long: `Pareto sweeps rules and interval counts for one catalog function and prints
the points no other point beats on both elapsed time and absolute error.`,
		Example: `  quadbench pareto --function sin --counts 8,64,512,4096
  quadbench pareto --all -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, a)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.function, "function", "f", o.function, "catalog function: "+joinNames())
	flags.StringSliceVarP(&o.rules, "rule", "r", nil, "rules (default: all)")
	flags.Int64SliceVar(&o.counts, "counts", o.counts, "interval counts to sweep")
	flags.BoolVarP(&o.parallel, "parallel", "p", o.parallel, "also sweep the parallel reduction")
	flags.BoolVar(&o.all, "all", o.all, "print every point, not just the frontier")
	return cmd
}

func (o *paretoOptions) run(cmd *cobra.Command, a *app) error {
	entry, err := catalog.Lookup(o.function)
	if err != nil {
		return err
	}
	rules, err := parseRules(o.rules)
	if err != nil {
		return err
	}

	spec := quadbench.SweepSpec{
		F:         entry.F,
		A:         entry.A,
		B:         entry.B,
		Reference: entry.Exact,
		Rules:     rules,
		Counts:    o.counts,
	}
	if o.parallel {
		spec.Modes = []quadbench.Mode{quadbench.Sequential, quadbench.Parallel}
	}

	points, err := quadbench.Sweep(cmd.Context(), a.integrator(), spec)
	if err != nil {
		return err
	}
	for _, p := range points {
		br := quadbench.BenchmarkResult{Value: p.Value, ElapsedMs: p.ElapsedMs, Mode: p.Mode, Rule: p.Rule, N: p.N}
		a.metrics.ObserveBenchmark(br)
		a.metrics.ObserveError(entry.Name, br, p.AbsError)
	}

	out := points
	if !o.all {
		out = quadbench.ParetoFront(points)
	}
	a.log.Info("sweep complete", "function", entry.Name, "points", len(points), "frontier", len(out))
	return report.Frontier(cmd.OutOrStdout(), a.cfg.Format, out)
}
