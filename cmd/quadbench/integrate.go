package main

import (
	"math"

	"github.com/spf13/cobra"

	"github.com/alexshd/quadbench"
	"github.com/alexshd/quadbench/internal/catalog"
	"github.com/alexshd/quadbench/internal/history"
	"github.com/alexshd/quadbench/internal/report"
)

type integrateOptions struct {
	function string
	rule     string
	parallel bool
	a, b     float64
}

func newIntegrateCmd(a *app) *cobra.Command {
	o := &integrateOptions{function: "square", rule: "trapezoidal"}
	cmd := &cobra.Command{
		Use:   "integrate",
		Short: "Integrate one catalog function with one rule",
		Long: `Integrate runs a single timed integration and reports the value, the error
against the exact integral, and the elapsed time.

Bounds default to the catalog entry's interval; --a and --b override them,
in which case the error column compares against the catalog value only when
the bounds are unchanged.`,
		Example: `  quadbench integrate --function sin --rule simpson -n 1000
  quadbench integrate --function exp --rule trap --parallel --workers 8 -n 100000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, a)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.function, "function", "f", o.function, "catalog function: "+joinNames())
	flags.StringVarP(&o.rule, "rule", "r", o.rule, "rule: rectangle, trapezoidal, simpson")
	flags.BoolVarP(&o.parallel, "parallel", "p", o.parallel, "use the parallel reduction")
	flags.Float64Var(&o.a, "a", 0, "lower bound (default: catalog bound)")
	flags.Float64Var(&o.b, "b", 0, "upper bound (default: catalog bound)")
	return cmd
}

func (o *integrateOptions) run(cmd *cobra.Command, a *app) error {
	entry, err := catalog.Lookup(o.function)
	if err != nil {
		return err
	}
	rule, err := quadbench.ParseRule(o.rule)
	if err != nil {
		return err
	}

	lo, hi := entry.A, entry.B
	if cmd.Flags().Changed("a") {
		lo = o.a
	}
	if cmd.Flags().Changed("b") {
		hi = o.b
	}
	exact := math.NaN()
	if lo == entry.A && hi == entry.B {
		exact = entry.Exact
	}

	n := a.cfg.Intervals
	var br quadbench.BenchmarkResult
	if o.parallel {
		br, err = a.integrator().BenchmarkParallel(entry.F, lo, hi, n, rule)
	} else {
		br, err = a.integrator().Benchmark(entry.F, lo, hi, n, rule)
	}
	if err != nil {
		return err
	}

	row := newRow(entry.Name, br, exact)
	a.log.Info("integrated", "function", entry.Name, "rule", rule, "mode", br.Mode,
		"n", n, "value", br.Value, "elapsed_ms", br.ElapsedMs)
	a.observe(row)

	if err := a.record(cmd.Context(), []history.Run{runFromRow("integrate", row, a.workersFor(br.Mode))}); err != nil {
		return err
	}
	return report.Benchmarks(cmd.OutOrStdout(), a.cfg.Format, []report.Row{row})
}
