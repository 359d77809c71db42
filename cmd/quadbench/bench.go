package main

import (
	"github.com/spf13/cobra"

	"github.com/alexshd/quadbench"
	"github.com/alexshd/quadbench/internal/catalog"
	"github.com/alexshd/quadbench/internal/history"
	"github.com/alexshd/quadbench/internal/report"
)

type benchOptions struct {
	functions  []string
	rules      []string
	sequential bool
	parallel   bool
}

func newBenchCmd(a *app) *cobra.Command {
	o := &benchOptions{sequential: true, parallel: true}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare every rule on every catalog function",
		Long: `Bench integrates each catalog function with each rule, sequentially and in
parallel, and reports value, absolute error against the exact integral, and
elapsed time for every combination.

Simpson is skipped when the interval count is odd.`,
		Example: `  quadbench bench -n 10000
  quadbench bench --function sin,exp --rule simpson --sequential=false -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, a)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&o.functions, "function", "f", nil, "catalog functions (default: all)")
	flags.StringSliceVarP(&o.rules, "rule", "r", nil, "rules (default: all)")
	flags.BoolVar(&o.sequential, "sequential", o.sequential, "include sequential runs")
	flags.BoolVar(&o.parallel, "parallel", o.parallel, "include parallel runs")
	return cmd
}

func (o *benchOptions) entries() ([]catalog.Entry, error) {
	if len(o.functions) == 0 {
		return catalog.All(), nil
	}
	out := make([]catalog.Entry, 0, len(o.functions))
	for _, name := range o.functions {
		e, err := catalog.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func parseRules(names []string) ([]quadbench.Rule, error) {
	if len(names) == 0 {
		return quadbench.Rules(), nil
	}
	out := make([]quadbench.Rule, 0, len(names))
	for _, name := range names {
		r, err := quadbench.ParseRule(name)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (o *benchOptions) run(cmd *cobra.Command, a *app) error {
	entries, err := o.entries()
	if err != nil {
		return err
	}
	rules, err := parseRules(o.rules)
	if err != nil {
		return err
	}

	var modes []quadbench.Mode
	if o.sequential {
		modes = append(modes, quadbench.Sequential)
	}
	if o.parallel {
		modes = append(modes, quadbench.Parallel)
	}
	if len(modes) == 0 {
		return errNoModes
	}

	n := a.cfg.Intervals
	ctx := cmd.Context()
	integ := a.integrator()

	var (
		rows []report.Row
		runs []history.Run
	)
	for _, e := range entries {
		for _, rule := range rules {
			if rule == quadbench.Simpson && n%2 != 0 {
				a.log.Warn("skipping simpson: interval count is odd", "function", e.Name, "n", n)
				continue
			}
			for _, mode := range modes {
				if err := ctx.Err(); err != nil {
					return err
				}

				var br quadbench.BenchmarkResult
				if mode == quadbench.Parallel {
					br, err = integ.BenchmarkParallel(e.F, e.A, e.B, n, rule)
				} else {
					br, err = integ.Benchmark(e.F, e.A, e.B, n, rule)
				}
				if err != nil {
					return err
				}

				row := newRow(e.Name, br, e.Exact)
				a.log.Debug("benchmarked", "function", e.Name, "rule", rule, "mode", mode,
					"elapsed_ms", br.ElapsedMs, "abs_error", *row.AbsError)
				a.observe(row)
				rows = append(rows, row)
				runs = append(runs, runFromRow("bench", row, a.workersFor(mode)))
			}
		}
	}

	a.log.Info("bench complete", "runs", len(rows), "n", n, "workers", a.workersFor(quadbench.Parallel))
	if err := a.record(ctx, runs); err != nil {
		return err
	}
	return report.Benchmarks(cmd.OutOrStdout(), a.cfg.Format, rows)
}
