package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/alexshd/quadbench"
	"github.com/alexshd/quadbench/internal/catalog"
	"github.com/alexshd/quadbench/internal/report"
)

type scaleOptions struct {
	function    string
	rule        string
	levels      []int
	repetitions int
	warmup      int
}

func newScaleCmd(a *app) *cobra.Command {
	def := quadbench.DefaultConfig()
	o := &scaleOptions{
		function:    "sin",
		rule:        "trapezoidal",
		levels:      def.Levels,
		repetitions: def.Repetitions,
		warmup:      def.Warmup,
	}
	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Measure parallel throughput across worker counts",
		Long: `Scale repeats one parallel integration at each worker count, fits the
Universal Scalability Law to the measured throughput, and recommends a pool
size. Each level gets its own worker pool.`,
		Example: `  quadbench scale --function exp --rule simpson -n 2000000 --levels 1,2,4,8,16`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, a)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.function, "function", "f", o.function, "catalog function: "+joinNames())
	flags.StringVarP(&o.rule, "rule", "r", o.rule, "rule: rectangle, trapezoidal, simpson")
	flags.IntSliceVar(&o.levels, "levels", o.levels, "worker counts to measure")
	flags.IntVar(&o.repetitions, "repetitions", o.repetitions, "timed integrations per level")
	flags.IntVar(&o.warmup, "warmup", o.warmup, "untimed integrations per level")
	return cmd
}

func (o *scaleOptions) run(cmd *cobra.Command, a *app) error {
	entry, err := catalog.Lookup(o.function)
	if err != nil {
		return err
	}
	rule, err := quadbench.ParseRule(o.rule)
	if err != nil {
		return err
	}

	w := quadbench.Workload{Rule: rule, F: entry.F, A: entry.A, B: entry.B, N: a.cfg.Intervals}
	cfg := quadbench.Config{
		Levels:      o.levels,
		Repetitions: o.repetitions,
		Warmup:      o.warmup,
		Grain:       a.cfg.Grain,
	}

	a.log.Info("scaling study", "function", entry.Name, "rule", rule, "n", w.N,
		"levels", o.levels, "gomaxprocs", runtime.GOMAXPROCS(0))

	results, err := quadbench.Run(cmd.Context(), w, cfg)
	if err != nil {
		return err
	}
	for _, r := range results {
		stats := quadbench.CalculateStatistics(r)
		a.log.Debug("level measured", "workers", r.Workers, "throughput", r.Throughput,
			"p50", stats.P50, "p99", stats.P99)
	}

	fit, err := quadbench.FitUSL(results)
	if err != nil {
		return err
	}
	maxWorkers := 0
	for _, l := range o.levels {
		maxWorkers = max(maxWorkers, l)
	}

	a.metrics.ObserveScaling(results, fit)
	s := report.NewScaling(results, fit, maxWorkers)
	if s.Recommendation.InRetrograde {
		a.log.Warn("retrograde scaling", "peak_workers", fit.PeakWorkers(), "max_workers", maxWorkers)
	}
	return report.ScalingStudy(cmd.OutOrStdout(), a.cfg.Format, s)
}
