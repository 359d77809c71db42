// Package main is the entry point for the quadbench CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alexshd/quadbench"
	"github.com/alexshd/quadbench/internal/catalog"
	"github.com/alexshd/quadbench/internal/config"
	"github.com/alexshd/quadbench/internal/history"
	"github.com/alexshd/quadbench/internal/metrics"
)

// version is set at build time via ldflags.
var version = "dev"

// app is the per-process state shared by subcommands. It is populated in
// the root PersistentPreRunE and released by close.
type app struct {
	v   *viper.Viper
	cfg config.Config
	log *slog.Logger

	rt      *quadbench.Runtime
	integ   *quadbench.Integrator
	metrics *metrics.Recorder
	store   *history.Store
	batch   string
}

func newRootCmd(a *app) *cobra.Command {
	var cfgFile string
	d := config.Default()

	cmd := &cobra.Command{
		Use:   "quadbench",
		Short: "Benchmark numerical integration rules",
		Long: `quadbench integrates functions with the rectangle, trapezoidal, and Simpson
rules, sequentially or on a worker pool, and measures how fast and how
accurately each one gets there.

Subcommands run a single integration, the full rule comparison, a worker
scaling study, or an accuracy/cost sweep. Runs can be recorded to SQLite and
exported as Prometheus metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, cfgFile)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./quadbench.yaml or ~/.config/quadbench/quadbench.yaml)")
	flags.Int("workers", d.Workers, "worker pool size for parallel rules")
	flags.Int64("grain", d.Grain, "minimum terms per parallel chunk")
	flags.Int64P("intervals", "n", d.Intervals, "number of subintervals")
	flags.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	flags.String("history-path", d.HistoryPath, "SQLite file to record runs in (empty disables)")
	flags.String("metrics-file", d.MetricsFile, "Prometheus textfile to write after the command (empty disables)")
	flags.StringP("format", "o", d.Format, "output format: table, json, yaml")

	cmd.AddCommand(
		newIntegrateCmd(a),
		newBenchCmd(a),
		newScaleCmd(a),
		newParetoCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// setup loads configuration, the logger, and the history store.
func (a *app) setup(cmd *cobra.Command, cfgFile string) error {
	if a.v == nil {
		a.v = viper.New()
	}
	config.SetDefaults(a.v)
	used, err := config.Init(a.v, cfgFile)
	if err != nil {
		return err
	}
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := cfg.Level()
	a.log = newLogger(cmd.ErrOrStderr(), level)
	if used != "" {
		a.log.Debug("using config file", "path", used)
	}

	a.metrics = metrics.New()
	a.batch = history.NewBatch()

	if cfg.HistoryPath != "" {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		a.store = store
	}

	return nil
}

// integrator starts the shared runtime on first use. Commands that never
// integrate leave the worker pool unstarted.
func (a *app) integrator() *quadbench.Integrator {
	if a.integ == nil {
		a.rt = quadbench.NewRuntime(a.cfg.Runtime())
		a.integ = quadbench.New(a.rt)
		a.log.Debug("runtime started", "workers", a.rt.Workers(), "grain", a.cfg.Grain, "batch", a.batch)
	}
	return a.integ
}

// close writes the metrics textfile and releases the runtime and store.
func (a *app) close() error {
	var errs []error
	if a.metrics != nil && a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			errs = append(errs, err)
		} else {
			a.log.Debug("metrics written", "path", a.cfg.MetricsFile)
		}
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	if a.rt != nil {
		errs = append(errs, a.rt.Close())
		a.rt, a.integ = nil, nil
	}
	return errors.Join(errs...)
}

// record stores runs when a history path is configured.
func (a *app) record(ctx context.Context, runs []history.Run) error {
	if a.store == nil || len(runs) == 0 {
		return nil
	}
	for i := range runs {
		runs[i].Batch = a.batch
	}
	if err := a.store.Record(ctx, runs); err != nil {
		return err
	}
	a.log.Debug("runs recorded", "count", len(runs), "batch", a.batch)
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}))
}

// exitCode maps caller mistakes to 2 and everything else to 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, quadbench.ErrInvalidIntervalCount),
		errors.Is(err, quadbench.ErrInvalidBounds),
		errors.Is(err, quadbench.ErrInvalidParity),
		errors.Is(err, quadbench.ErrInvalidRule),
		errors.Is(err, catalog.ErrUnknown):
		return 2
	default:
		return 1
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		if a.log != nil {
			a.log.Error("command failed", "err", err)
		} else {
			fmt.Fprintln(stderr, "Error:", err)
		}
	}
	return exitCode(err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
