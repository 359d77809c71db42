package main

import (
	"errors"
	"math"
	"strings"

	"github.com/alexshd/quadbench"
	"github.com/alexshd/quadbench/internal/catalog"
	"github.com/alexshd/quadbench/internal/history"
	"github.com/alexshd/quadbench/internal/report"
)

func joinNames() string {
	return strings.Join(catalog.Names(), ", ")
}

// newRow pairs a result with its exact value. A NaN exact value means the
// integral is unknown and the row carries no error.
func newRow(function string, br quadbench.BenchmarkResult, exact float64) report.Row {
	row := report.Row{Function: function, BenchmarkResult: br}
	if !math.IsNaN(exact) {
		absErr := math.Abs(br.Value - exact)
		row.Exact, row.AbsError = &exact, &absErr
	}
	return row
}

// observe feeds one row to the metrics recorder.
func (a *app) observe(row report.Row) {
	a.metrics.ObserveBenchmark(row.BenchmarkResult)
	if row.AbsError != nil {
		a.metrics.ObserveError(row.Function, row.BenchmarkResult, *row.AbsError)
	}
}

func runFromRow(command string, row report.Row, workers int) history.Run {
	return history.Run{
		Command:   command,
		Function:  row.Function,
		Rule:      row.Rule,
		Mode:      row.Mode,
		N:         row.N,
		Workers:   workers,
		Value:     row.Value,
		AbsError:  row.AbsError,
		ElapsedMs: row.ElapsedMs,
	}
}

// workersFor reports the pool size that produced a result in mode.
func (a *app) workersFor(mode quadbench.Mode) int {
	if mode == quadbench.Parallel && a.rt != nil {
		return a.rt.Workers()
	}
	return 1
}

var errNoModes = errors.New("nothing to run: both --sequential and --parallel are disabled")
