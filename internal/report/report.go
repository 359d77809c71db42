// Package report renders quadbench results as an aligned table, JSON, or
// YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"go.yaml.in/yaml/v3"

	"github.com/alexshd/quadbench"
	"github.com/alexshd/quadbench/internal/history"
)

// Row is one benchmarked integration compared with its exact value. Exact
// and AbsError are nil when the integral over the bounds is not known.
type Row struct {
	quadbench.BenchmarkResult `yaml:",inline"`

	Function string   `json:"function" yaml:"function"`
	Exact    *float64 `json:"exact,omitempty" yaml:"exact,omitempty"`
	AbsError *float64 `json:"abs_error,omitempty" yaml:"abs_error,omitempty"`
}

// ScalingRow is one measured worker level with its fitted prediction.
type ScalingRow struct {
	Workers    int     `json:"workers" yaml:"workers"`
	Throughput float64 `json:"throughput" yaml:"throughput"`
	Predicted  float64 `json:"predicted" yaml:"predicted"`
	Efficiency float64 `json:"efficiency" yaml:"efficiency"`
	MeanMs     float64 `json:"mean_ms" yaml:"mean_ms"`
	P50Ms      float64 `json:"p50_ms" yaml:"p50_ms"`
	P99Ms      float64 `json:"p99_ms" yaml:"p99_ms"`
	TailRatio  float64 `json:"tail_ratio" yaml:"tail_ratio"`
}

// Recommendation is quadbench.WorkerRecommendation in an encodable form.
// PeakWorkers is omitted when throughput has no peak.
type Recommendation struct {
	Workers      int     `json:"workers" yaml:"workers"`
	PeakWorkers  float64 `json:"peak_workers,omitempty" yaml:"peak_workers,omitempty"`
	Throughput   float64 `json:"throughput" yaml:"throughput"`
	Efficiency   float64 `json:"efficiency" yaml:"efficiency"`
	InRetrograde bool    `json:"in_retrograde" yaml:"in_retrograde"`
	Reason       string  `json:"reason" yaml:"reason"`
}

// Scaling is a full scaling study: measurements, fitted law, and advice.
type Scaling struct {
	Rows           []ScalingRow              `json:"rows" yaml:"rows"`
	Fit            quadbench.USLCoefficients `json:"fit" yaml:"fit"`
	Recommendation Recommendation            `json:"recommendation" yaml:"recommendation"`
}

// NewScaling builds a Scaling report from raw results and their fit.
func NewScaling(results []quadbench.Result, fit quadbench.USLCoefficients, maxWorkers int) Scaling {
	rows := make([]ScalingRow, 0, len(results))
	for _, r := range results {
		stats := quadbench.CalculateStatistics(r)
		rows = append(rows, ScalingRow{
			Workers:    r.Workers,
			Throughput: r.Throughput,
			Predicted:  fit.PredictThroughput(r.Workers),
			Efficiency: fit.Efficiency(r.Workers),
			MeanMs:     ms(stats.Mean.Seconds()),
			P50Ms:      ms(stats.P50.Seconds()),
			P99Ms:      ms(stats.P99.Seconds()),
			TailRatio:  stats.TailRatio,
		})
	}
	rec := fit.RecommendWorkers(maxWorkers)
	peak := rec.PeakWorkers
	if math.IsInf(peak, 0) || math.IsNaN(peak) {
		peak = 0
	}
	return Scaling{
		Rows: rows,
		Fit:  fit,
		Recommendation: Recommendation{
			Workers:      rec.Workers,
			PeakWorkers:  peak,
			Throughput:   rec.Throughput,
			Efficiency:   rec.Efficiency,
			InRetrograde: rec.InRetrograde,
			Reason:       rec.Reason,
		},
	}
}

func ms(seconds float64) float64 { return seconds * 1000 }

// Encode writes v as JSON or YAML. It returns an error for any other format.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Benchmarks writes rows in format.
func Benchmarks(w io.Writer, format string, rows []Row) error {
	if format != "table" {
		return Encode(w, format, rows)
	}
	tw := newTable(w, "FUNCTION", "RULE", "MODE", "N", "VALUE", "ERROR", "TIME (ms)")
	for _, r := range rows {
		tw.row(r.Function, r.Rule.String(), r.Mode.String(), strconv.FormatInt(r.N, 10),
			g(r.Value), ep(r.AbsError), f3(r.ElapsedMs))
	}
	return tw.flush()
}

// ScalingStudy writes s in format.
func ScalingStudy(w io.Writer, format string, s Scaling) error {
	if format != "table" {
		return Encode(w, format, s)
	}
	tw := newTable(w, "WORKERS", "MEASURED/s", "PREDICTED/s", "EFFICIENCY", "MEAN (ms)", "P50 (ms)", "P99 (ms)", "P99/P50")
	for _, r := range s.Rows {
		tw.row(strconv.Itoa(r.Workers), f2(r.Throughput), f2(r.Predicted),
			fmt.Sprintf("%.1f%%", r.Efficiency*100), f3(r.MeanMs), f3(r.P50Ms), f3(r.P99Ms), f2(r.TailRatio))
	}
	if err := tw.flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nλ=%.2f/s α=%.6f β=%.6f R²=%.4f\nRecommended workers: %d (%s)\n",
		s.Fit.Lambda, s.Fit.Alpha, s.Fit.Beta, s.Fit.RSquared,
		s.Recommendation.Workers, s.Recommendation.Reason)
	return err
}

// Frontier writes Pareto points in format.
func Frontier(w io.Writer, format string, points []quadbench.Tradeoff) error {
	if format != "table" {
		return Encode(w, format, points)
	}
	tw := newTable(w, "RULE", "MODE", "N", "TIME (ms)", "ERROR")
	for _, p := range points {
		tw.row(p.Rule.String(), p.Mode.String(), strconv.FormatInt(p.N, 10), f3(p.ElapsedMs), e(p.AbsError))
	}
	return tw.flush()
}

// Runs writes recorded history in format.
func Runs(w io.Writer, format string, runs []history.Run) error {
	if format != "table" {
		return Encode(w, format, runs)
	}
	tw := newTable(w, "RECORDED", "COMMAND", "FUNCTION", "RULE", "MODE", "N", "WORKERS", "ERROR", "TIME (ms)")
	for _, r := range runs {
		tw.row(r.RecordedAt.Local().Format("2006-01-02 15:04:05"), r.Command, r.Function,
			r.Rule.String(), r.Mode.String(), strconv.FormatInt(r.N, 10), strconv.Itoa(r.Workers),
			ep(r.AbsError), f3(r.ElapsedMs))
	}
	return tw.flush()
}

func g(v float64) string { return strconv.FormatFloat(v, 'g', 12, 64) }
func e(v float64) string { return strconv.FormatFloat(v, 'e', 3, 64) }

func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func f3(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cells ...string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(t.tw, "\t")
		}
		fmt.Fprint(t.tw, c)
	}
	fmt.Fprintln(t.tw)
}

func (t *table) flush() error {
	return t.tw.Flush()
}

// ep formats an optional error, "-" when unknown.
func ep(v *float64) string {
	if v == nil {
		return "-"
	}
	return e(*v)
}
