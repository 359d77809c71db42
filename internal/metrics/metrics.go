// Package metrics exposes quadbench results as Prometheus metrics and writes
// them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alexshd/quadbench"
)

// Recorder holds one registry per process.
type Recorder struct {
	reg *prometheus.Registry

	integrations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	absError     *prometheus.GaugeVec
	throughput   *prometheus.GaugeVec
	usl          *prometheus.GaugeVec
	peakWorkers  prometheus.Gauge
}

// New creates a Recorder with all quadbench metrics registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,

		integrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quadbench_integrations_total",
			Help: "Integrations run by rule and mode",
		}, []string{"rule", "mode"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quadbench_integration_duration_seconds",
			Help:    "Wall time of one integration",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12), // 10µs to ~42s
		}, []string{"rule", "mode"}),

		absError: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quadbench_abs_error",
			Help: "Absolute error against the exact value for the last run",
		}, []string{"function", "rule", "mode"}),

		throughput: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quadbench_scaling_throughput",
			Help: "Measured integrations per second by worker count",
		}, []string{"workers"}),

		usl: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quadbench_usl_coefficient",
			Help: "Fitted Universal Scalability Law coefficients",
		}, []string{"coefficient"}),

		peakWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "quadbench_usl_peak_workers",
			Help: "Worker count where predicted throughput peaks (+Inf when unbounded)",
		}),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// ObserveBenchmark records one timed integration.
func (r *Recorder) ObserveBenchmark(br quadbench.BenchmarkResult) {
	rule, mode := br.Rule.String(), br.Mode.String()
	r.integrations.WithLabelValues(rule, mode).Inc()
	r.duration.WithLabelValues(rule, mode).Observe(br.ElapsedMs / 1000)
}

// ObserveError records the absolute error of function's last integration.
// Callers skip it when the exact value is unknown.
func (r *Recorder) ObserveError(function string, br quadbench.BenchmarkResult, absErr float64) {
	r.absError.WithLabelValues(function, br.Rule.String(), br.Mode.String()).Set(absErr)
}

// ObserveScaling records a scaling study and its fitted law.
func (r *Recorder) ObserveScaling(results []quadbench.Result, fit quadbench.USLCoefficients) {
	for _, res := range results {
		r.throughput.WithLabelValues(strconv.Itoa(res.Workers)).Set(res.Throughput)
	}
	r.usl.WithLabelValues("lambda").Set(fit.Lambda)
	r.usl.WithLabelValues("alpha").Set(fit.Alpha)
	r.usl.WithLabelValues("beta").Set(fit.Beta)
	r.usl.WithLabelValues("r_squared").Set(fit.RSquared)
	r.peakWorkers.Set(fit.PeakWorkers())
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
