package quadbench

import (
	"fmt"
	"time"
)

// BenchmarkResult is one timed integration. Each call returns a fresh value.
type BenchmarkResult struct {
	Value     float64 `json:"value" yaml:"value"`
	ElapsedMs float64 `json:"elapsed_ms" yaml:"elapsed_ms"` // Wall-clock milliseconds, fractional
	Mode      Mode    `json:"mode" yaml:"mode"`
	Rule      Rule    `json:"rule" yaml:"rule"`
	N         int64   `json:"n" yaml:"n"`
}

// Integrator dispatches a Rule to its sequential or parallel form.
// It holds no per-call state and is safe for concurrent use when its
// Reducer is.
type Integrator struct {
	reducer Reducer
}

// New returns an Integrator whose parallel path runs through r.
// A nil r selects SerialReducer.
func New(r Reducer) *Integrator {
	return &Integrator{reducer: reducerOrSerial(r)}
}

// Reducer returns the reducer used by the parallel path.
func (in *Integrator) Reducer() Reducer {
	return in.reducer
}

// Integrate approximates ∫ₐᵇ f(x) dx with the sequential form of rule.
func (in *Integrator) Integrate(f Integrand, a, b float64, n int64, rule Rule) (float64, error) {
	switch rule {
	case Rectangle:
		return RectangleRule(f, a, b, n)
	case Trapezoidal:
		return TrapezoidalRule(f, a, b, n)
	case Simpson:
		return SimpsonRule(f, a, b, n)
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidRule, rule)
}

// IntegrateParallel approximates ∫ₐᵇ f(x) dx with the reduction form of
// rule. f is called concurrently and must be safe for that.
func (in *Integrator) IntegrateParallel(f Integrand, a, b float64, n int64, rule Rule) (float64, error) {
	switch rule {
	case Rectangle:
		return RectangleParallel(in.reducer, f, a, b, n)
	case Trapezoidal:
		return TrapezoidalParallel(in.reducer, f, a, b, n)
	case Simpson:
		return SimpsonParallel(in.reducer, f, a, b, n)
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidRule, rule)
}

// Benchmark times Integrate.
func (in *Integrator) Benchmark(f Integrand, a, b float64, n int64, rule Rule) (BenchmarkResult, error) {
	return timed(Sequential, rule, n, func() (float64, error) {
		return in.Integrate(f, a, b, n, rule)
	})
}

// BenchmarkParallel times IntegrateParallel.
func (in *Integrator) BenchmarkParallel(f Integrand, a, b float64, n int64, rule Rule) (BenchmarkResult, error) {
	return timed(Parallel, rule, n, func() (float64, error) {
		return in.IntegrateParallel(f, a, b, n, rule)
	})
}

// timed brackets fn with monotonic clock readings.
func timed(mode Mode, rule Rule, n int64, fn func() (float64, error)) (BenchmarkResult, error) {
	start := time.Now()
	value, err := fn()
	elapsed := time.Since(start)
	if err != nil {
		return BenchmarkResult{}, err
	}

	return BenchmarkResult{
		Value:     value,
		ElapsedMs: float64(elapsed) / float64(time.Millisecond),
		Mode:      mode,
		Rule:      rule,
		N:         n,
	}, nil
}
