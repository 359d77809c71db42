package quadbench

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

// AssertionConfig contains thresholds for numerical and scaling properties.
type AssertionConfig struct {
	// Relative tolerance between sequential and parallel results
	RelTolerance float64

	// Allowed shortfall of the observed convergence order
	OrderSlack float64

	// Contention threshold for scaling studies (α < this value passes)
	MaxContention float64

	// Minimum R² for the scaling model fit
	MinRSquared float64

	// Largest worker count checked for retrograde scaling
	MaxWorkers int
}

// DefaultAssertionConfig returns conservative thresholds.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		RelTolerance:  1e-9,
		OrderSlack:    0.2,
		MaxContention: 0.05,
		MinRSquared:   0.90,
		MaxWorkers:    16,
	}
}

// AssertConvergenceOrder verifies that doubling n shrinks the error of rule
// by roughly 2^order.
//
// For a rule of order p the error behaves like C·h^p, so
//
//	log2(E(n) / E(2n)) ≈ p
//
// exact must be the true value of the integral. If the rule is already exact
// at n there is nothing to measure and the assertion passes.
func AssertConvergenceOrder(t *testing.T, rule Rule, f Integrand, a, b, exact float64, n int64, order float64, cfg AssertionConfig) {
	t.Helper()

	in := New(nil)
	coarse, err := in.Integrate(f, a, b, n, rule)
	if err != nil {
		t.Fatalf("%v at n=%d: %v", rule, n, err)
	}
	fine, err := in.Integrate(f, a, b, 2*n, rule)
	if err != nil {
		t.Fatalf("%v at n=%d: %v", rule, 2*n, err)
	}

	e1 := math.Abs(coarse - exact)
	e2 := math.Abs(fine - exact)
	if e1 == 0 || e2 == 0 {
		t.Logf("✓ %v exact at n=%d (errors %.3e, %.3e)", rule, n, e1, e2)
		return
	}

	observed := math.Log2(e1 / e2)
	if observed < order-cfg.OrderSlack {
		t.Errorf("%v converges too slowly: observed order %.3f (expected %.1f)\n"+
			"  E(%d)=%.3e  E(%d)=%.3e", rule, observed, order, n, e1, 2*n, e2)
	}

	t.Logf("✓ %v order %.3f (expected %.1f)", rule, observed, order)
}

// AssertParallelAgreement verifies that the parallel form of rule matches
// the sequential form within cfg.RelTolerance. Bit equality is not expected:
// the reduction adds in a different order.
func AssertParallelAgreement(t *testing.T, in *Integrator, rule Rule, f Integrand, a, b float64, n int64, cfg AssertionConfig) {
	t.Helper()

	seq, err := in.Integrate(f, a, b, n, rule)
	if err != nil {
		t.Fatalf("sequential %v: %v", rule, err)
	}
	par, err := in.IntegrateParallel(f, a, b, n, rule)
	if err != nil {
		t.Fatalf("parallel %v: %v", rule, err)
	}

	diff := math.Abs(seq - par)
	scale := math.Max(1, math.Abs(seq))
	if diff > cfg.RelTolerance*scale {
		t.Errorf("%v: sequential %.17g and parallel %.17g differ by %.3e (tolerance %.1e)",
			rule, seq, par, diff/scale, cfg.RelTolerance)
	}
}

// AssertNoEvaluation verifies that call fails with want and never invokes
// the integrand it is handed. Use it to check that preconditions run before
// any work is done.
func AssertNoEvaluation(t *testing.T, want error, call func(f Integrand) error) {
	t.Helper()

	var calls atomic.Int64
	counting := func(x float64) float64 {
		calls.Add(1)
		return x
	}

	err := call(counting)
	if !errors.Is(err, want) {
		t.Errorf("expected error %v, got %v", want, err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("integrand evaluated %d times before the precondition failed", n)
	}
}

// AssertZeroContention verifies α (serial fraction of a parallel
// integration) stays below cfg.MaxContention.
func AssertZeroContention(t *testing.T, results []Result, cfg AssertionConfig) {
	t.Helper()

	coeffs, err := FitUSL(results)
	if err != nil {
		t.Fatalf("Failed to fit USL model: %v", err)
	}

	if coeffs.Alpha > cfg.MaxContention {
		t.Errorf("Contention too high: α = %.6f (max: %.6f)\n"+
			"Raise n or the runtime grain so each chunk carries more work.",
			coeffs.Alpha, cfg.MaxContention)
	}

	if coeffs.RSquared < cfg.MinRSquared {
		t.Errorf("Poor model fit: R² = %.4f (min: %.4f)\n"+
			"Timings are too noisy; increase repetitions.",
			coeffs.RSquared, cfg.MinRSquared)
	}

	t.Logf("✓ Contention: α = %.6f (threshold: %.6f), R² = %.4f",
		coeffs.Alpha, cfg.MaxContention, coeffs.RSquared)
}

// AssertNoRetrograde verifies predicted throughput never drops as workers
// are added, up to cfg.MaxWorkers.
func AssertNoRetrograde(t *testing.T, results []Result, cfg AssertionConfig) {
	t.Helper()

	coeffs, err := FitUSL(results)
	if err != nil {
		t.Fatalf("Failed to fit USL model: %v", err)
	}

	for i := 1; i < len(results); i++ {
		if results[i].Workers > cfg.MaxWorkers {
			break
		}
		prev := coeffs.PredictThroughput(results[i-1].Workers)
		curr := coeffs.PredictThroughput(results[i].Workers)
		if curr < prev {
			t.Errorf("Retrograde scaling: workers %d→%d predicts %.2f → %.2f integrations/sec",
				results[i-1].Workers, results[i].Workers, prev, curr)
		}
	}
}

// PrintAnalysis logs the fitted scaling law next to the measurements.
func PrintAnalysis(t *testing.T, results []Result) {
	t.Helper()

	coeffs, err := FitUSL(results)
	if err != nil {
		t.Fatalf("Failed to fit USL model: %v", err)
	}

	t.Logf("λ=%.2f/s α=%.6f β=%.6f R²=%.4f", coeffs.Lambda, coeffs.Alpha, coeffs.Beta, coeffs.RSquared)
	t.Logf("  W    Measured      Predicted     Efficiency")
	for _, r := range results {
		t.Logf("  %-4d %12.2f  %12.2f  %8.1f%%",
			r.Workers, r.Throughput, coeffs.PredictThroughput(r.Workers), coeffs.Efficiency(r.Workers)*100)
	}

	rec := coeffs.RecommendWorkers(results[len(results)-1].Workers)
	t.Logf("Recommended workers: %d (%s)", rec.Workers, rec.Reason)
}
