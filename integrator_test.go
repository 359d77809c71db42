package quadbench

import (
	"errors"
	"math"
	"testing"
	"time"
)

// TestIntegrator_DispatchMatchesRules verifies Integrate calls the matching
// sequential rule and returns its exact bit pattern.
func TestIntegrator_DispatchMatchesRules(t *testing.T) {
	in := New(nil)

	for rule, fn := range sequentialRules {
		want, err := fn(math.Exp, 0, 2, 128)
		if err != nil {
			t.Fatal(err)
		}
		got, err := in.Integrate(math.Exp, 0, 2, 128, rule)
		if err != nil {
			t.Fatal(err)
		}
		if math.Float64bits(got) != math.Float64bits(want) {
			t.Errorf("%v: dispatch returned %.17g, rule returned %.17g", rule, got, want)
		}
	}
}

// TestIntegrator_ParallelDispatch verifies IntegrateParallel routes through
// the configured reducer.
func TestIntegrator_ParallelDispatch(t *testing.T) {
	calls := 0
	spy := ReducerFunc(func(lo, hi int64, term func(int64) float64) float64 {
		calls++
		return serialSum(lo, hi, term)
	})
	in := New(spy)

	for _, rule := range Rules() {
		if _, err := in.IntegrateParallel(math.Sin, 0, 1, 64, rule); err != nil {
			t.Fatalf("%v: %v", rule, err)
		}
	}
	if calls != 3 {
		t.Errorf("expected 3 reductions, got %d", calls)
	}
	if in.Reducer() == nil {
		t.Error("Reducer() returned nil")
	}
}

// TestIntegrator_InvalidRule verifies unknown tags fail without a fallback
// rule and without evaluating the integrand.
func TestIntegrator_InvalidRule(t *testing.T) {
	in := New(nil)

	for _, rule := range []Rule{0, -1, 4, 99} {
		AssertNoEvaluation(t, ErrInvalidRule, func(f Integrand) error {
			_, err := in.Integrate(f, 0, 1, 10, rule)
			return err
		})
		AssertNoEvaluation(t, ErrInvalidRule, func(f Integrand) error {
			_, err := in.IntegrateParallel(f, 0, 1, 10, rule)
			return err
		})
		AssertNoEvaluation(t, ErrInvalidRule, func(f Integrand) error {
			_, err := in.Benchmark(f, 0, 1, 10, rule)
			return err
		})
		AssertNoEvaluation(t, ErrInvalidRule, func(f Integrand) error {
			_, err := in.BenchmarkParallel(f, 0, 1, 10, rule)
			return err
		})
	}
}

// TestIntegrator_RuleCheckedBeforePreconditions documents the check order.
func TestIntegrator_RuleCheckedBeforePreconditions(t *testing.T) {
	_, err := New(nil).Integrate(square, 1, 0, -1, Rule(42))
	if !errors.Is(err, ErrInvalidRule) {
		t.Errorf("expected ErrInvalidRule, got %v", err)
	}
}

// TestIntegrator_PreconditionsPropagate verifies rule errors pass through
// the facade untouched.
func TestIntegrator_PreconditionsPropagate(t *testing.T) {
	in := New(nil)

	if _, err := in.Integrate(square, 0, 1, 0, Rectangle); !errors.Is(err, ErrInvalidIntervalCount) {
		t.Errorf("expected ErrInvalidIntervalCount, got %v", err)
	}
	if _, err := in.IntegrateParallel(square, 1, 0, 4, Trapezoidal); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}
	if _, err := in.Benchmark(square, 0, 1, 3, Simpson); !errors.Is(err, ErrInvalidParity) {
		t.Errorf("expected ErrInvalidParity, got %v", err)
	}
}

// TestIntegrator_Benchmark verifies the timing record.
func TestIntegrator_Benchmark(t *testing.T) {
	rt := NewRuntime(RuntimeConfig{Workers: 2})
	defer rt.Close()
	in := New(rt)

	slow := func(x float64) float64 {
		time.Sleep(time.Microsecond)
		return x
	}

	seq, err := in.Benchmark(slow, 0, 1, 100, Trapezoidal)
	if err != nil {
		t.Fatal(err)
	}
	if seq.Mode != Sequential {
		t.Errorf("expected sequential mode, got %v", seq.Mode)
	}
	if seq.Rule != Trapezoidal || seq.N != 100 {
		t.Errorf("unexpected rule/n: %v/%d", seq.Rule, seq.N)
	}
	if !within(seq.Value, 0.5, 1e-12) {
		t.Errorf("expected 0.5, got %v", seq.Value)
	}
	// 99 sleeps of at least 1µs each.
	if seq.ElapsedMs < 0.099 {
		t.Errorf("elapsed %.6f ms shorter than the work done", seq.ElapsedMs)
	}

	par, err := in.BenchmarkParallel(slow, 0, 1, 100, Trapezoidal)
	if err != nil {
		t.Fatal(err)
	}
	if par.Mode != Parallel {
		t.Errorf("expected parallel mode, got %v", par.Mode)
	}
	if !within(par.Value, seq.Value, 1e-12) {
		t.Errorf("parallel %v disagrees with sequential %v", par.Value, seq.Value)
	}

	t.Logf("sequential %.4f ms, parallel %.4f ms", seq.ElapsedMs, par.ElapsedMs)
}

// TestIntegrator_BenchmarkFractionalMilliseconds verifies sub-millisecond
// calls are not truncated to zero.
func TestIntegrator_BenchmarkFractionalMilliseconds(t *testing.T) {
	in := New(nil)

	res, err := in.Benchmark(func(x float64) float64 {
		time.Sleep(50 * time.Microsecond)
		return x
	}, 0, 1, 1, Rectangle)
	if err != nil {
		t.Fatal(err)
	}
	if res.ElapsedMs <= 0 || res.ElapsedMs >= 1000 {
		t.Errorf("expected a fractional millisecond count, got %v", res.ElapsedMs)
	}
}

// TestIntegrator_ValueIsStableAcrossBenchmarks verifies timing never leaks
// into the value.
func TestIntegrator_ValueIsStableAcrossBenchmarks(t *testing.T) {
	in := New(nil)
	first, err := in.Benchmark(math.Sin, 0, math.Pi, 1000, Simpson)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		again, _ := in.Benchmark(math.Sin, 0, math.Pi, 1000, Simpson)
		if math.Float64bits(again.Value) != math.Float64bits(first.Value) {
			t.Fatalf("value changed between runs: %.17g vs %.17g", again.Value, first.Value)
		}
	}
}
