package quadbench

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/integrate"
)

type ruleFunc func(f Integrand, a, b float64, n int64) (float64, error)

var sequentialRules = map[Rule]ruleFunc{
	Rectangle:   RectangleRule,
	Trapezoidal: TrapezoidalRule,
	Simpson:     SimpsonRule,
}

func square(x float64) float64 { return x * x }

func cubic(x float64) float64 { return x*x*x - 2*x + 1 }

func within(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

// TestRules_ConstantIsExact verifies every rule integrates f(x)=c to c·(b-a).
func TestRules_ConstantIsExact(t *testing.T) {
	constant := func(float64) float64 { return 3 }

	for rule, fn := range sequentialRules {
		for _, n := range []int64{2, 8, 14, 1000} {
			got, err := fn(constant, 0, 5, n)
			if err != nil {
				t.Fatalf("%v n=%d: %v", rule, n, err)
			}
			if !within(got, 15, 1e-12) {
				t.Errorf("%v n=%d: expected 15, got %.17g", rule, n, got)
			}
		}
	}

	// Rectangle and trapezoidal take odd n as well.
	for _, fn := range []ruleFunc{RectangleRule, TrapezoidalRule} {
		got, err := fn(constant, -2, 1, 7)
		if err != nil {
			t.Fatal(err)
		}
		if !within(got, 9, 1e-12) {
			t.Errorf("odd n: expected 9, got %.17g", got)
		}
	}
}

// TestRules_SquareAccuracy checks the error order of each rule on x² over [0,1].
func TestRules_SquareAccuracy(t *testing.T) {
	exact := 1.0 / 3.0

	rect, err := RectangleRule(square, 0, 1, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if !within(rect, exact, 1e-4) {
		t.Errorf("rectangle: error %.3e exceeds 1e-4", math.Abs(rect-exact))
	}
	// Left endpoints underestimate an increasing function.
	if rect >= exact {
		t.Errorf("rectangle: expected underestimate, got %.17g", rect)
	}

	trap, err := TrapezoidalRule(square, 0, 1, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if !within(trap, exact, 1e-8) {
		t.Errorf("trapezoidal: error %.3e exceeds 1e-8", math.Abs(trap-exact))
	}

	simp, err := SimpsonRule(square, 0, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if !within(simp, exact, 1e-14) {
		t.Errorf("simpson: error %.3e exceeds 1e-14", math.Abs(simp-exact))
	}

	t.Logf("errors: rectangle=%.3e trapezoidal=%.3e simpson=%.3e",
		math.Abs(rect-exact), math.Abs(trap-exact), math.Abs(simp-exact))
}

// TestTrapezoidal_LinearIsExact verifies trapezoids integrate lines exactly.
func TestTrapezoidal_LinearIsExact(t *testing.T) {
	line := func(x float64) float64 { return 2.5*x - 4 }
	// ∫₋₃⁵ (2.5x - 4) dx = 1.25(25-9) - 4·8 = -12
	for _, n := range []int64{1, 2, 3, 17, 256} {
		got, err := TrapezoidalRule(line, -3, 5, n)
		if err != nil {
			t.Fatal(err)
		}
		if !within(got, -12, 1e-12) {
			t.Errorf("n=%d: expected -12, got %.17g", n, got)
		}
	}
}

// TestSimpson_CubicIsExact verifies Simpson integrates cubics exactly.
func TestSimpson_CubicIsExact(t *testing.T) {
	// ∫₋₁² (x³ - 2x + 1) dx = 3.75
	for _, n := range []int64{2, 4, 10, 64} {
		got, err := SimpsonRule(cubic, -1, 2, n)
		if err != nil {
			t.Fatal(err)
		}
		if !within(got, 3.75, 1e-12) {
			t.Errorf("n=%d: expected 3.75, got %.17g", n, got)
		}
	}
}

// TestRules_Deterministic verifies repeated sequential calls are bit-identical.
func TestRules_Deterministic(t *testing.T) {
	for rule, fn := range sequentialRules {
		first, err := fn(math.Sin, 0.3, 2.9, 5000)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 5; i++ {
			again, _ := fn(math.Sin, 0.3, 2.9, 5000)
			if math.Float64bits(again) != math.Float64bits(first) {
				t.Fatalf("%v: run %d returned %x, first returned %x",
					rule, i, math.Float64bits(again), math.Float64bits(first))
			}
		}
	}
}

// TestRules_ConcreteScenarios pins the reference integrals of the demo set.
func TestRules_ConcreteScenarios(t *testing.T) {
	trap, err := TrapezoidalRule(math.Sin, 0, math.Pi, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if !within(trap, 2, 1e-6) {
		t.Errorf("trapezoidal sin: expected ≈2, got %.12f", trap)
	}

	// Simpson's error bound at n=50 is (b-a)h⁴/180·max|f⁗| ≈ 1.5e-9.
	simp50, err := SimpsonRule(math.Exp, 0, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if !within(simp50, math.E-1, 1e-8) {
		t.Errorf("simpson exp n=50: error %.3e", math.Abs(simp50-(math.E-1)))
	}

	simp100, err := SimpsonRule(math.Exp, 0, 1, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !within(simp100, math.E-1, 1e-10) {
		t.Errorf("simpson exp n=100: error %.3e", math.Abs(simp100-(math.E-1)))
	}
}

// TestRules_MatchGonum cross-checks the trapezoidal and Simpson rules
// against gonum's sampled-data integrators on the same uniform grid.
func TestRules_MatchGonum(t *testing.T) {
	const (
		a = 0.0
		b = 2.0
		n = 400
	)
	f := func(x float64) float64 { return math.Exp(-x) * math.Cos(3*x) }

	h := (b - a) / n
	xs := make([]float64, n+1)
	ys := make([]float64, n+1)
	for i := range xs {
		xs[i] = a + float64(i)*h
		ys[i] = f(xs[i])
	}

	trap, err := TrapezoidalRule(f, a, b, n)
	if err != nil {
		t.Fatal(err)
	}
	if want := integrate.Trapezoidal(xs, ys); !within(trap, want, 1e-12) {
		t.Errorf("trapezoidal: got %.17g, gonum %.17g", trap, want)
	}

	simp, err := SimpsonRule(f, a, b, n)
	if err != nil {
		t.Fatal(err)
	}
	if want := integrate.Simpsons(xs, ys); !within(simp, want, 1e-12) {
		t.Errorf("simpson: got %.17g, gonum %.17g", simp, want)
	}
}

// TestRules_ConvergenceOrder measures the observed order by doubling n.
func TestRules_ConvergenceOrder(t *testing.T) {
	cfg := DefaultAssertionConfig()
	exact := math.E - 1

	AssertConvergenceOrder(t, Rectangle, math.Exp, 0, 1, exact, 64, 1, cfg)
	AssertConvergenceOrder(t, Trapezoidal, math.Exp, 0, 1, exact, 64, 2, cfg)
	AssertConvergenceOrder(t, Simpson, math.Exp, 0, 1, exact, 16, 4, cfg)
}

// TestRules_Preconditions verifies rejected calls fail before evaluating f.
func TestRules_Preconditions(t *testing.T) {
	for rule, fn := range sequentialRules {
		fn := fn
		t.Run(rule.String(), func(t *testing.T) {
			AssertNoEvaluation(t, ErrInvalidIntervalCount, func(f Integrand) error {
				_, err := fn(f, 0, 1, 0)
				return err
			})
			AssertNoEvaluation(t, ErrInvalidIntervalCount, func(f Integrand) error {
				_, err := fn(f, 0, 1, -4)
				return err
			})
			AssertNoEvaluation(t, ErrInvalidBounds, func(f Integrand) error {
				_, err := fn(f, 1, 1, 4)
				return err
			})
			AssertNoEvaluation(t, ErrInvalidBounds, func(f Integrand) error {
				_, err := fn(f, 2, 1, 4)
				return err
			})
			AssertNoEvaluation(t, ErrInvalidBounds, func(f Integrand) error {
				_, err := fn(f, math.NaN(), 1, 4)
				return err
			})
			AssertNoEvaluation(t, ErrInvalidBounds, func(f Integrand) error {
				_, err := fn(f, 0, math.Inf(1), 4)
				return err
			})
		})
	}

	AssertNoEvaluation(t, ErrInvalidParity, func(f Integrand) error {
		_, err := SimpsonRule(f, 0, 1, 7)
		return err
	})
}

// TestRules_IntervalCountCheckedFirst verifies n is validated before bounds.
func TestRules_IntervalCountCheckedFirst(t *testing.T) {
	_, err := SimpsonRule(square, 1, 0, -3)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrInvalidIntervalCount) {
		t.Errorf("expected ErrInvalidIntervalCount, got %v", err)
	}

	_, err = SimpsonRule(square, 1, 0, 3)
	if !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds before parity, got %v", err)
	}
}

// TestRules_SingleInterval covers n=1, the smallest valid count.
func TestRules_SingleInterval(t *testing.T) {
	rect, err := RectangleRule(square, 1, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if rect != 2 { // f(1)·2
		t.Errorf("rectangle n=1: expected 2, got %v", rect)
	}

	trap, err := TrapezoidalRule(square, 1, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if trap != 10 { // (1+9)/2·2
		t.Errorf("trapezoidal n=1: expected 10, got %v", trap)
	}
}

// TestRules_IntegrandPanicPropagates verifies a panicking integrand is not
// swallowed by the sequential path.
func TestRules_IntegrandPanicPropagates(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("expected panic %q, got %v", "boom", r)
		}
	}()

	_, _ = TrapezoidalRule(func(x float64) float64 {
		if x > 0.5 {
			panic("boom")
		}
		return x
	}, 0, 1, 10)
	t.Error("expected panic")
}
