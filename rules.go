package quadbench

// Integrand is the function being integrated. It must be pure for the
// result to mean anything; the engine never inspects or caches it.
type Integrand func(x float64) float64

// RectangleRule approximates ∫ₐᵇ f(x) dx with n left-endpoint rectangles.
// First-order: the error shrinks as O(h).
func RectangleRule(f Integrand, a, b float64, n int64) (float64, error) {
	if err := validate(a, b, n); err != nil {
		return 0, err
	}

	h := (b - a) / float64(n)
	sum := 0.0
	for i := int64(0); i < n; i++ {
		sum += f(a + float64(i)*h)
	}
	return sum * h, nil
}

// TrapezoidalRule approximates ∫ₐᵇ f(x) dx with n trapezoids.
// Second-order: the error shrinks as O(h²), and linear f is integrated exactly.
func TrapezoidalRule(f Integrand, a, b float64, n int64) (float64, error) {
	if err := validate(a, b, n); err != nil {
		return 0, err
	}

	h := (b - a) / float64(n)
	sum := 0.5 * (f(a) + f(b))
	for i := int64(1); i < n; i++ {
		sum += f(a + float64(i)*h)
	}
	return sum * h, nil
}

// SimpsonRule approximates ∫ₐᵇ f(x) dx with composite Simpson's 1/3 rule.
// n must be even. Fourth-order: cubics are integrated exactly.
func SimpsonRule(f Integrand, a, b float64, n int64) (float64, error) {
	if err := validateSimpson(a, b, n); err != nil {
		return 0, err
	}

	h := (b - a) / float64(n)
	sum := f(a) + f(b)
	for i := int64(1); i < n; i++ {
		sum += simpsonWeight(i) * f(a+float64(i)*h)
	}
	return (h / 3) * sum, nil
}

// simpsonWeight is the interior Simpson coefficient: 4 on odd nodes, 2 on even.
func simpsonWeight(i int64) float64 {
	if i%2 == 1 {
		return 4
	}
	return 2
}
