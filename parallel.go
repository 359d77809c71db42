package quadbench

// The parallel forms express each rule as one reduction over independent
// per-index terms. Endpoints are weighted outside the reduction so the term
// body has no boundary branch. Preconditions are checked before the reducer
// sees any work.

func reducerOrSerial(r Reducer) Reducer {
	if r == nil {
		return SerialReducer
	}
	return r
}

// RectangleParallel is RectangleRule evaluated through r.
func RectangleParallel(r Reducer, f Integrand, a, b float64, n int64) (float64, error) {
	if err := validate(a, b, n); err != nil {
		return 0, err
	}

	h := (b - a) / float64(n)
	sum := reducerOrSerial(r).Sum(0, n, func(i int64) float64 {
		return f(a + float64(i)*h)
	})
	return sum * h, nil
}

// TrapezoidalParallel is TrapezoidalRule evaluated through r. Only the
// interior nodes [1, n) go through the reduction.
func TrapezoidalParallel(r Reducer, f Integrand, a, b float64, n int64) (float64, error) {
	if err := validate(a, b, n); err != nil {
		return 0, err
	}

	h := (b - a) / float64(n)
	interior := reducerOrSerial(r).Sum(1, n, func(i int64) float64 {
		return f(a + float64(i)*h)
	})
	return (0.5*(f(a)+f(b)) + interior) * h, nil
}

// SimpsonParallel is SimpsonRule evaluated through r. n must be even.
func SimpsonParallel(r Reducer, f Integrand, a, b float64, n int64) (float64, error) {
	if err := validateSimpson(a, b, n); err != nil {
		return 0, err
	}

	h := (b - a) / float64(n)
	interior := reducerOrSerial(r).Sum(1, n, func(i int64) float64 {
		return simpsonWeight(i) * f(a+float64(i)*h)
	})
	return (h / 3) * (f(a) + f(b) + interior), nil
}
