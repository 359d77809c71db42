package quadbench

import (
	"errors"
	"fmt"
	"math"
)

// Precondition failures. Every rule checks these before it evaluates the
// integrand or hands work to a Reducer, so a rejected call never leaves a
// partial result behind. Returned errors wrap one of these; use errors.Is.
var (
	ErrInvalidIntervalCount = errors.New("quadbench: interval count must be positive")
	ErrInvalidBounds        = errors.New("quadbench: lower bound must be less than upper bound")
	ErrInvalidParity        = errors.New("quadbench: simpson rule requires an even interval count")
	ErrInvalidRule          = errors.New("quadbench: unknown quadrature rule")
)

// validate checks the preconditions shared by every rule.
func validate(a, b float64, n int64) error {
	if n <= 0 {
		return fmt.Errorf("%w: n=%d", ErrInvalidIntervalCount, n)
	}
	// !(a < b) also catches NaN bounds.
	if !(a < b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return fmt.Errorf("%w: a=%g b=%g", ErrInvalidBounds, a, b)
	}
	return nil
}

// validateSimpson adds the even-n requirement on top of validate.
func validateSimpson(a, b float64, n int64) error {
	if err := validate(a, b, n); err != nil {
		return err
	}
	if n%2 != 0 {
		return fmt.Errorf("%w: n=%d", ErrInvalidParity, n)
	}
	return nil
}
