// Package quadbench approximates definite integrals with composite
// quadrature rules and measures what each approximation costs.
//
// # Rules
//
// Three rules are provided, each in a sequential and a parallel form:
//
//   - Rectangle   - left endpoints, error O(h)
//   - Trapezoidal - endpoints weighted ½, error O(h²), exact for linear f
//   - Simpson     - weights 1,4,2,…,2,4,1 times h/3, error O(h⁴), exact for cubics, n even
//
// with h = (b-a)/n. The sequential forms accumulate left to right, so
// repeated calls return bit-identical results. The parallel forms express
// the same sum as a single reduction over independent per-index terms and
// agree with the sequential forms up to floating-point reassociation.
//
// # Quick Start
//
//	in := quadbench.New(nil) // serial reducer
//	v, err := in.Integrate(math.Sin, 0, math.Pi, 10_000, quadbench.Trapezoidal)
//
// Parallel integration runs through a Reducer. Runtime is a worker pool that
// implements it; start one per process and close it on shutdown:
//
//	rt := quadbench.NewRuntime(quadbench.DefaultRuntimeConfig())
//	defer rt.Close()
//
//	in := quadbench.New(rt)
//	res, err := in.BenchmarkParallel(math.Exp, 0, 1, 50, quadbench.Simpson)
//	fmt.Printf("%.12f in %.3f ms\n", res.Value, res.ElapsedMs)
//
// # Errors
//
// Every rule checks its preconditions before touching the integrand:
//
//   - n ≤ 0            → ErrInvalidIntervalCount
//   - a ≥ b (or NaN/±Inf bounds) → ErrInvalidBounds
//   - Simpson, odd n   → ErrInvalidParity
//   - unknown Rule     → ErrInvalidRule
//
// A panicking integrand is not recovered. On the parallel path the panic is
// carried back to the goroutine that called Sum and re-raised there.
//
// # Scaling
//
// Run measures a parallel Workload at several worker counts and FitUSL fits
// the Universal Scalability Law to the throughput:
//
//	C(N) = λN / (1 + α(N-1) + βN(N-1))
//
// α is the serial share of an integration (endpoint terms, partial-sum
// combine, dispatch); β is the coordination cost of handing chunks to more
// workers. RecommendWorkers turns the fit into a pool size.
//
// # Accuracy vs Cost
//
// Sweep benchmarks a grid of rules and interval counts against a known
// reference value, and ParetoFront keeps the points that no other point
// beats on both elapsed time and error.
//
// # Testing
//
// The Assert helpers check convergence order, sequential/parallel agreement,
// and that rejected calls never evaluate the integrand:
//
//	func TestMyIntegrand(t *testing.T) {
//	    cfg := quadbench.DefaultAssertionConfig()
//	    quadbench.AssertConvergenceOrder(t, quadbench.Trapezoidal, f, 0, 1, exact, 64, 2, cfg)
//	}
package quadbench
