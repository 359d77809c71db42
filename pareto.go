package quadbench

import (
	"context"
	"errors"
	"math"
	"sort"
)

// Tradeoff is one point in the accuracy/cost plane: what a rule at a given
// interval count costs and how far it lands from a reference value.
type Tradeoff struct {
	Rule      Rule    `json:"rule" yaml:"rule"`
	Mode      Mode    `json:"mode" yaml:"mode"`
	N         int64   `json:"n" yaml:"n"`
	Value     float64 `json:"value" yaml:"value"`
	ElapsedMs float64 `json:"elapsed_ms" yaml:"elapsed_ms"`
	AbsError  float64 `json:"abs_error" yaml:"abs_error"`
}

// SweepSpec describes a grid of (rule, n) pairs to benchmark against a
// known reference value.
type SweepSpec struct {
	F         Integrand
	A, B      float64
	Reference float64
	Rules     []Rule  // default: Rules()
	Counts    []int64 // interval counts to try
	Modes     []Mode  // default: Sequential
}

// Sweep benchmarks every (rule, n, mode) combination in spec. Simpson is
// skipped for odd n rather than failing the sweep; any other precondition
// error aborts it.
func Sweep(ctx context.Context, in *Integrator, spec SweepSpec) ([]Tradeoff, error) {
	if len(spec.Counts) == 0 {
		return nil, errors.New("quadbench: sweep needs at least one interval count")
	}
	rules := spec.Rules
	if len(rules) == 0 {
		rules = Rules()
	}
	modes := spec.Modes
	if len(modes) == 0 {
		modes = []Mode{Sequential}
	}

	points := make([]Tradeoff, 0, len(rules)*len(spec.Counts)*len(modes))
	for _, rule := range rules {
		for _, n := range spec.Counts {
			if rule == Simpson && n%2 != 0 {
				continue
			}
			for _, mode := range modes {
				if err := ctx.Err(); err != nil {
					return nil, err
				}

				var (
					br  BenchmarkResult
					err error
				)
				if mode == Parallel {
					br, err = in.BenchmarkParallel(spec.F, spec.A, spec.B, n, rule)
				} else {
					br, err = in.Benchmark(spec.F, spec.A, spec.B, n, rule)
				}
				if err != nil {
					return nil, err
				}

				points = append(points, Tradeoff{
					Rule:      rule,
					Mode:      br.Mode,
					N:         n,
					Value:     br.Value,
					ElapsedMs: br.ElapsedMs,
					AbsError:  math.Abs(br.Value - spec.Reference),
				})
			}
		}
	}
	return points, nil
}

// ParetoFront returns the points no other point beats on both cost and
// error, sorted by elapsed time. A point is dominated when another is at
// least as cheap and at least as accurate, and strictly better in one.
// Points that tie on both measures do not dominate each other, so all of
// them are kept.
func ParetoFront(points []Tradeoff) []Tradeoff {
	sorted := make([]Tradeoff, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ElapsedMs != sorted[j].ElapsedMs {
			return sorted[i].ElapsedMs < sorted[j].ElapsedMs
		}
		return sorted[i].AbsError < sorted[j].AbsError
	})

	// Sweep by cost: a point survives if it improves on the best error seen
	// among everything cheaper, or exactly ties the last survivor.
	front := make([]Tradeoff, 0, len(sorted))
	bestErr := math.Inf(1)
	for _, p := range sorted {
		switch {
		case p.AbsError < bestErr:
			front = append(front, p)
			bestErr = p.AbsError
		case len(front) > 0 && p.ElapsedMs == front[len(front)-1].ElapsedMs && p.AbsError == bestErr:
			front = append(front, p)
		}
	}
	return front
}
