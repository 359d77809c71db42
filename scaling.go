package quadbench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Workload is one parallel integration repeated by a scaling study.
// F is called from several workers at once.
type Workload struct {
	Rule Rule
	F    Integrand
	A, B float64
	N    int64
}

// Result contains measurements from a single worker count.
type Result struct {
	Workers      int             // Runtime pool size
	Duration     time.Duration   // Wall time of the timed repetitions
	Integrations int64           // Timed repetitions completed
	Throughput   float64         // Integrations per second
	Latencies    []time.Duration // Per-integration wall time
	Value        float64         // Value of the last integration
}

// Statistics contains latency percentiles for one Result.
type Statistics struct {
	Mean   time.Duration
	Stddev time.Duration
	P50    time.Duration
	P95    time.Duration
	P99    time.Duration

	// TailRatio is P99/P50. Near 1 the latencies are tight; a large ratio
	// means a few repetitions hit scheduler or GC stalls.
	TailRatio float64
}

// USLCoefficients contains the Universal Scalability Law parameters fitted
// to a scaling study:
//
//	C(N) = λN / (1 + α(N-1) + βN(N-1))
//
// where N is the number of workers and C(N) integrations per second.
type USLCoefficients struct {
	Lambda   float64 `json:"lambda" yaml:"lambda"`       // λ: integrations/sec with one worker
	Alpha    float64 `json:"alpha" yaml:"alpha"`         // α: contention (endpoints, combine, dispatch)
	Beta     float64 `json:"beta" yaml:"beta"`           // β: coordination (chunk handoff, cache traffic)
	RSquared float64 `json:"r_squared" yaml:"r_squared"` // R²: goodness of fit (1.0 = perfect)
}

// Config controls a scaling study.
type Config struct {
	Levels      []int // Worker counts to measure
	Repetitions int   // Timed integrations per level
	Warmup      int   // Untimed integrations per level
	Grain       int64 // Runtime grain (0 = runtime default)
	MaxProcs    int   // GOMAXPROCS for the study (0 = leave unchanged)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Levels:      []int{1, 2, 4, 8},
		Repetitions: 20,
		Warmup:      2,
	}
}

// Run integrates w repeatedly at each worker count in cfg.Levels. Each
// level gets its own Runtime, closed before the next level starts.
func Run(ctx context.Context, w Workload, cfg Config) ([]Result, error) {
	if len(cfg.Levels) == 0 {
		return nil, errors.New("quadbench: no worker levels to measure")
	}
	if cfg.Repetitions <= 0 {
		return nil, fmt.Errorf("quadbench: repetitions must be positive, got %d", cfg.Repetitions)
	}

	if cfg.MaxProcs > 0 {
		oldMaxProcs := runtime.GOMAXPROCS(cfg.MaxProcs)
		defer runtime.GOMAXPROCS(oldMaxProcs)
	}

	results := make([]Result, 0, len(cfg.Levels))
	for _, workers := range cfg.Levels {
		result, err := runAtLevel(ctx, w, workers, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed at workers=%d: %w", workers, err)
		}
		results = append(results, result)
	}

	return results, nil
}

func runAtLevel(ctx context.Context, w Workload, workers int, cfg Config) (Result, error) {
	if workers <= 0 {
		return Result{}, fmt.Errorf("quadbench: worker count must be positive, got %d", workers)
	}

	rt := NewRuntime(RuntimeConfig{Workers: workers, Grain: cfg.Grain})
	defer rt.Close()
	integ := New(rt)

	for i := 0; i < cfg.Warmup; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if _, err := integ.IntegrateParallel(w.F, w.A, w.B, w.N, w.Rule); err != nil {
			return Result{}, err
		}
	}

	latencies := make([]time.Duration, 0, cfg.Repetitions)
	var value float64

	start := time.Now()
	for i := 0; i < cfg.Repetitions; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		br, err := integ.BenchmarkParallel(w.F, w.A, w.B, w.N, w.Rule)
		if err != nil {
			return Result{}, err
		}
		latencies = append(latencies, time.Duration(br.ElapsedMs*float64(time.Millisecond)))
		value = br.Value
	}
	elapsed := time.Since(start)

	return Result{
		Workers:      workers,
		Duration:     elapsed,
		Integrations: int64(len(latencies)),
		Throughput:   float64(len(latencies)) / elapsed.Seconds(),
		Latencies:    latencies,
		Value:        value,
	}, nil
}

// CalculateStatistics computes latency percentiles.
func CalculateStatistics(result Result) Statistics {
	if len(result.Latencies) == 0 {
		return Statistics{}
	}

	samples := make([]float64, len(result.Latencies))
	for i, lat := range result.Latencies {
		samples[i] = float64(lat)
	}
	sort.Float64s(samples)

	mean, stddev := stat.PopMeanStdDev(samples, nil)
	quantile := func(p float64) time.Duration {
		return time.Duration(stat.Quantile(p, stat.Empirical, samples, nil))
	}

	stats := Statistics{
		Mean:   time.Duration(mean),
		Stddev: time.Duration(stddev),
		P50:    quantile(0.50),
		P95:    quantile(0.95),
		P99:    quantile(0.99),
	}
	if stats.P50 > 0 {
		stats.TailRatio = float64(stats.P99) / float64(stats.P50)
	}
	return stats
}

// FitUSL finds λ, α, β by least squares on the linearized law
//
//	N/C(N) = 1/λ + (α/λ)(N-1) + (β/λ)N(N-1)
//
// which is linear in 1/λ, α/λ, β/λ. Levels with zero throughput are ignored.
// A negative β with positive α is a fitting artifact of noisy data; the law
// is then refitted with β = 0.
func FitUSL(results []Result) (USLCoefficients, error) {
	usable := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Throughput > 0 {
			usable = append(usable, r)
		}
	}
	if len(usable) < 3 {
		return USLCoefficients{}, fmt.Errorf("need at least 3 data points, got %d", len(usable))
	}

	b, err := solveUSL(usable, 3)
	if err != nil {
		// Degenerate design (e.g. repeated levels): report serial
		// throughput and a nominal contention.
		return USLCoefficients{Lambda: usable[0].Throughput, Alpha: 0.01}, nil
	}

	lambda := 1 / b[0]
	alpha := b[1] / b[0]
	beta := b[2] / b[0]

	if beta < 0 && alpha > 0 {
		if b2, err := solveUSL(usable, 2); err == nil {
			lambda = 1 / b2[0]
			alpha = b2[1] / b2[0]
			beta = 0
		}
	}

	var meanThroughput float64
	for _, r := range usable {
		meanThroughput += r.Throughput
	}
	meanThroughput /= float64(len(usable))

	var ssRes, ssTot float64
	for _, r := range usable {
		predicted := uslModel(float64(r.Workers), lambda, alpha, beta)
		ssRes += (r.Throughput - predicted) * (r.Throughput - predicted)
		ssTot += (r.Throughput - meanThroughput) * (r.Throughput - meanThroughput)
	}

	rSquared := 1.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	}

	return USLCoefficients{
		Lambda:   lambda,
		Alpha:    alpha,
		Beta:     beta,
		RSquared: rSquared,
	}, nil
}

// solveUSL solves Y = b0 + b1(N-1) [+ b2·N(N-1)] in the least-squares sense.
// terms is 2 (contention only) or 3 (full law).
func solveUSL(results []Result, terms int) ([]float64, error) {
	x := mat.NewDense(len(results), terms, nil)
	y := mat.NewVecDense(len(results), nil)
	for i, r := range results {
		n := float64(r.Workers)
		x.Set(i, 0, 1)
		x.Set(i, 1, n-1)
		if terms == 3 {
			x.Set(i, 2, n*(n-1))
		}
		y.SetVec(i, n/r.Throughput)
	}

	var coef mat.VecDense
	if err := coef.SolveVec(x, y); err != nil {
		return nil, err
	}

	out := make([]float64, terms)
	for i := range out {
		out[i] = coef.AtVec(i)
	}
	if out[0] == 0 || math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		return nil, errors.New("degenerate serial term")
	}
	return out, nil
}

// uslModel calculates predicted throughput using the USL formula.
func uslModel(n, lambda, alpha, beta float64) float64 {
	return (lambda * n) / (1 + alpha*(n-1) + beta*n*(n-1))
}

// PredictThroughput estimates integrations/sec at a given worker count.
func (c USLCoefficients) PredictThroughput(workers int) float64 {
	if workers <= 0 {
		return 0
	}
	return uslModel(float64(workers), c.Lambda, c.Alpha, c.Beta)
}

// Efficiency returns the ratio of predicted to ideal throughput.
// 1.0 = perfect linear scaling.
func (c USLCoefficients) Efficiency(workers int) float64 {
	ideal := c.Lambda * float64(workers)
	if ideal == 0 {
		return 0
	}
	return c.PredictThroughput(workers) / ideal
}
