package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/alexshd/quadbench"
	"github.com/alexshd/quadbench/internal/history"
)

func ptr(v float64) *float64 { return &v }

func sampleRows() []Row {
	return []Row{
		{
			Function:        "sin",
			BenchmarkResult: quadbench.BenchmarkResult{Value: 1.9999999835, ElapsedMs: 0.412, Mode: quadbench.Sequential, Rule: quadbench.Trapezoidal, N: 10000},
			Exact:           ptr(2),
			AbsError:        ptr(1.65e-8),
		},
		{
			Function:        "exp",
			BenchmarkResult: quadbench.BenchmarkResult{Value: math.E - 1, ElapsedMs: 0.05, Mode: quadbench.Parallel, Rule: quadbench.Simpson, N: 100},
			Exact:           ptr(math.E - 1),
			AbsError:        ptr(0),
		},
		{
			Function:        "square",
			BenchmarkResult: quadbench.BenchmarkResult{Value: 9, ElapsedMs: 0.01, Mode: quadbench.Sequential, Rule: quadbench.Simpson, N: 10},
		},
	}
}

func TestBenchmarks_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Benchmarks(&buf, "table", sampleRows()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "FUNCTION"))
	assert.Contains(t, lines[1], "trapezoidal")
	assert.Contains(t, lines[1], "sequential")
	assert.Contains(t, lines[1], "1.650e-08")
	assert.Contains(t, lines[2], "parallel")
	assert.Contains(t, lines[2], "0.050")
	assert.Contains(t, lines[2], "0.000e+00")
	// Unknown error is a dash, not a zero.
	assert.Equal(t, []string{"square", "simpson", "sequential", "10", "9", "-", "0.010"}, strings.Fields(lines[3]))
}

func TestBenchmarks_UnknownErrorOmitted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Benchmarks(&buf, "json", sampleRows()[1:]))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "abs_error", "a known zero error is still reported")
	assert.NotContains(t, got[1], "abs_error")
	assert.NotContains(t, got[1], "exact")
}

func TestBenchmarks_JSONFlattensResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Benchmarks(&buf, "json", sampleRows()[:1]))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "sin", got[0]["function"])
	assert.Equal(t, "trapezoidal", got[0]["rule"])
	assert.Equal(t, "sequential", got[0]["mode"])
	assert.EqualValues(t, 10000, got[0]["n"])
}

func TestBenchmarks_YAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rows := sampleRows()
	require.NoError(t, Benchmarks(&buf, "yaml", rows))
	assert.Contains(t, buf.String(), "rule: simpson")

	var back []Row
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, rows, back)
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	err := Encode(&bytes.Buffer{}, "xml", sampleRows())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestNewScaling(t *testing.T) {
	results := []quadbench.Result{
		{Workers: 1, Throughput: 1000, Latencies: []time.Duration{time.Millisecond, time.Millisecond}},
		{Workers: 2, Throughput: 2000, Latencies: []time.Duration{500 * time.Microsecond}},
	}
	fit := quadbench.USLCoefficients{Lambda: 1000, RSquared: 1}

	s := NewScaling(results, fit, 2)
	require.Len(t, s.Rows, 2)
	assert.InDelta(t, 1.0, s.Rows[0].MeanMs, 1e-12)
	assert.InDelta(t, 0.5, s.Rows[1].P50Ms, 1e-12)
	assert.InDelta(t, 2000, s.Rows[1].Predicted, 1e-9)
	assert.Equal(t, 2, s.Recommendation.Workers)
	// No coordination cost: the peak is unbounded and left out.
	assert.Zero(t, s.Recommendation.PeakWorkers)

	var buf bytes.Buffer
	require.NoError(t, ScalingStudy(&buf, "json", s))
	assert.NotContains(t, buf.String(), "peak_workers")
	assert.Contains(t, buf.String(), `"lambda": 1000`)

	buf.Reset()
	require.NoError(t, ScalingStudy(&buf, "table", s))
	assert.Contains(t, buf.String(), "Recommended workers: 2")
	assert.Contains(t, buf.String(), "100.0%")
}

func TestFrontier_Table(t *testing.T) {
	points := []quadbench.Tradeoff{
		{Rule: quadbench.Rectangle, Mode: quadbench.Sequential, N: 10, ElapsedMs: 0.001, AbsError: 0.05},
		{Rule: quadbench.Simpson, Mode: quadbench.Sequential, N: 10, ElapsedMs: 0.002, AbsError: 1e-6},
	}

	var buf bytes.Buffer
	require.NoError(t, Frontier(&buf, "table", points))
	out := buf.String()
	assert.Contains(t, out, "rectangle")
	assert.Contains(t, out, "1.000e-06")
}

func TestRuns_YAML(t *testing.T) {
	runs := []history.Run{{
		ID:         "7f1c",
		RecordedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Command:    "integrate",
		Function:   "cubic",
		Rule:       quadbench.Simpson,
		Mode:       quadbench.Sequential,
		N:          2,
		Workers:    1,
		Value:      3.75,
	}}

	var buf bytes.Buffer
	require.NoError(t, Runs(&buf, "yaml", runs))
	assert.Contains(t, buf.String(), "function: cubic")
	assert.Contains(t, buf.String(), "rule: simpson")

	assert.NotContains(t, buf.String(), "abs_error")

	buf.Reset()
	require.NoError(t, Runs(&buf, "table", runs))
	assert.Contains(t, buf.String(), "integrate")
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, strings.Fields(lines[1]), "-")
}
