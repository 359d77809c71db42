package quadbench

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestParseRule verifies names, short forms, and rejection of unknown tags.
func TestParseRule(t *testing.T) {
	tests := []struct {
		in   string
		want Rule
	}{
		{"rectangle", Rectangle},
		{"Rect", Rectangle},
		{"trapezoidal", Trapezoidal},
		{" trap ", Trapezoidal},
		{"SIMPSON", Simpson},
	}
	for _, tt := range tests {
		got, err := ParseRule(tt.in)
		if err != nil {
			t.Errorf("ParseRule(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRule(%q) = %v, expected %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "midpoint", "default", "gauss"} {
		if _, err := ParseRule(bad); !errors.Is(err, ErrInvalidRule) {
			t.Errorf("ParseRule(%q): expected ErrInvalidRule, got %v", bad, err)
		}
	}
}

// TestRule_String covers valid and out-of-range values.
func TestRule_String(t *testing.T) {
	if Simpson.String() != "simpson" {
		t.Errorf("unexpected name %q", Simpson.String())
	}
	if Rule(0).Valid() || Rule(7).Valid() {
		t.Error("out-of-range rule reported valid")
	}
	if Rule(7).String() != "Rule(7)" {
		t.Errorf("unexpected name %q", Rule(7).String())
	}
	if len(Rules()) != 3 {
		t.Errorf("expected 3 rules, got %d", len(Rules()))
	}
}

// TestRule_JSON verifies rules and modes travel as names.
func TestRule_JSON(t *testing.T) {
	res := BenchmarkResult{Value: 1.5, ElapsedMs: 0.25, Mode: Parallel, Rule: Trapezoidal, N: 8}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"value":1.5,"elapsed_ms":0.25,"mode":"parallel","rule":"trapezoidal","n":8}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}

	var back BenchmarkResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != res {
		t.Errorf("expected %+v, got %+v", res, back)
	}

	if _, err := json.Marshal(BenchmarkResult{Rule: Rule(9), Mode: Sequential}); err == nil {
		t.Error("expected marshal error for invalid rule")
	}
}
