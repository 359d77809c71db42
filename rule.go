package quadbench

import (
	"fmt"
	"strings"
)

// Rule selects a composite quadrature rule. The set is closed: the zero
// value and anything outside the declared constants are invalid.
type Rule int

const (
	Rectangle   Rule = iota + 1 // Left-endpoint rectangles, O(h)
	Trapezoidal                 // Trapezoids, O(h²)
	Simpson                     // Parabolic segments over interval pairs, O(h⁴)
)

var ruleNames = map[Rule]string{
	Rectangle:   "rectangle",
	Trapezoidal: "trapezoidal",
	Simpson:     "simpson",
}

// Rules returns every valid rule in declaration order.
func Rules() []Rule {
	return []Rule{Rectangle, Trapezoidal, Simpson}
}

// Valid reports whether r is one of the declared rules.
func (r Rule) Valid() bool {
	_, ok := ruleNames[r]
	return ok
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rule(%d)", int(r))
}

// ParseRule maps a rule name (case-insensitive) back to its Rule.
// "rect" and "trap" are accepted as short forms.
func ParseRule(s string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rectangle", "rect":
		return Rectangle, nil
	case "trapezoidal", "trap":
		return Trapezoidal, nil
	case "simpson":
		return Simpson, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRule, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Rule) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRule, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rule) UnmarshalText(text []byte) error {
	parsed, err := ParseRule(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Mode records which execution path produced a result.
type Mode int

const (
	Sequential Mode = iota + 1
	Parallel
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m != Sequential && m != Parallel {
		return nil, fmt.Errorf("quadbench: unknown mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "sequential":
		*m = Sequential
	case "parallel":
		*m = Parallel
	default:
		return fmt.Errorf("quadbench: unknown mode %q", string(text))
	}
	return nil
}
