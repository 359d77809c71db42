// Package catalog holds the named integrands the quadbench CLI can run,
// each with default bounds and the exact value of its integral.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/alexshd/quadbench"
)

// ErrUnknown is returned by Lookup for names not in the catalog.
var ErrUnknown = errors.New("unknown integrand")

// Entry is one demonstration integrand.
type Entry struct {
	Name  string
	Expr  string // human-readable form, e.g. "x^2"
	F     quadbench.Integrand
	A, B  float64
	Exact float64 // ∫_A^B F(x) dx
}

var entries = []Entry{
	{
		Name:  "square",
		Expr:  "x^2",
		F:     func(x float64) float64 { return x * x },
		A:     0,
		B:     1,
		Exact: 1.0 / 3.0,
	},
	{
		Name:  "sin",
		Expr:  "sin(x)",
		F:     math.Sin,
		A:     0,
		B:     math.Pi,
		Exact: 2,
	},
	{
		Name:  "exp",
		Expr:  "exp(x)",
		F:     math.Exp,
		A:     0,
		B:     1,
		Exact: math.E - 1,
	},
	{
		Name:  "cubic",
		Expr:  "x^3 - 2x + 1",
		F:     func(x float64) float64 { return x*x*x - 2*x + 1 },
		A:     -1,
		B:     2,
		Exact: 3.75,
	},
	{
		Name:  "constant",
		Expr:  "3",
		F:     func(float64) float64 { return 3 },
		A:     0,
		B:     5,
		Exact: 15,
	},
}

// All returns every entry in catalog order.
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Names returns the entry names sorted alphabetically.
func Names() []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	sort.Strings(names)
	return names
}

// Lookup finds an entry by name, ignoring case and surrounding space.
func Lookup(name string) (Entry, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, e := range entries {
		if e.Name == key {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w %q (available: %s)", ErrUnknown, name, strings.Join(Names(), ", "))
}
