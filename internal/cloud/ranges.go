package cloud

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// EmptyRange is the range of no values: Min=+Inf, Max=-Inf.
func EmptyRange() Range {
	return Range{Min: math.Inf(1), Max: math.Inf(-1)}
}

// Empty reports whether r covers no values.
func (r Range) Empty() bool {
	return math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Min > r.Max
}

// Degenerate reports whether r has no extent.
func (r Range) Degenerate() bool {
	return r.Min == r.Max
}

// Span returns Max - Min.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Midpoint returns the centre of r.
func (r Range) Midpoint() float64 {
	return r.Min + (r.Max-r.Min)/2
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// Ranges holds the computed range of every mapped numeric role.
type Ranges struct {
	byRole map[Role]Range

	// Skipped counts cells per role that were missing or not numeric.
	Skipped map[Role]int
}

// Get returns the range for role, or ErrMissingRole when the role was not
// mapped at computation time.
func (rs Ranges) Get(role Role) (Range, error) {
	r, ok := rs.byRole[role]
	if !ok {
		return Range{}, fmt.Errorf("range for %s: %w", role, ErrMissingRole)
	}
	return r, nil
}

// Has reports whether a range was computed for role.
func (rs Ranges) Has(role Role) bool {
	_, ok := rs.byRole[role]
	return ok
}

// Roles returns the roles that have a range, in declaration order.
func (rs Ranges) Roles() []Role {
	var out []Role
	for _, r := range Roles {
		if rs.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// ComputeRanges scans rows once and returns the [min, max] of every mapped
// numeric role. rows must not include the header. Cells that are missing
// or fail numeric coercion are skipped and counted in Ranges.Skipped. A role
// with no numeric cells gets EmptyRange.
func ComputeRanges(rows [][]string, m Mapping) Ranges {
	var roles []Role
	for _, r := range Roles {
		if r.Numeric() && m.Has(r) {
			roles = append(roles, r)
		}
	}

	values := make(map[Role][]float64, len(roles))
	skipped := make(map[Role]int)
	for _, r := range roles {
		values[r] = make([]float64, 0, len(rows))
	}

	for _, row := range rows {
		for _, r := range roles {
			cell, ok := m.Cell(row, r)
			if !ok {
				skipped[r]++
				continue
			}
			v, err := ParseNumber(cell)
			if err != nil {
				skipped[r]++
				continue
			}
			values[r] = append(values[r], v)
		}
	}

	out := Ranges{byRole: make(map[Role]Range, len(roles)), Skipped: skipped}
	for _, r := range roles {
		vs := values[r]
		if len(vs) == 0 {
			out.byRole[r] = EmptyRange()
			continue
		}
		out.byRole[r] = Range{Min: floats.Min(vs), Max: floats.Max(vs)}
	}
	return out
}

// ParseNumber parses a numeric cell. Blank, NaN and infinite cells fail
// with ErrNumericCoercion.
func ParseNumber(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return math.NaN(), fmt.Errorf("empty cell: %w", ErrNumericCoercion)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), fmt.Errorf("%q: %w", cell, ErrNumericCoercion)
	}
	return v, nil
}
