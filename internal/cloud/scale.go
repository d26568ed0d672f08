package cloud

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/plot"
)

// DefaultCodomain is the output interval used for position axes when a
// dataset does not configure one.
var DefaultCodomain = Range{Min: -0.5, Max: 0.5}

// ScaleKind selects how a domain is mapped onto a codomain.
type ScaleKind int

const (
	Linear ScaleKind = iota
	Logarithmic
)

func (k ScaleKind) String() string {
	switch k {
	case Linear:
		return "linear"
	case Logarithmic:
		return "log"
	default:
		return fmt.Sprintf("ScaleKind(%d)", int(k))
	}
}

// ParseScaleKind accepts "linear", "log" and "logarithmic". An empty name
// means Linear.
func ParseScaleKind(name string) (ScaleKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		return Linear, nil
	case "log", "logarithmic":
		return Logarithmic, nil
	default:
		return Linear, fmt.Errorf("unknown scale type %q", name)
	}
}

// Scale maps values from Domain onto Codomain and back. Scales are
// immutable after construction.
type Scale struct {
	Kind     ScaleKind
	Domain   Range
	Codomain Range

	constant bool
	norm     plot.Normalizer
}

// NewScale builds a scale from domain onto codomain.
//
// A logarithmic scale needs domain.Min > 0 and fails with ErrInvalidDomain
// otherwise; that check runs first. A domain or codomain without extent
// fails with ErrDegenerateRange.
func NewScale(domain, codomain Range, kind ScaleKind) (Scale, error) {
	if kind == Logarithmic && !(domain.Min > 0) {
		return Scale{}, fmt.Errorf("domain %v: %w", domain, ErrInvalidDomain)
	}
	if domain.Empty() || domain.Degenerate() {
		return Scale{}, fmt.Errorf("domain %v: %w", domain, ErrDegenerateRange)
	}
	if codomain.Degenerate() || math.IsNaN(codomain.Span()) || math.IsInf(codomain.Span(), 0) {
		return Scale{}, fmt.Errorf("codomain %v: %w", codomain, ErrDegenerateRange)
	}

	s := Scale{Kind: kind, Domain: domain, Codomain: codomain}
	switch kind {
	case Linear:
		s.norm = plot.LinearScale{}
	case Logarithmic:
		s.norm = plot.LogScale{}
	default:
		return Scale{}, fmt.Errorf("unknown scale kind %d", int(kind))
	}
	return s, nil
}

// ConstantScale maps every value to the midpoint of codomain. It stands in
// for a scale whose domain is degenerate. Inverse returns domain.Min, which
// is the single value of a degenerate domain.
func ConstantScale(domain, codomain Range) Scale {
	return Scale{Kind: Linear, Domain: domain, Codomain: codomain, constant: true}
}

// Constant reports whether s is a ConstantScale.
func (s Scale) Constant() bool {
	return s.constant
}

// Forward maps a domain value onto the codomain. Values outside the domain
// extrapolate. A logarithmic scale returns NaN for v <= 0.
func (s Scale) Forward(v float64) float64 {
	if s.constant {
		return s.Codomain.Midpoint()
	}
	if s.Kind == Logarithmic && !(v > 0) {
		return math.NaN()
	}
	t := s.norm.Normalize(s.Domain.Min, s.Domain.Max, v)
	return s.Codomain.Min + t*s.Codomain.Span()
}

// Inverse maps a codomain value back onto the domain.
func (s Scale) Inverse(y float64) float64 {
	if s.constant {
		if s.Domain.Empty() {
			return math.NaN()
		}
		return s.Domain.Min
	}
	t := (y - s.Codomain.Min) / s.Codomain.Span()
	if s.Kind == Logarithmic {
		return s.Domain.Min * math.Pow(s.Domain.Max/s.Domain.Min, t)
	}
	return s.Domain.Min + t*s.Domain.Span()
}

func (s Scale) String() string {
	if s.constant {
		return fmt.Sprintf("constant %v -> %g", s.Domain, s.Codomain.Midpoint())
	}
	return fmt.Sprintf("%s %v -> %v", s.Kind, s.Domain, s.Codomain)
}

// ScaleSpec is the kind and output interval requested for one role.
type ScaleSpec struct {
	Kind     ScaleKind
	Codomain Range
}

// Scales holds the scale built for each scaled role.
type Scales struct {
	byRole map[Role]Scale
}

// Get returns the scale for role, or ErrMissingRole.
func (ss Scales) Get(role Role) (Scale, error) {
	s, ok := ss.byRole[role]
	if !ok {
		return Scale{}, fmt.Errorf("scale for %s: %w", role, ErrMissingRole)
	}
	return s, nil
}

// Has reports whether a scale exists for role.
func (ss Scales) Has(role Role) bool {
	_, ok := ss.byRole[role]
	return ok
}

// NewScales wraps a role->scale map.
func NewScales(byRole map[Role]Scale) Scales {
	cp := make(map[Role]Scale, len(byRole))
	for r, s := range byRole {
		cp[r] = s
	}
	return Scales{byRole: cp}
}
