package cloud

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relClose(t *testing.T, want, got float64, msgAndArgs ...interface{}) {
	t.Helper()
	tol := 1e-9 * math.Max(1, math.Abs(want))
	assert.InDelta(t, want, got, tol, msgAndArgs...)
}

func TestNewScale_LinearScenario(t *testing.T) {
	s, err := NewScale(Range{Min: 0, Max: 10}, DefaultCodomain, Linear)
	require.NoError(t, err)

	assert.Equal(t, -0.5, s.Forward(0))
	assert.Equal(t, 0.5, s.Forward(10))
	assert.Equal(t, 0.0, s.Forward(5))
	assert.Equal(t, 10.0, s.Inverse(0.5))
	assert.Equal(t, "linear [0, 10] -> [-0.5, 0.5]", s.String())
}

func TestNewScale_Logarithmic(t *testing.T) {
	s, err := NewScale(Range{Min: 1, Max: 100}, DefaultCodomain, Logarithmic)
	require.NoError(t, err)

	relClose(t, -0.5, s.Forward(1))
	relClose(t, 0.0, s.Forward(10))
	relClose(t, 0.5, s.Forward(100))
	relClose(t, 10, s.Inverse(0))
	assert.True(t, math.IsNaN(s.Forward(0)), "log of zero is undefined")
	assert.True(t, math.IsNaN(s.Forward(-3)))
}

func TestNewScale_InvalidDomain(t *testing.T) {
	for _, dom := range []Range{{Min: 0, Max: 10}, {Min: -1, Max: 10}, {Min: 0, Max: 0}} {
		_, err := NewScale(dom, DefaultCodomain, Logarithmic)
		assert.True(t, errors.Is(err, ErrInvalidDomain), "domain %v: got %v", dom, err)
	}

	// Linear scales accept non-positive domains.
	_, err := NewScale(Range{Min: -5, Max: 0}, DefaultCodomain, Linear)
	assert.NoError(t, err)
}

func TestNewScale_Degenerate(t *testing.T) {
	_, err := NewScale(Range{Min: 3, Max: 3}, DefaultCodomain, Linear)
	assert.True(t, errors.Is(err, ErrDegenerateRange))

	_, err = NewScale(EmptyRange(), DefaultCodomain, Linear)
	assert.True(t, errors.Is(err, ErrDegenerateRange))

	_, err = NewScale(EmptyRange(), DefaultCodomain, Logarithmic)
	assert.True(t, errors.Is(err, ErrDegenerateRange))

	_, err = NewScale(Range{Min: 0, Max: 1}, Range{Min: 2, Max: 2}, Linear)
	assert.True(t, errors.Is(err, ErrDegenerateRange))
}

func TestScale_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	domains := []Range{
		{Min: 0.001, Max: 1},
		{Min: 1, Max: 1e6},
		{Min: 2.5, Max: 3.75},
		{Min: 10, Max: 20},
	}
	codomains := []Range{DefaultCodomain, {Min: -0.5, Max: 1}, {Min: 1, Max: 20}, {Min: 5, Max: -5}}

	for _, kind := range []ScaleKind{Linear, Logarithmic} {
		for _, dom := range domains {
			for _, cod := range codomains {
				s, err := NewScale(dom, cod, kind)
				require.NoError(t, err)
				for i := 0; i < 200; i++ {
					v := dom.Min + rng.Float64()*dom.Span()
					relClose(t, v, s.Inverse(s.Forward(v)), "%s %v -> %v at %g", kind, dom, cod, v)
				}
				relClose(t, dom.Min, s.Inverse(s.Forward(dom.Min)))
				relClose(t, dom.Max, s.Inverse(s.Forward(dom.Max)))
			}
		}
	}
}

func TestConstantScale(t *testing.T) {
	s := ConstantScale(Range{Min: 4, Max: 4}, Range{Min: 1, Max: 3})
	assert.True(t, s.Constant())
	assert.Equal(t, 2.0, s.Forward(4))
	assert.Equal(t, 2.0, s.Forward(-100))
	assert.Equal(t, 4.0, s.Inverse(2))

	empty := ConstantScale(EmptyRange(), DefaultCodomain)
	assert.Equal(t, 0.0, empty.Forward(1))
	assert.True(t, math.IsNaN(empty.Inverse(0)))
}

func TestParseScaleKind(t *testing.T) {
	tests := map[string]ScaleKind{
		"":            Linear,
		"linear":      Linear,
		"LOG":         Logarithmic,
		"logarithmic": Logarithmic,
	}
	for in, want := range tests {
		got, err := ParseScaleKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseScaleKind("sqrt")
	assert.Error(t, err)
	assert.Equal(t, "log", Logarithmic.String())
}

func TestScales_Get(t *testing.T) {
	s, err := NewScale(Range{Min: 0, Max: 1}, DefaultCodomain, Linear)
	require.NoError(t, err)

	scales := NewScales(map[Role]Scale{RoleX: s})
	got, err := scales.Get(RoleX)
	require.NoError(t, err)
	assert.Equal(t, s.Domain, got.Domain)

	_, err = scales.Get(RoleSize)
	assert.True(t, errors.Is(err, ErrMissingRole))
	assert.False(t, scales.Has(RoleY))
}
