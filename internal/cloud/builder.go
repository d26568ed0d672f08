package cloud

import (
	"fmt"
	"math"

	"github.com/banshee-data/pointplay/internal/monitoring"
)

var logf = monitoring.Tagged("cloud")

// DefaultColorThreshold is the blue-channel maximum above which colour
// columns are taken to be 0-255 values already.
const DefaultColorThreshold = 2.0

// ColorPolicy decides whether mapped colour channels need scaling to 0-255.
type ColorPolicy struct {
	// Threshold is compared against the observed maximum of the blue
	// channel. Above it, channels pass through unscaled; otherwise they are
	// multiplied by 255.
	Threshold float64
}

// DefaultColorPolicy returns the policy with DefaultColorThreshold.
func DefaultColorPolicy() ColorPolicy {
	return ColorPolicy{Threshold: DefaultColorThreshold}
}

// Multiplier returns the factor applied to colour channels given the
// blue channel's observed maximum.
func (p ColorPolicy) Multiplier(blueMax float64) float64 {
	if blueMax > p.Threshold {
		return 1.0
	}
	return 255
}

// FallbackColor is the synthetic colour used when red, green and blue are
// not all mapped. It depends only on the row's raw z value.
func FallbackColor(z float64) [3]float64 {
	return [3]float64{40, z*128 + 128, 160}
}

// BuildOptions tunes BuildPoints.
type BuildOptions struct {
	// ColorPolicy defaults to DefaultColorPolicy when nil.
	ColorPolicy *ColorPolicy

	// DefaultSize is used when no size role is mapped. Zero means
	// DefaultPointSize.
	DefaultSize float64
}

func (o BuildOptions) colorPolicy() ColorPolicy {
	if o.ColorPolicy == nil {
		return DefaultColorPolicy()
	}
	return *o.ColorPolicy
}

func (o BuildOptions) defaultSize() float64 {
	if o.DefaultSize > 0 {
		return o.DefaultSize
	}
	return DefaultPointSize
}

// BuildStats counts per-row problems seen by BuildPoints.
type BuildStats struct {
	// TimeCoercionFailures counts rows whose time cell was not numeric.
	// Those points are kept but never bucketed.
	TimeCoercionFailures int

	// PositionCoercionFailures counts rows with a non-numeric or missing
	// position cell. Those points carry NaN on the affected axis.
	PositionCoercionFailures int

	// SizeCoercionFailures counts rows whose size cell was not numeric.
	// Those points get the default size.
	SizeCoercionFailures int
}

// BuildPoints produces one point per data row. rows must not include the
// header. Scales for x, y and z are required; a scale for size is used when
// the size role is mapped. The blue range feeds the colour policy when all
// colour roles are mapped.
func BuildPoints(rows [][]string, m Mapping, ranges Ranges, scales Scales, opts BuildOptions) ([]Point, BuildStats, error) {
	var stats BuildStats

	var axes [3]Scale
	for i, role := range AxisRoles {
		if !m.Has(role) {
			return nil, stats, fmt.Errorf("position axis %s: %w", role, ErrMissingRole)
		}
		s, err := scales.Get(role)
		if err != nil {
			return nil, stats, err
		}
		axes[i] = s
	}

	var sizeScale Scale
	hasSize := m.Has(RoleSize)
	if hasSize {
		s, err := scales.Get(RoleSize)
		if err != nil {
			return nil, stats, err
		}
		sizeScale = s
	}

	colorMul := 255.0
	if m.Has(RoleRed) && m.Has(RoleGreen) && m.Has(RoleBlue) {
		blue, err := ranges.Get(RoleBlue)
		if err != nil {
			return nil, stats, err
		}
		colorMul = opts.colorPolicy().Multiplier(blue.Max)
	}

	defaultSize := opts.defaultSize()
	points := make([]Point, 0, len(rows))

	for idx, row := range rows {
		p := Point{Row: idx}

		positionFailed := false
		for i, role := range AxisRoles {
			v := math.NaN()
			if cell, ok := m.Cell(row, role); ok {
				if parsed, err := ParseNumber(cell); err == nil {
					v = parsed
				}
			}
			if math.IsNaN(v) {
				positionFailed = true
			}
			p.Position[i] = axes[i].Forward(v)
		}
		if positionFailed {
			stats.PositionCoercionFailures++
		}

		rgb, ok := rowColor(row, m, colorMul)
		if !ok {
			z := 0.0
			if cell, ok := m.Cell(row, RoleZ); ok {
				if parsed, err := ParseNumber(cell); err == nil {
					z = parsed
				}
			}
			rgb = FallbackColor(z)
		}

		p.Size = defaultSize
		if hasSize {
			if cell, ok := m.Cell(row, RoleSize); ok {
				if v, err := ParseNumber(cell); err == nil {
					p.Size = sizeScale.Forward(v)
				} else {
					stats.SizeCoercionFailures++
				}
			}
		}
		p.Color = [4]float64{rgb[0], rgb[1], rgb[2], p.Size}

		if cell, ok := m.Cell(row, RoleInfo); ok {
			info := cell
			p.Info = &info
		}

		if m.Has(RoleTime) {
			t := math.NaN()
			if cell, ok := m.Cell(row, RoleTime); ok {
				if v, err := ParseNumber(cell); err == nil {
					t = v
				}
			}
			if math.IsNaN(t) {
				stats.TimeCoercionFailures++
			}
			p.Time = &t
		}

		points = append(points, p)
	}

	if stats.TimeCoercionFailures > 0 {
		logf("%d rows have a non-numeric time cell; kept for display, excluded from the timeline", stats.TimeCoercionFailures)
	}
	if stats.PositionCoercionFailures > 0 {
		logf("%d rows have a non-numeric position cell", stats.PositionCoercionFailures)
	}
	if stats.SizeCoercionFailures > 0 {
		logf("%d rows have a non-numeric size cell; using default size %g", stats.SizeCoercionFailures, defaultSize)
	}

	return points, stats, nil
}

// rowColor returns the mapped colour of a row. ok is false when any of the
// colour roles is unbound or beyond the end of the row.
func rowColor(row []string, m Mapping, mul float64) ([3]float64, bool) {
	var rgb [3]float64
	for i, role := range [3]Role{RoleRed, RoleGreen, RoleBlue} {
		cell, ok := m.Cell(row, role)
		if !ok {
			return rgb, false
		}
		v, err := ParseNumber(cell)
		if err != nil {
			v = math.NaN()
		}
		rgb[i] = v * mul
	}
	return rgb, true
}
