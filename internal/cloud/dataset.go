package cloud

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/pointplay/internal/ingest"
)

// LoadSpec describes how a table becomes a Dataset.
type LoadSpec struct {
	Name    string
	Mapping Mapping

	// Scales configures x, y, z and size. Missing position axes default to
	// a linear scale onto DefaultCodomain. A missing size entry defaults to
	// a linear scale onto the size column's own range.
	Scales map[Role]ScaleSpec

	ColorPolicy *ColorPolicy
	DefaultSize float64

	// Labels overrides the header names used for each role.
	Labels map[Role]string
}

// Dataset is the immutable result of one load. A reload builds a new one.
type Dataset struct {
	ID       string
	Name     string
	Mapping  Mapping
	Rows     int
	Ranges   Ranges
	Scales   Scales
	Points   []Point
	Timeline Timeline
	Labels   map[Role]string
	Stats    BuildStats
}

// Load runs the whole pipeline over table in one synchronous batch.
//
// InvalidDomain and MissingRole abort the load. Degenerate ranges fall back
// to a constant scale at the codomain midpoint and are logged. An empty
// table yields an empty Dataset without error.
func Load(table ingest.Table, spec LoadSpec) (*Dataset, error) {
	m := spec.Mapping
	for _, role := range AxisRoles {
		if !m.Has(role) {
			return nil, fmt.Errorf("load %q: position axis %s: %w", spec.Name, role, ErrMissingRole)
		}
	}

	ds := &Dataset{
		ID:      uuid.New().String(),
		Name:    spec.Name,
		Mapping: m,
		Rows:    table.Len(),
		Labels:  labelsFor(table, m, spec.Labels),
	}

	if table.Len() == 0 {
		logf("dataset %q has no data rows; nothing to build", spec.Name)
		ds.Ranges = ComputeRanges(nil, m)
		ds.Scales = NewScales(nil)
		ds.Timeline = BuildTimeline(nil)
		return ds, nil
	}

	ds.Ranges = ComputeRanges(table.Rows, m)

	scaled := []Role{RoleX, RoleY, RoleZ}
	if m.Has(RoleSize) {
		scaled = append(scaled, RoleSize)
	}
	byRole := make(map[Role]Scale, len(scaled))
	for _, role := range scaled {
		rng, err := ds.Ranges.Get(role)
		if err != nil {
			return nil, err
		}
		s, err := scaleFor(role, rng, spec.Scales)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", spec.Name, err)
		}
		byRole[role] = s
	}
	ds.Scales = NewScales(byRole)

	points, stats, err := BuildPoints(table.Rows, m, ds.Ranges, ds.Scales, BuildOptions{
		ColorPolicy: spec.ColorPolicy,
		DefaultSize: spec.DefaultSize,
	})
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", spec.Name, err)
	}
	ds.Points = points
	ds.Stats = stats
	ds.Timeline = BuildTimeline(points)

	logf("dataset %q loaded: id=%s rows=%d points=%d frames=%d mapping=%s",
		ds.Name, ds.ID, ds.Rows, len(ds.Points), ds.Timeline.Len(), m)
	return ds, nil
}

// scaleFor builds the scale for one role, substituting a constant scale
// when the observed range has no extent.
func scaleFor(role Role, rng Range, specs map[Role]ScaleSpec) (Scale, error) {
	spec, configured := specs[role]
	if !configured {
		spec = ScaleSpec{Kind: Linear, Codomain: DefaultCodomain}
		if role == RoleSize {
			spec.Codomain = rng
		}
	}

	if configured && spec.Codomain.Degenerate() {
		return Scale{}, fmt.Errorf("codomain for %s %v: %w", role, spec.Codomain, ErrDegenerateRange)
	}

	s, err := NewScale(rng, spec.Codomain, spec.Kind)
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, ErrDegenerateRange):
		logf("%s range %v is degenerate; mapping every value to %g", role, rng, spec.Codomain.Midpoint())
		return ConstantScale(rng, spec.Codomain), nil
	default:
		return Scale{}, fmt.Errorf("%s scale: %w", role, err)
	}
}

func labelsFor(table ingest.Table, m Mapping, overrides map[Role]string) map[Role]string {
	labels := make(map[Role]string)
	for _, role := range Roles {
		if l, ok := overrides[role]; ok {
			labels[role] = l
			continue
		}
		if idx, ok := m.Column(role); ok {
			if l := table.Column(idx); l != "" {
				labels[role] = l
				continue
			}
		}
		labels[role] = role.String()
	}
	return labels
}

// Frame returns the points visible at frame i: the timeline bucket when the
// dataset is time-enabled, otherwise every point.
func (d *Dataset) Frame(i int) []Point {
	if !d.Timeline.Enabled() {
		return d.Points
	}
	return d.Timeline.Frame(i)
}

// Summary describes a Dataset for logs and the catalog.
type Summary struct {
	Rows          int
	Points        int
	Frames        int
	TimeEnabled   bool
	PositionMean  [3]float64
	MeanFrameSize float64
}

// Summary computes counts and means over the built points.
func (d *Dataset) Summary() Summary {
	s := Summary{
		Rows:        d.Rows,
		Points:      len(d.Points),
		Frames:      d.Timeline.Len(),
		TimeEnabled: d.Timeline.Enabled(),
	}
	if len(d.Points) > 0 {
		for axis := range s.PositionMean {
			vs := make([]float64, 0, len(d.Points))
			for _, p := range d.Points {
				vs = append(vs, p.Position[axis])
			}
			s.PositionMean[axis] = stat.Mean(vs, nil)
		}
	}
	if s.Frames > 0 {
		sizes := make([]float64, 0, s.Frames)
		for _, v := range d.Timeline.Values {
			sizes = append(sizes, float64(len(d.Timeline.Buckets[v])))
		}
		s.MeanFrameSize = stat.Mean(sizes, nil)
	}
	return s
}
