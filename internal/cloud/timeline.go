package cloud

import "sort"

// Timeline groups points by their time tag.
type Timeline struct {
	// Values are the distinct time tags in ascending order.
	Values []float64

	// Buckets holds, for each value, the points tagged with it in input order.
	Buckets map[float64][]Point
}

// BuildTimeline partitions points by time tag. Points without a usable tag
// (unmapped or NaN) are left out. When no point has a tag the timeline is
// empty and Enabled reports false.
func BuildTimeline(points []Point) Timeline {
	tl := Timeline{Buckets: make(map[float64][]Point)}
	for _, p := range points {
		if !p.HasTime() {
			continue
		}
		t := p.TimeValue()
		if _, seen := tl.Buckets[t]; !seen {
			tl.Values = append(tl.Values, t)
		}
		tl.Buckets[t] = append(tl.Buckets[t], p)
	}
	sort.Float64s(tl.Values)
	return tl
}

// Enabled reports whether time-based playback is possible.
func (tl Timeline) Enabled() bool {
	return len(tl.Values) > 0
}

// Len returns the number of frames.
func (tl Timeline) Len() int {
	return len(tl.Values)
}

// Value returns the time tag of frame i.
func (tl Timeline) Value(i int) (float64, bool) {
	if i < 0 || i >= len(tl.Values) {
		return 0, false
	}
	return tl.Values[i], true
}

// Frame returns the points of frame i, or nil when i is out of range.
func (tl Timeline) Frame(i int) []Point {
	v, ok := tl.Value(i)
	if !ok {
		return nil
	}
	return tl.Buckets[v]
}

// IndexOf returns the frame index holding time tag v.
func (tl Timeline) IndexOf(v float64) (int, bool) {
	i := sort.SearchFloat64s(tl.Values, v)
	if i < len(tl.Values) && tl.Values[i] == v {
		return i, true
	}
	return 0, false
}

// PointCount returns the number of bucketed points.
func (tl Timeline) PointCount() int {
	n := 0
	for _, b := range tl.Buckets {
		n += len(b)
	}
	return n
}
