package cloud

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// NormalizePositions centres points on their bounding-box midpoint and
// divides every axis by the largest extent, so the cloud fits a unit cube
// with its proportions kept. Non-finite coordinates are ignored when
// measuring the box. The input is not modified.
func NormalizePositions(points []Point) []Point {
	out := make([]Point, len(points))
	copy(out, points)
	if len(points) == 0 {
		return out
	}

	var mid [3]float64
	extent := 0.0
	for axis := 0; axis < 3; axis++ {
		vs := make([]float64, 0, len(points))
		for _, p := range points {
			if v := p.Position[axis]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				vs = append(vs, v)
			}
		}
		if len(vs) == 0 {
			continue
		}
		lo, hi := floats.Min(vs), floats.Max(vs)
		mid[axis] = (lo + hi) / 2
		extent = math.Max(extent, hi-lo)
	}

	scale := extent
	if scale == 0 {
		scale = 1
	}
	for i := range out {
		for axis := 0; axis < 3; axis++ {
			out[i].Position[axis] = (out[i].Position[axis] - mid[axis]) / scale
		}
	}
	return out
}
