package cloud

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePositions(t *testing.T) {
	in := []Point{
		{Position: [3]float64{0, 0, 0}},
		{Position: [3]float64{10, 4, 2}},
		{Position: [3]float64{5, 2, math.NaN()}},
	}
	out := NormalizePositions(in)

	assert.Equal(t, [3]float64{-0.5, -0.2, -0.1}, out[0].Position)
	assert.Equal(t, [3]float64{0.5, 0.2, 0.1}, out[1].Position)
	assert.Equal(t, 0.0, out[2].Position[0])
	assert.True(t, math.IsNaN(out[2].Position[2]))

	assert.Equal(t, [3]float64{10, 4, 2}, in[1].Position, "input must not be modified")
}

func TestNormalizePositions_SinglePoint(t *testing.T) {
	out := NormalizePositions([]Point{{Position: [3]float64{3, 3, 3}}})
	assert.Equal(t, [3]float64{0, 0, 0}, out[0].Position)

	assert.Empty(t, NormalizePositions(nil))
}
