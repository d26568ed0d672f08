package cloud

import "math"

// DefaultPointSize is the size given to points when no size role is mapped.
const DefaultPointSize = 0.02

// TitleLength is the number of characters of Info shown as a point title.
const TitleLength = 10

// Point is one row rendered into 3-D space. Points are values; no stage
// mutates a point once BuildPoints has produced it.
type Point struct {
	// Row is the 0-based index of the source data row (header excluded).
	Row int

	Position [3]float64

	// Color is red, green, blue and a fourth channel carrying Size.
	Color [4]float64

	Size float64

	// Time is nil when no time role is mapped. It holds NaN when the cell
	// could not be parsed.
	Time *float64

	// Info is nil when no info role is mapped.
	Info *string
}

// HasTime reports whether p carries a usable time tag.
func (p Point) HasTime() bool {
	return p.Time != nil && !math.IsNaN(*p.Time)
}

// TimeValue returns the time tag, or NaN when absent.
func (p Point) TimeValue() float64 {
	if p.Time == nil {
		return math.NaN()
	}
	return *p.Time
}

// Title returns Info cut to TitleLength characters for display. The stored
// Info is never truncated.
func (p Point) Title() string {
	if p.Info == nil {
		return ""
	}
	r := []rune(*p.Info)
	if len(r) > TitleLength {
		r = r[:TitleLength]
	}
	return string(r)
}
