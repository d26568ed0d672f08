package cloud

// Measurement is one source value recovered from a point.
type Measurement struct {
	Role  Role
	Label string
	Value float64
}

// Inspection is what a viewer shows for a picked point.
type Inspection struct {
	Title  string
	Color  [4]float64
	Values []Measurement
}

// Inspect maps a point's position and size back to source values through
// the inverse of each scale.
func (d *Dataset) Inspect(p Point) Inspection {
	in := Inspection{Title: p.Title(), Color: p.Color}
	for i, role := range AxisRoles {
		s, err := d.Scales.Get(role)
		if err != nil {
			continue
		}
		in.Values = append(in.Values, Measurement{
			Role:  role,
			Label: d.Labels[role],
			Value: s.Inverse(p.Position[i]),
		})
	}
	if s, err := d.Scales.Get(RoleSize); err == nil {
		in.Values = append(in.Values, Measurement{
			Role:  RoleSize,
			Label: d.Labels[RoleSize],
			Value: s.Inverse(p.Size),
		})
	}
	return in
}
