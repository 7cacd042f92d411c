package geom

// Transform maps region-local coordinates to world space: world = Position +
// Scale*local. A zero Scale component is treated as 1 so the zero Transform is
// the identity.
type Transform struct {
	Position Point `json:"position"`
	Scale    Point `json:"scale"`
}

func (t Transform) scale() Point {
	s := t.Scale
	if s.X == 0 {
		s.X = 1
	}
	if s.Y == 0 {
		s.Y = 1
	}
	return s
}

// Apply transforms a local point into world space.
func (t Transform) Apply(local Point) Point {
	return t.Position.Add(local.Mul(t.scale()))
}

// Invert transforms a world point into local space.
func (t Transform) Invert(world Point) Point {
	s := t.scale()
	d := world.Sub(t.Position)
	return Point{X: d.X / s.X, Y: d.Y / s.Y}
}

// ApplyRing transforms every point of a local ring into world space.
func (t Transform) ApplyRing(r Ring) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = t.Apply(p)
	}
	return out
}
