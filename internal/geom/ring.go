package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// Ring is a closed loop of points. The closing edge from the last point back
// to the first is implicit and the first point is never repeated.
type Ring []Point

// Clone returns a copy of r.
func (r Ring) Clone() Ring {
	if r == nil {
		return nil
	}
	out := make(Ring, len(r))
	copy(out, r)
	return out
}

// Edges returns the ring's edges in order, including the closing edge.
func (r Ring) Edges() []LineSegment {
	n := len(r)
	if n < 2 {
		return nil
	}
	edges := make([]LineSegment, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, LineSegment{P1: r[i], P2: r[(i+1)%n]})
	}
	return edges
}

// Bounds returns the axis-aligned bounding box of the ring.
func (r Ring) Bounds() BBox {
	if len(r) == 0 {
		return BBox{}
	}

	bbox := BBox{MinX: r[0].X, MinY: r[0].Y, MaxX: r[0].X, MaxY: r[0].Y}
	for _, v := range r[1:] {
		bbox.MinX = math.Min(bbox.MinX, v.X)
		bbox.MinY = math.Min(bbox.MinY, v.Y)
		bbox.MaxX = math.Max(bbox.MaxX, v.X)
		bbox.MaxY = math.Max(bbox.MaxY, v.Y)
	}
	return bbox
}

// Orb converts the ring to a closed orb.Ring.
func (r Ring) Orb() orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	for _, p := range r {
		out = append(out, orb.Point{p.X, p.Y})
	}
	if len(r) > 0 {
		out = append(out, orb.Point{r[0].X, r[0].Y})
	}
	return out
}

// RingFromOrb converts an orb.Ring, dropping the repeated closing point.
func RingFromOrb(or orb.Ring) Ring {
	n := len(or)
	if n > 1 && or[0].Equal(or[n-1]) {
		n--
	}
	out := make(Ring, 0, n)
	for _, p := range or[:n] {
		out = append(out, Point{X: p[0], Y: p[1]})
	}
	return out
}

// BBox represents a bounding box
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains checks if bounding box other lies within b
func (b BBox) Contains(other BBox) bool {
	return other.MinX >= b.MinX && other.MaxX <= b.MaxX &&
		other.MinY >= b.MinY && other.MaxY <= b.MaxY
}
