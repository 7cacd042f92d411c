package pathfind

import (
	"sort"

	"nav-planner/internal/geom"
	"nav-planner/internal/navmesh"
)

// DefaultSightRadius is the probe radius of [SampledSight], in world units.
const DefaultSightRadius = 0.02

// LineOfSight decides whether the straight segment between two world points
// stays on the navigable surface of a region.
type LineOfSight interface {
	Clear(region *navmesh.Region, a, b geom.Point) bool
}

// SampledSight marches along the segment one probe diameter at a time and
// requires a small circle around every sample to overlap the surface. It
// accepts some slop near edges thinner than the probe and can miss holes
// narrower than the step.
type SampledSight struct {
	Radius float64
}

// Clear implements [LineOfSight].
func (s SampledSight) Clear(region *navmesh.Region, a, b geom.Point) bool {
	radius := s.Radius
	if radius <= 0 {
		radius = DefaultSightRadius
	}

	delta := b.Sub(a)
	magnitude := delta.Magnitude()
	dir := delta.Normalized()
	step := radius * 2

	for k := 0; float64(k)*step < magnitude; k++ {
		sample := a.Add(dir.Scale(float64(k) * step))
		if !region.OverlapsCircle(sample, radius) {
			return false
		}
	}
	return true
}

// ExactSight tests the segment against the region's edges. A segment is
// clear when it crosses no edge and every stretch between the points where it
// touches the boundary runs inside the region or along an edge. Tolerance
// absorbs floating point noise when classifying touches.
type ExactSight struct {
	Tolerance float64
}

const defaultExactTolerance = 1e-9

// Clear implements [LineOfSight].
func (s ExactSight) Clear(region *navmesh.Region, a, b geom.Point) bool {
	tol := s.Tolerance
	if tol <= 0 {
		tol = defaultExactTolerance
	}
	if a == b {
		return region.OnSurface(a, tol)
	}

	seg := geom.LineSegment{P1: a, P2: b}
	cuts := []float64{0, 1}

	for _, edge := range region.EdgesNear(a, b, tol) {
		if geom.CrossesProperly(seg, edge) {
			return false
		}
		for _, v := range []geom.Point{edge.P1, edge.P2} {
			if geom.DistanceToSegment(v, seg) <= tol {
				cuts = append(cuts, projection(seg, v))
			}
		}
	}

	sort.Float64s(cuts)
	for i := 1; i < len(cuts); i++ {
		if cuts[i]-cuts[i-1] <= tol {
			continue
		}
		stretch := geom.LineSegment{P1: a.Lerp(b, cuts[i-1]), P2: a.Lerp(b, cuts[i])}
		mid := stretch.Midpoint()
		if !region.Contains(mid) && !region.OnBoundary(mid, tol) {
			return false
		}
	}
	return true
}

// projection returns the clamped parameter of p projected onto seg.
func projection(seg geom.LineSegment, p geom.Point) float64 {
	d := seg.P2.Sub(seg.P1)
	lenSq := d.X*d.X + d.Y*d.Y
	if lenSq == 0 {
		return 0
	}
	t := ((p.X-seg.P1.X)*d.X + (p.Y-seg.P1.Y)*d.Y) / lenSq
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
