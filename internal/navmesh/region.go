// Package navmesh models the navigable area of a scene as a polygon with
// holes. A [Region] is an immutable snapshot that answers containment and
// proximity queries; a [NavMesh] is the long-lived, mutable owner of the
// current snapshot and of the named static holes that can be toggled at runtime.
package navmesh

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"nav-planner/internal/geom"
)

// ErrInvalidRegion is returned when a boundary or hole has too few points.
var ErrInvalidRegion = errors.New("navmesh: invalid region")

// nearestSamples is the number of evenly spaced samples taken along every
// edge when snapping an off-surface point onto the region.
const nearestSamples = 10

// lineIntersectFraction sets the probe radius used by [Region.LineIntersect]
// as a fraction of the probed segment's length.
const lineIntersectFraction = 0.02

// Region is a polygon with holes. Path 0 is the outer boundary and every
// further path is a hole. Paths are stored in local coordinates and mapped to
// world space through the region's transform.
type Region struct {
	paths     []geom.Ring
	transform geom.Transform

	world   []geom.Ring
	polygon orb.Polygon
	edges   *edgeIndex
}

// NewRegion builds a region from a local boundary, its holes and a world
// transform. The boundary needs at least three points, holes at least two.
func NewRegion(boundary geom.Ring, holes []geom.Ring, transform geom.Transform) (*Region, error) {
	if len(boundary) < 3 {
		return nil, fmt.Errorf("%w: boundary has %d points, need at least 3", ErrInvalidRegion, len(boundary))
	}
	for i, h := range holes {
		if len(h) < 2 {
			return nil, fmt.Errorf("%w: hole %d has %d points, need at least 2", ErrInvalidRegion, i, len(h))
		}
	}

	paths := make([]geom.Ring, 0, len(holes)+1)
	paths = append(paths, boundary.Clone())
	for _, h := range holes {
		paths = append(paths, h.Clone())
	}

	r := &Region{paths: paths, transform: transform}
	r.index()
	return r, nil
}

// index derives the world-space rings, the orb polygon and the edge index.
func (r *Region) index() {
	r.world = make([]geom.Ring, len(r.paths))
	r.polygon = make(orb.Polygon, len(r.paths))
	for i, p := range r.paths {
		w := r.transform.ApplyRing(p)
		r.world[i] = w
		r.polygon[i] = w.Orb()
	}
	r.edges = newEdgeIndex(r.world)
}

// WithHoles returns a new region with the given local-space holes appended
// after the existing ones. r itself is not modified.
func (r *Region) WithHoles(holes ...geom.Ring) (*Region, error) {
	current := r.Holes()
	return NewRegion(r.paths[0], append(current, holes...), r.transform)
}

// Transform returns the region's local-to-world transform.
func (r *Region) Transform() geom.Transform {
	return r.transform
}

// Holes returns copies of every hole in local coordinates.
func (r *Region) Holes() []geom.Ring {
	holes := make([]geom.Ring, 0, len(r.paths)-1)
	for _, h := range r.paths[1:] {
		holes = append(holes, h.Clone())
	}
	return holes
}

// HoleCount returns the number of holes, static and dynamic.
func (r *Region) HoleCount() int {
	return len(r.paths) - 1
}

// Vertices returns every boundary and hole vertex in world space, boundary
// first and then each hole in order.
func (r *Region) Vertices() []geom.Point {
	n := 0
	for _, w := range r.world {
		n += len(w)
	}
	out := make([]geom.Point, 0, n)
	for _, w := range r.world {
		out = append(out, w...)
	}
	return out
}

// Contains reports whether the world point p lies inside the boundary and
// outside every hole. Points on the outer boundary count as inside.
func (r *Region) Contains(p geom.Point) bool {
	return planar.PolygonContains(r.polygon, orb.Point{p.X, p.Y})
}

// OverlapsCircle reports whether a circle of the given radius around p
// touches the navigable surface: either p is inside or an edge passes within
// radius of it.
func (r *Region) OverlapsCircle(p geom.Point, radius float64) bool {
	if r.Contains(p) {
		return true
	}
	return r.edges.within(p, radius)
}

// OnSurface reports whether p is on the navigable surface or within
// tolerance of it.
func (r *Region) OnSurface(p geom.Point, tolerance float64) bool {
	return r.OverlapsCircle(p, tolerance)
}

// OnBoundary reports whether p lies within tolerance of any edge.
func (r *Region) OnBoundary(p geom.Point, tolerance float64) bool {
	return r.edges.within(p, tolerance)
}

// EdgesNear returns the world-space edges whose bounding boxes meet the box
// spanned by a and b grown by margin.
func (r *Region) EdgesNear(a, b geom.Point, margin float64) []geom.LineSegment {
	return r.edges.query(a, b, margin)
}

// NearestPoint snaps p onto the region. If p is already on the surface
// (within tolerance) it is returned unchanged; otherwise every edge is sampled
// at fixed fractions and the closest sample wins, earlier samples winning ties.
func (r *Region) NearestPoint(p geom.Point, tolerance float64) geom.Point {
	if r.OnSurface(p, tolerance) {
		return p
	}

	minDistance := -1.0
	nearest := p
	for _, path := range r.world {
		for _, edge := range path.Edges() {
			dir := edge.P2.Sub(edge.P1)
			for k := 0; k < nearestSamples; k++ {
				sample := edge.P1.Add(dir.Scale(float64(k) / nearestSamples))
				d := p.Distance(sample)
				if d < minDistance || minDistance < 0 {
					minDistance = d
					nearest = sample
				}
			}
		}
	}
	return nearest
}

// LineIntersect walks from from, which is expected to lie off the surface,
// towards to and returns the first sample that is clearly back on the
// surface. The probe radius is a fixed fraction of the segment length and
// samples are one diameter apart; the second overlapping sample is returned
// so that a single grazing contact does not count. ok is false when the walk
// never gets there.
func (r *Region) LineIntersect(from, to geom.Point) (geom.Point, bool) {
	delta := to.Sub(from)
	magnitude := delta.Magnitude()
	if magnitude == 0 {
		return geom.Point{}, false
	}

	dir := delta.Normalized()
	radius := magnitude * lineIntersectFraction
	step := radius * 2

	numInside := 0
	for k := 0; float64(k)*step < magnitude; k++ {
		sample := from.Add(dir.Scale(float64(k) * step))
		if r.OverlapsCircle(sample, radius) {
			numInside++
		}
		if numInside == 2 {
			return sample, true
		}
	}
	return geom.Point{}, false
}
