package geom

import "math"

// LineSegment represents a line segment between two points
type LineSegment struct {
	P1, P2 Point
}

// Midpoint returns the point halfway along the segment.
func (s LineSegment) Midpoint() Point {
	return s.P1.Lerp(s.P2, 0.5)
}

// DoSegmentsIntersect checks if two line segments intersect. Segments that
// only share an endpoint are not considered intersecting.
func DoSegmentsIntersect(seg1, seg2 LineSegment) bool {
	p1, p2 := seg1.P1, seg1.P2
	p3, p4 := seg2.P1, seg2.P2

	// Check if the segments are the same or share endpoints
	if (p1 == p3 && p2 == p4) || (p1 == p4 && p2 == p3) {
		return false
	}
	if p1 == p3 || p1 == p4 || p2 == p3 || p2 == p4 {
		return false
	}

	if CrossesProperly(seg1, seg2) {
		return true
	}

	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	// Check for collinear cases
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}

	return false
}

// CrossesProperly reports whether the two segments cross at a single point
// interior to both. Touching at a vertex or overlapping collinearly is not a
// proper crossing.
func CrossesProperly(seg1, seg2 LineSegment) bool {
	d1 := direction(seg2.P1, seg2.P2, seg1.P1)
	d2 := direction(seg2.P1, seg2.P2, seg1.P2)
	d3 := direction(seg1.P1, seg1.P2, seg2.P1)
	d4 := direction(seg1.P1, seg1.P2, seg2.P2)

	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// ClosestPointOnSegment projects p onto seg, clamped to the segment ends.
func ClosestPointOnSegment(p Point, seg LineSegment) Point {
	d := seg.P2.Sub(seg.P1)
	lenSq := d.X*d.X + d.Y*d.Y
	if lenSq == 0 {
		return seg.P1
	}
	t := ((p.X-seg.P1.X)*d.X + (p.Y-seg.P1.Y)*d.Y) / lenSq
	t = math.Max(0, math.Min(1, t))
	return seg.P1.Add(d.Scale(t))
}

// DistanceToSegment returns the shortest distance from p to seg.
func DistanceToSegment(p Point, seg LineSegment) float64 {
	return p.Distance(ClosestPointOnSegment(p, seg))
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 Point) float64 {
	return (p3.X-p1.X)*(p2.Y-p1.Y) - (p2.X-p1.X)*(p3.Y-p1.Y)
}

// onSegment checks if point q lies on segment pr
func onSegment(p, r, q Point) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}
