// Package geom holds the planar primitives shared by the navigation mesh and
// the pathfinder: points, rings, segments and the local-to-world transform.
package geom

import "math"

// Point is a 2D position in either local (region) or world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a world-space waypoint. Z carries the caller's height or sorting
// reference and is never used by the planar algorithms.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// XY drops the Z component.
func (v Vec3) XY() Point {
	return Point{X: v.X, Y: v.Y}
}

// WithZ lifts a planar point into world space at height z.
func (p Point) WithZ(z float64) Vec3 {
	return Vec3{X: p.X, Y: p.Y, Z: z}
}

// Add returns p + other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns p - other.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale multiplies both components by s.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Mul multiplies component-wise.
func (p Point) Mul(other Point) Point {
	return Point{X: p.X * other.X, Y: p.Y * other.Y}
}

// Magnitude returns the length of p seen as a vector.
func (p Point) Magnitude() float64 {
	return math.Hypot(p.X, p.Y)
}

// Normalized returns the unit vector in the direction of p, or the zero
// vector when p has no length.
func (p Point) Normalized() Point {
	m := p.Magnitude()
	if m == 0 {
		return Point{}
	}
	return Point{X: p.X / m, Y: p.Y / m}
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Lerp returns the point at fraction t along the way from p to other.
func (p Point) Lerp(other Point, t float64) Point {
	return p.Add(other.Sub(p).Scale(t))
}

// IsZero reports whether p is the origin.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// AlmostEqual checks if two points are equal within tolerance
func (p Point) AlmostEqual(other Point, tolerance float64) bool {
	return math.Abs(p.X-other.X) <= tolerance && math.Abs(p.Y-other.Y) <= tolerance
}
