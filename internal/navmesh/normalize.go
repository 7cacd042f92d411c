package navmesh

import (
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	"nav-planner/internal/geom"
)

// normalize prepares loaded rings before a mesh is built. With a positive
// epsilon every ring is simplified with Douglas-Peucker. Permanent holes that
// sit entirely inside another permanent hole add nothing and are removed, as
// are holes lying completely outside the boundary.
func normalize(boundary geom.Ring, holes []Hole, epsilon float64) (geom.Ring, []Hole) {
	if epsilon > 0 {
		boundary = simplifyRing(boundary, epsilon)
		for i := range holes {
			holes[i].Ring = simplifyRing(holes[i].Ring, epsilon)
		}
	}

	outer := boundary.Orb()
	result := make([]Hole, 0, len(holes))
	contained := make([]bool, len(holes))

	for i := range holes {
		if !anyVertexInside(holes[i].Ring, outer) {
			slog.Warn("dropping hole outside the navmesh boundary", "hole", holes[i].Name, "vertices", len(holes[i].Ring))
			contained[i] = true
		}
	}

	// Check each permanent hole against all others
	for i := range holes {
		if contained[i] || holes[i].Name != "" {
			continue
		}
		for j := range holes {
			if i == j || contained[j] || holes[j].Name != "" {
				continue
			}
			if isRingContainedIn(holes[i].Ring, holes[j].Ring) {
				contained[i] = true
				break
			}
		}
	}

	for i := range holes {
		if !contained[i] {
			result = append(result, holes[i])
		}
	}
	if removed := len(holes) - len(result); removed > 0 {
		slog.Debug("holes after normalisation", "kept", len(result), "removed", removed)
	}
	return boundary, result
}

// simplifyRing reduces ring complexity, keeping the original when
// simplification would leave fewer than three points.
func simplifyRing(r geom.Ring, epsilon float64) geom.Ring {
	if len(r) <= 3 {
		return r
	}
	simplified := geom.RingFromOrb(simplify.DouglasPeucker(epsilon).Ring(r.Orb()))
	if len(simplified) < 3 {
		return r
	}
	return simplified
}

// isRingContainedIn checks if ring a is fully contained within ring b
func isRingContainedIn(a, b geom.Ring) bool {
	if len(a) == 0 || len(b) < 3 {
		return false
	}

	// Quick bounding box check first
	if !b.Bounds().Contains(a.Bounds()) {
		return false
	}

	ob := b.Orb()
	for _, v := range a {
		if !planar.RingContains(ob, orb.Point{v.X, v.Y}) {
			return false
		}
	}

	// Vertices inside a concave ring can still have edges leaving it.
	for _, ea := range a.Edges() {
		for _, eb := range b.Edges() {
			if geom.DoSegmentsIntersect(ea, eb) {
				return false
			}
		}
	}
	return true
}

func anyVertexInside(r geom.Ring, outer orb.Ring) bool {
	for _, v := range r {
		if planar.RingContains(outer, orb.Point{v.X, v.Y}) {
			return true
		}
	}
	return false
}
