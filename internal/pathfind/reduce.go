package pathfind

import "nav-planner/internal/geom"

// coincident is the distance under which two points count as the same spot.
const coincident = 1e-9

// ToWorldWaypoints turns a source-to-destination index path into world
// waypoints at the height of start. The source vertex is never emitted. The
// first waypoint is dropped when it coincides with the raw start point or the
// snapped origin, unless it is also the last one, so the result always ends
// at the destination vertex.
func ToWorldWaypoints(path []int, points []geom.Point, start geom.Vec3, origin geom.Point) []geom.Vec3 {
	if len(path) < 2 {
		return nil
	}

	waypoints := make([]geom.Vec3, 0, len(path)-1)
	for _, idx := range path[1:] {
		waypoints = append(waypoints, points[idx].WithZ(start.Z))
	}

	first := waypoints[0].XY()
	if len(waypoints) > 1 && (first.AlmostEqual(start.XY(), coincident) || first.AlmostEqual(origin, coincident)) {
		waypoints = waypoints[1:]
	}
	return waypoints
}

// PathLength sums the planar leg lengths from start through every waypoint.
func PathLength(start geom.Vec3, waypoints []geom.Vec3) float64 {
	total := 0.0
	prev := start.XY()
	for _, w := range waypoints {
		total += prev.Distance(w.XY())
		prev = w.XY()
	}
	return total
}
