package obstacle

import (
	"log/slog"

	"nav-planner/internal/geom"
	"nav-planner/internal/navmesh"
)

// HoleSink receives query-scoped holes. [navmesh.Session] implements it.
type HoleSink interface {
	Region() *navmesh.Region
	InsertHoles(holes ...geom.Ring) error
	ResetHoles()
	Changed() bool
}

// InsertAgentHoles adds one diamond-shaped hole for every idle agent with a
// circular footprint that stands inside the region, skipping the agent with
// ID exclude. Diamond corners outside the region are pulled back onto it
// along the line to the agent's centre; agents left with fewer than two
// usable corners are ignored. It reports whether any hole was added.
func InsertAgentHoles(sink HoleSink, agents Source, exclude string) bool {
	if sink == nil || agents == nil {
		return false
	}

	region := sink.Region()
	var holes []geom.Ring

	for _, a := range agents.Agents() {
		if exclude != "" && a.ID() == exclude {
			continue
		}
		if a.State() != StateIdle {
			continue
		}
		if !region.Contains(a.Position()) {
			continue
		}

		hole, ok := footprintHole(region, a)
		if !ok {
			slog.Debug("agent footprint too small to form a hole", "agent", a.ID())
			continue
		}
		holes = append(holes, hole)
	}

	if len(holes) == 0 {
		return false
	}
	if err := sink.InsertHoles(holes...); err != nil {
		slog.Warn("could not insert agent holes", "holes", len(holes), "err", err)
		return false
	}
	return true
}

// RemoveAgentHoles undoes [InsertAgentHoles]. It is a no-op when the sink
// holds no inserted holes.
func RemoveAgentHoles(sink HoleSink) {
	if sink.Changed() {
		sink.ResetHoles()
	}
}

// footprintHole computes the agent's hole in region-local coordinates.
func footprintHole(region *navmesh.Region, a Agent) (geom.Ring, bool) {
	fp, ok := a.Footprint()
	if !ok {
		return nil, false
	}

	centre, corners := Diamond(a.Position(), a.Scale(), fp)
	toLocal := region.Transform()

	hole := make(geom.Ring, 0, len(corners))
	for _, c := range corners {
		// Only add a point if it is on the NavMesh
		if region.Contains(c) {
			hole = append(hole, toLocal.Invert(c))
			continue
		}
		if alt, ok := region.LineIntersect(c, centre); ok {
			hole = append(hole, toLocal.Invert(alt))
		}
	}

	if len(hole) < 2 {
		return nil, false
	}
	return hole, true
}

// Diamond returns the world-space centre of a footprint and its four
// corners, in the order up, right, down, left.
func Diamond(position, scale geom.Point, fp Footprint) (geom.Point, [4]geom.Point) {
	centre := position.Add(fp.Offset.Mul(scale))
	radius := fp.Radius * scale.X

	return centre, [4]geom.Point{
		centre.Add(geom.Point{Y: radius}),
		centre.Add(geom.Point{X: radius}),
		centre.Sub(geom.Point{Y: radius}),
		centre.Sub(geom.Point{X: radius}),
	}
}
