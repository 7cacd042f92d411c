// Package pathfind plans routes across a [navmesh.NavMesh]. It builds a
// visibility graph over the region's vertices and the two endpoints, runs
// Dijkstra over it and reduces the result to world-space waypoints. Idle
// agents are carved out of the region for the duration of each query.
package pathfind

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nav-planner/internal/geom"
	"nav-planner/internal/navmesh"
	"nav-planner/internal/obstacle"
	"nav-planner/internal/observe"
)

// Defaults used by [New] when no option overrides them.
const (
	DefaultSurfaceTolerance = 0.005
	DefaultMaxNodes         = 1000
)

// Result describes how a query was answered.
type Result struct {
	Waypoints []geom.Vec3
	Outcome   string
	Nodes     int
	Holes     int
}

// Pathfinder answers route queries for one mesh.
type Pathfinder struct {
	mesh             *navmesh.NavMesh
	agents           obstacle.Source
	sight            LineOfSight
	surfaceTolerance float64
	maxNodes         int
	metrics          *observe.Metrics
}

// Option configures a [Pathfinder].
type Option func(*Pathfinder)

// WithSight sets the line-of-sight test. Default is [SampledSight].
func WithSight(s LineOfSight) Option {
	return func(p *Pathfinder) {
		if s != nil {
			p.sight = s
		}
	}
}

// WithSurfaceTolerance sets how far off the surface an endpoint may lie
// before it is snapped onto the region.
func WithSurfaceTolerance(tol float64) Option {
	return func(p *Pathfinder) {
		if tol > 0 {
			p.surfaceTolerance = tol
		}
	}
}

// WithMaxNodes caps the number of graph vertices.
func WithMaxNodes(n int) Option {
	return func(p *Pathfinder) {
		if n > 0 {
			p.maxNodes = n
		}
	}
}

// WithMetrics records query metrics into m.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pathfinder) {
		p.metrics = m
	}
}

// New returns a pathfinder for mesh. agents may be nil when there are no
// dynamic obstacles.
func New(mesh *navmesh.NavMesh, agents obstacle.Source, opts ...Option) *Pathfinder {
	p := &Pathfinder{
		mesh:             mesh,
		agents:           agents,
		sight:            SampledSight{Radius: DefaultSightRadius},
		surfaceTolerance: DefaultSurfaceTolerance,
		maxNodes:         DefaultMaxNodes,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// GetPointsArray returns the waypoints from origin to destination for the
// agent requester, which is never treated as an obstacle to itself. The
// result never contains the start point and always ends at the destination
// or its nearest point on the surface. On failure the single destination is
// returned.
func (p *Pathfinder) GetPointsArray(ctx context.Context, origin, destination geom.Vec3, requester string) []geom.Vec3 {
	return p.Plan(ctx, origin, destination, requester).Waypoints
}

// Plan is [Pathfinder.GetPointsArray] with the outcome details attached.
func (p *Pathfinder) Plan(ctx context.Context, origin, destination geom.Vec3, requester string) Result {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "pathfind.plan",
		trace.WithAttributes(
			attribute.String("mesh", p.mesh.Name()),
			attribute.String("agent", requester),
		),
	)
	defer span.End()

	res := p.plan(ctx, origin, destination, requester)

	span.SetAttributes(
		attribute.String("outcome", res.Outcome),
		attribute.Int("nodes", res.Nodes),
		attribute.Int("waypoints", len(res.Waypoints)),
	)
	p.metrics.RecordQuery(ctx, p.mesh.Name(), res.Outcome, time.Since(start), res.Nodes, res.Holes)
	return res
}

func (p *Pathfinder) plan(ctx context.Context, origin, destination geom.Vec3, requester string) Result {
	log := observe.Logger(ctx)
	fallback := []geom.Vec3{destination}

	session := p.mesh.Begin()
	defer session.End()

	before := session.Region().HoleCount()
	obstacle.InsertAgentHoles(session, p.agents, requester)
	defer obstacle.RemoveAgentHoles(session)

	region := session.Region()
	res := Result{Holes: region.HoleCount() - before}

	from, to := origin.XY(), destination.XY()
	if p.sight.Clear(region, from, to) {
		res.Outcome = observe.OutcomeDirect
		res.Waypoints = fallback
		return res
	}

	snappedFrom := region.NearestPoint(from, p.surfaceTolerance)
	snappedTo := region.NearestPoint(to, p.surfaceTolerance)

	points := graphPoints(region, snappedFrom, snappedTo)
	res.Nodes = len(points)
	if len(points) > p.maxNodes {
		log.Warn("too many graph nodes, falling back to direct path",
			"mesh", p.mesh.Name(), "nodes", len(points), "max_nodes", p.maxNodes)
		res.Outcome = observe.OutcomeNodeCap
		res.Waypoints = fallback
		return res
	}

	graph := BuildGraph(region, points, p.sight)
	path, err := ShortestPath(graph, 0, 1)
	if err != nil {
		log.Warn("pathfinding error", "mesh", p.mesh.Name(), "agent", requester, "err", err)
		res.Outcome = observe.OutcomeNoPath
		res.Waypoints = fallback
		return res
	}

	res.Outcome = observe.OutcomeGraph
	res.Waypoints = ToWorldWaypoints(path, points, origin, snappedFrom)
	log.Debug("path found", "mesh", p.mesh.Name(), "nodes", len(points), "waypoints", len(res.Waypoints))
	return res
}

// graphPoints lists the snapped origin at index 0, the snapped destination at
// index 1 and then every region vertex that is neither of the two.
func graphPoints(region *navmesh.Region, origin, destination geom.Point) []geom.Point {
	vertices := region.Vertices()
	points := make([]geom.Point, 0, len(vertices)+2)
	points = append(points, origin, destination)
	for _, v := range vertices {
		if v.AlmostEqual(origin, coincident) || v.AlmostEqual(destination, coincident) {
			continue
		}
		points = append(points, v)
	}
	return points
}

// StaticGraph builds the visibility graph over the vertices of the mesh's
// current static region, without endpoints or agent holes.
func (p *Pathfinder) StaticGraph() *VisibilityGraph {
	region := p.mesh.Snapshot()
	return BuildGraph(region, region.Vertices(), p.sight)
}
