package pathfind

import (
	"log/slog"

	"nav-planner/internal/geom"
	"nav-planner/internal/navmesh"
)

// NoEdge marks a blocked pair, and the diagonal, in a [VisibilityGraph].
const NoEdge = -1.0

// VisibilityGraph is a dense, symmetric weight matrix over a vertex list.
// Weights[i][j] is the Euclidean distance between vertices i and j when the
// segment between them is clear, and [NoEdge] otherwise.
type VisibilityGraph struct {
	Points  []geom.Point
	Weights [][]float64
}

// BuildGraph tests every pair of points for line of sight within region.
func BuildGraph(region *navmesh.Region, points []geom.Point, sight LineOfSight) *VisibilityGraph {
	n := len(points)
	weights := make([][]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}

	edgesAdded := 0
	for i := 0; i < n; i++ {
		weights[i][i] = NoEdge
		for j := i + 1; j < n; j++ {
			if !sight.Clear(region, points[i], points[j]) {
				weights[i][j] = NoEdge
				weights[j][i] = NoEdge
				continue
			}
			d := points[i].Distance(points[j])
			weights[i][j] = d
			weights[j][i] = d
			edgesAdded++
		}
	}

	slog.Debug("visibility graph built", "nodes", n, "pairs", n*(n-1)/2, "edges", edgesAdded)
	return &VisibilityGraph{Points: points, Weights: weights}
}

// Len returns the number of vertices.
func (g *VisibilityGraph) Len() int {
	return len(g.Points)
}

// HasEdge reports whether i and j can see each other.
func (g *VisibilityGraph) HasEdge(i, j int) bool {
	return g.Weights[i][j] != NoEdge
}

// Lines returns every visible pair once, for visualisation.
func (g *VisibilityGraph) Lines() [][2]geom.Point {
	lines := make([][2]geom.Point, 0)
	for i := 0; i < len(g.Points); i++ {
		for j := i + 1; j < len(g.Points); j++ {
			if g.HasEdge(i, j) {
				lines = append(lines, [2]geom.Point{g.Points[i], g.Points[j]})
			}
		}
	}
	return lines
}
