package navmesh

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"nav-planner/internal/geom"
)

// minExtent pads degenerate bounding boxes. rtreego rejects rectangles with a
// zero-length side, which every axis-aligned edge would otherwise produce.
const minExtent = 1e-9

// edgeEntry wraps a region edge for R-tree storage
type edgeEntry struct {
	Edge geom.LineSegment
	BBox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *edgeEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// edgeIndex answers "which boundary or hole edges are near here" for the
// circle-overlap and exact line-of-sight queries.
type edgeIndex struct {
	tree  *rtreego.Rtree
	count int
}

// newEdgeIndex builds an index over every edge of the given world-space rings.
func newEdgeIndex(rings []geom.Ring) *edgeIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	count := 0
	for _, ring := range rings {
		for _, edge := range ring.Edges() {
			bbox, err := rectAround(edge.P1, edge.P2, 0)
			if err != nil {
				continue
			}
			tree.Insert(&edgeEntry{Edge: edge, BBox: bbox})
			count++
		}
	}

	return &edgeIndex{tree: tree, count: count}
}

// query returns edges whose bounding boxes intersect the box spanned by a and
// b, grown by margin on every side.
func (idx *edgeIndex) query(a, b geom.Point, margin float64) []geom.LineSegment {
	bbox, err := rectAround(a, b, margin)
	if err != nil {
		return nil
	}

	results := idx.tree.SearchIntersect(bbox)
	edges := make([]geom.LineSegment, 0, len(results))
	for _, item := range results {
		edges = append(edges, item.(*edgeEntry).Edge)
	}
	return edges
}

// within reports whether any edge passes within radius of p.
func (idx *edgeIndex) within(p geom.Point, radius float64) bool {
	for _, edge := range idx.query(p, p, radius) {
		if geom.DistanceToSegment(p, edge) <= radius {
			return true
		}
	}
	return false
}

// rectAround computes the axis-aligned box containing a and b plus margin.
func rectAround(a, b geom.Point, margin float64) (rtreego.Rect, error) {
	minX := math.Min(a.X, b.X) - margin
	minY := math.Min(a.Y, b.Y) - margin
	maxX := math.Max(a.X, b.X) + margin
	maxY := math.Max(a.Y, b.Y) + margin

	return rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{math.Max(maxX-minX, minExtent), math.Max(maxY-minY, minExtent)},
	)
}
