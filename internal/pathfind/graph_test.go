package pathfind

import (
	"testing"

	"nav-planner/internal/geom"
	"nav-planner/internal/navmesh"
)

func squareRing(size float64) geom.Ring {
	return geom.Ring{{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size}}
}

// lRing is an L-shaped room whose inner corner sits at (2, 2).
func lRing() geom.Ring {
	return geom.Ring{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 4}, {X: 0, Y: 4}}
}

func mustRegion(t *testing.T, boundary geom.Ring, holes ...geom.Ring) *navmesh.Region {
	t.Helper()
	r, err := navmesh.NewRegion(boundary, holes, geom.Transform{})
	if err != nil {
		t.Fatalf("NewRegion: %v", err)
	}
	return r
}

func TestSight(t *testing.T) {
	t.Parallel()
	region := mustRegion(t, lRing())

	tests := []struct {
		name string
		a, b geom.Point
		want bool
	}{
		{"inside lower arm", geom.Point{X: 0.5, Y: 0.5}, geom.Point{X: 3.5, Y: 1.5}, true},
		{"across the notch", geom.Point{X: 3.5, Y: 1.5}, geom.Point{X: 1.5, Y: 3.5}, false},
		{"through the inner corner", geom.Point{X: 3, Y: 1}, geom.Point{X: 1, Y: 3}, true},
		{"along a boundary edge", geom.Point{X: 0, Y: 0}, geom.Point{X: 4, Y: 0}, true},
		{"vertex to vertex outside", geom.Point{X: 4, Y: 2}, geom.Point{X: 2, Y: 4}, false},
		{"starts outside", geom.Point{X: 6, Y: 1}, geom.Point{X: 3, Y: 1}, false},
	}

	sights := map[string]LineOfSight{
		"sampled": SampledSight{Radius: DefaultSightRadius},
		"exact":   ExactSight{},
	}
	for sightName, sight := range sights {
		for _, tt := range tests {
			t.Run(sightName+"/"+tt.name, func(t *testing.T) {
				if got := sight.Clear(region, tt.a, tt.b); got != tt.want {
					t.Errorf("Clear(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
				}
			})
		}
	}
}

func TestSight_ThinHole(t *testing.T) {
	t.Parallel()
	// A sliver thinner than the sampling step is missed by the sampled test.
	sliver := geom.Ring{{X: 4.999, Y: 2}, {X: 5.001, Y: 2}, {X: 5.001, Y: 8}, {X: 4.999, Y: 8}}
	region := mustRegion(t, squareRing(10), sliver)
	a, b := geom.Point{X: 1, Y: 5}, geom.Point{X: 9, Y: 5}

	if (ExactSight{}).Clear(region, a, b) {
		t.Error("exact sight should be blocked by the sliver")
	}
	if !(SampledSight{Radius: DefaultSightRadius}).Clear(region, a, b) {
		t.Error("sampled sight should accept the sliver within its probe radius")
	}
}

func TestBuildGraph(t *testing.T) {
	t.Parallel()
	region := mustRegion(t, lRing())
	points := region.Vertices()

	g := BuildGraph(region, points, SampledSight{})
	if g.Len() != len(points) {
		t.Fatalf("Len = %d, want %d", g.Len(), len(points))
	}

	for i := range points {
		if g.HasEdge(i, i) {
			t.Errorf("diagonal %d has an edge", i)
		}
		for j := range points {
			if g.Weights[i][j] != g.Weights[j][i] {
				t.Errorf("weights not symmetric at %d,%d", i, j)
			}
			if i != j && g.HasEdge(i, j) {
				if d := points[i].Distance(points[j]); g.Weights[i][j] != d {
					t.Errorf("weight %d,%d = %v, want %v", i, j, g.Weights[i][j], d)
				}
			}
		}
	}

	// (4,2) and (2,4) only see each other across the missing quadrant.
	if g.HasEdge(2, 4) {
		t.Error("edge across the notch should be blocked")
	}
	if !g.HasEdge(2, 3) {
		t.Error("boundary edge (4,2)-(2,2) should be visible")
	}
}

func TestVisibilityGraph_Lines(t *testing.T) {
	t.Parallel()
	region := mustRegion(t, squareRing(10))

	g := BuildGraph(region, region.Vertices(), SampledSight{})
	if lines := g.Lines(); len(lines) != 6 {
		t.Errorf("Lines() = %d, want every pair of the 4 corners", len(lines))
	}
}

func TestToWorldWaypoints(t *testing.T) {
	t.Parallel()
	points := []geom.Point{{X: 0, Y: 0}, {X: 9, Y: 9}, {X: 3, Y: 3}, {X: 1, Y: 1}}
	start := geom.Vec3{X: 1, Y: 1, Z: 2}

	tests := []struct {
		name   string
		path   []int
		origin geom.Point
		want   []geom.Vec3
	}{
		{
			name:   "source excluded",
			path:   []int{0, 2, 1},
			origin: geom.Point{},
			want:   []geom.Vec3{{X: 3, Y: 3, Z: 2}, {X: 9, Y: 9, Z: 2}},
		},
		{
			name:   "first waypoint equals raw start",
			path:   []int{0, 3, 2, 1},
			origin: geom.Point{},
			want:   []geom.Vec3{{X: 3, Y: 3, Z: 2}, {X: 9, Y: 9, Z: 2}},
		},
		{
			name:   "first waypoint equals snapped origin",
			path:   []int{0, 2, 1},
			origin: geom.Point{X: 3, Y: 3},
			want:   []geom.Vec3{{X: 9, Y: 9, Z: 2}},
		},
		{
			name:   "destination is never dropped",
			path:   []int{0, 3},
			origin: geom.Point{},
			want:   []geom.Vec3{{X: 1, Y: 1, Z: 2}},
		},
		{
			name: "single vertex",
			path: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToWorldWaypoints(tt.path, points, start, tt.origin)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("waypoint %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPathLength(t *testing.T) {
	t.Parallel()
	got := PathLength(geom.Vec3{}, []geom.Vec3{{X: 3, Y: 4, Z: 9}, {X: 3, Y: 0}})
	if got != 9 {
		t.Errorf("PathLength = %v, want 9", got)
	}
}
