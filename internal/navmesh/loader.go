package navmesh

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"nav-planner/internal/geom"
)

// Feature roles understood by the loader.
const (
	RoleNavMesh = "navmesh"
	RoleHole    = "hole"
)

// LoadOptions tunes how region files are turned into meshes.
type LoadOptions struct {
	// SimplifyEpsilon enables Douglas-Peucker simplification of every ring
	// when positive.
	SimplifyEpsilon float64
}

// LoadDir loads every *.geojson file in dir. Files that fail to parse are
// logged and skipped.
func LoadDir(dir string, opts LoadOptions) ([]*NavMesh, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, fmt.Errorf("navmesh: list %q: %w", dir, err)
	}

	slog.Info("loading navmeshes", "dir", dir, "files", len(files))

	meshes := make([]*NavMesh, 0, len(files))
	for _, file := range files {
		m, err := LoadFile(file, opts)
		if err != nil {
			slog.Warn("skipping navmesh file", "file", filepath.Base(file), "err", err)
			continue
		}
		meshes = append(meshes, m)
		slog.Info("navmesh loaded", "mesh", m.Name(), "file", filepath.Base(file))
	}
	return meshes, nil
}

// LoadFile reads a single GeoJSON region file. The mesh is named after the
// navmesh feature's "name" property, or the file stem when that is absent.
func LoadFile(path string, opts LoadOptions) (*NavMesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("navmesh: read %q: %w", path, err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Decode(stem, data, opts)
}

// Decode parses a GeoJSON FeatureCollection into a mesh. Exactly one feature
// must carry role "navmesh"; its first ring is the boundary and any further
// rings are permanent holes. Features with role "hole" become named static
// holes.
func Decode(defaultName string, data []byte, opts LoadOptions) (*NavMesh, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("navmesh: decode geojson: %w", err)
	}

	var (
		name      = defaultName
		boundary  geom.Ring
		transform geom.Transform
		holes     []Hole
		found     bool
	)

	for i, f := range fc.Features {
		role := f.Properties.MustString("role", RoleNavMesh)
		poly, ok := firstPolygon(f.Geometry)
		if !ok {
			slog.Warn("ignoring feature without polygon geometry", "index", i, "type", geometryType(f.Geometry))
			continue
		}

		switch role {
		case RoleNavMesh:
			if found {
				return nil, fmt.Errorf("%w: more than one navmesh feature", ErrInvalidRegion)
			}
			found = true
			name = f.Properties.MustString("name", defaultName)
			boundary = geom.RingFromOrb(poly[0])
			for _, r := range poly[1:] {
				holes = append(holes, Hole{Ring: geom.RingFromOrb(r), Enabled: true})
			}
			if transform, err = parseTransform(f.Properties); err != nil {
				return nil, err
			}

		case RoleHole:
			holeName := f.Properties.MustString("name", "")
			if holeName == "" {
				return nil, fmt.Errorf("%w: hole feature %d has no name", ErrInvalidRegion, i)
			}
			holes = append(holes, Hole{
				Name:    holeName,
				Ring:    geom.RingFromOrb(poly[0]),
				Enabled: f.Properties.MustBool("enabled", false),
			})

		default:
			slog.Warn("ignoring feature with unknown role", "index", i, "role", role)
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: no navmesh feature", ErrInvalidRegion)
	}

	boundary, holes = normalize(boundary, holes, opts.SimplifyEpsilon)
	return New(name, boundary, transform, holes)
}

// WriteGeoJSON writes the mesh's static state (boundary, permanent holes and
// named holes with their current state) in the format [Decode] reads.
func WriteGeoJSON(w io.Writer, m *NavMesh) error {
	m.mu.Lock()
	boundary := m.boundary.Clone()
	transform := m.transform
	holes := make([]Hole, len(m.holes))
	for i, h := range m.holes {
		holes[i] = Hole{Name: h.Name, Ring: h.Ring.Clone(), Enabled: h.Enabled}
	}
	m.mu.Unlock()

	poly := orb.Polygon{boundary.Orb()}
	for _, h := range holes {
		if h.Name == "" {
			poly = append(poly, h.Ring.Orb())
		}
	}

	fc := geojson.NewFeatureCollection()
	nav := geojson.NewFeature(poly)
	nav.Properties["role"] = RoleNavMesh
	nav.Properties["name"] = m.name
	nav.Properties["position"] = []float64{transform.Position.X, transform.Position.Y}
	if transform.Scale != (geom.Point{}) {
		nav.Properties["scale"] = []float64{transform.Scale.X, transform.Scale.Y}
	}
	fc.Append(nav)

	for _, h := range holes {
		if h.Name == "" {
			continue
		}
		f := geojson.NewFeature(orb.Polygon{h.Ring.Orb()})
		f.Properties["role"] = RoleHole
		f.Properties["name"] = h.Name
		f.Properties["enabled"] = h.Enabled
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("navmesh: encode geojson: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("navmesh: write geojson: %w", err)
	}
	return nil
}

// firstPolygon returns the polygon of a Polygon feature or the first polygon
// of a MultiPolygon feature.
func firstPolygon(g orb.Geometry) (orb.Polygon, bool) {
	switch v := g.(type) {
	case orb.Polygon:
		return v, len(v) > 0
	case orb.MultiPolygon:
		if len(v) > 0 && len(v[0]) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "none"
	}
	return g.GeoJSONType()
}

// parseTransform reads the optional "position" and "scale" pair properties.
func parseTransform(props geojson.Properties) (geom.Transform, error) {
	var t geom.Transform
	var err error
	if t.Position, err = pairProperty(props, "position"); err != nil {
		return t, err
	}
	if t.Scale, err = pairProperty(props, "scale"); err != nil {
		return t, err
	}
	return t, nil
}

func pairProperty(props geojson.Properties, key string) (geom.Point, error) {
	raw, ok := props[key]
	if !ok || raw == nil {
		return geom.Point{}, nil
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return geom.Point{}, fmt.Errorf("%w: property %q must be a [x, y] pair", ErrInvalidRegion, key)
	}
	x, okX := values[0].(float64)
	y, okY := values[1].(float64)
	if !okX || !okY {
		return geom.Point{}, fmt.Errorf("%w: property %q must hold numbers", ErrInvalidRegion, key)
	}
	return geom.Point{X: x, Y: y}, nil
}
