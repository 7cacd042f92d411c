package navmesh

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"nav-planner/internal/geom"
)

// ErrUnknownHole is returned when a named static hole does not exist.
var ErrUnknownHole = errors.New("navmesh: unknown hole")

// Hole is a named static hole that can be switched on and off at runtime,
// e.g. a door that closes or furniture that is moved into a room.
type Hole struct {
	Name    string
	Ring    geom.Ring
	Enabled bool
}

// NavMesh owns the current region of one scene. All mutation and every
// pathfinding query go through its mutex, because query-scoped obstacle holes
// are written into the shared state and removed again at the end of the query.
type NavMesh struct {
	name string

	mu        sync.Mutex
	boundary  geom.Ring
	transform geom.Transform
	holes     []Hole

	// base is the region built from the boundary and every enabled hole.
	base *Region
	// current is base plus any holes inserted by the running query.
	current *Region
}

// New creates a mesh named name. Holes without a name are permanent; named
// holes start in the state given by their Enabled flag.
func New(name string, boundary geom.Ring, transform geom.Transform, holes []Hole) (*NavMesh, error) {
	seen := make(map[string]bool, len(holes))
	for i, h := range holes {
		if len(h.Ring) < 2 {
			return nil, fmt.Errorf("navmesh: mesh %q: %w: hole %d (%q) has %d points, need at least 2",
				name, ErrInvalidRegion, i, h.Name, len(h.Ring))
		}
		if h.Name == "" {
			continue
		}
		if seen[h.Name] {
			return nil, fmt.Errorf("navmesh: mesh %q: duplicate hole name %q", name, h.Name)
		}
		seen[h.Name] = true
	}

	m := &NavMesh{
		name:      name,
		boundary:  boundary.Clone(),
		transform: transform,
		holes:     make([]Hole, len(holes)),
	}
	for i, h := range holes {
		m.holes[i] = Hole{Name: h.Name, Ring: h.Ring.Clone(), Enabled: h.Enabled || h.Name == ""}
	}

	if err := m.rebuild(); err != nil {
		return nil, fmt.Errorf("navmesh: mesh %q: %w", name, err)
	}
	return m, nil
}

// Name returns the mesh name.
func (m *NavMesh) Name() string {
	return m.name
}

// rebuild recomputes the base region from the enabled holes. Callers hold mu
// or own m exclusively.
func (m *NavMesh) rebuild() error {
	enabled := make([]geom.Ring, 0, len(m.holes))
	for _, h := range m.holes {
		if h.Enabled {
			enabled = append(enabled, h.Ring)
		}
	}

	base, err := NewRegion(m.boundary, enabled, m.transform)
	if err != nil {
		return err
	}
	m.base = base
	m.current = base
	return nil
}

// Snapshot returns the current region. Regions are immutable, so the result
// stays valid after later mutations of the mesh.
func (m *NavMesh) Snapshot() *Region {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// HoleStates lists every named hole with its current state.
func (m *NavMesh) HoleStates() []Hole {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Hole, 0, len(m.holes))
	for _, h := range m.holes {
		if h.Name == "" {
			continue
		}
		out = append(out, Hole{Name: h.Name, Ring: h.Ring.Clone(), Enabled: h.Enabled})
	}
	return out
}

// AddHole enables the named static hole.
func (m *NavMesh) AddHole(name string) error {
	return m.ReplaceHole(name, "")
}

// RemoveHole disables the named static hole.
func (m *NavMesh) RemoveHole(name string) error {
	return m.ReplaceHole("", name)
}

// ReplaceHole enables add and disables remove in one step. Either name may be
// empty. Nothing changes if either name is unknown or the resulting region
// cannot be built.
func (m *NavMesh) ReplaceHole(add, remove string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	addIdx, removeIdx := -1, -1
	for i, h := range m.holes {
		if h.Name == "" {
			continue
		}
		if h.Name == add {
			addIdx = i
		}
		if h.Name == remove {
			removeIdx = i
		}
	}
	if add != "" && addIdx < 0 {
		return fmt.Errorf("%w: %q in mesh %q", ErrUnknownHole, add, m.name)
	}
	if remove != "" && removeIdx < 0 {
		return fmt.Errorf("%w: %q in mesh %q", ErrUnknownHole, remove, m.name)
	}

	prev := make([]bool, len(m.holes))
	for i, h := range m.holes {
		prev[i] = h.Enabled
	}
	if addIdx >= 0 {
		m.holes[addIdx].Enabled = true
	}
	if removeIdx >= 0 {
		m.holes[removeIdx].Enabled = false
	}
	if err := m.rebuild(); err != nil {
		for i := range m.holes {
			m.holes[i].Enabled = prev[i]
		}
		return fmt.Errorf("navmesh: mesh %q: %w", m.name, err)
	}

	slog.Info("navmesh holes changed", "mesh", m.name, "added", add, "removed", remove)
	return nil
}

// Begin starts an exclusive session on the mesh. The session must be ended
// with [Session.End], which also drops any holes inserted through it.
func (m *NavMesh) Begin() *Session {
	m.mu.Lock()
	return &Session{mesh: m}
}

// Session is exclusive access to a mesh for the duration of one query.
type Session struct {
	mesh    *NavMesh
	changed bool
	ended   bool
}

// Region returns the region including any holes inserted so far.
func (s *Session) Region() *Region {
	return s.mesh.current
}

// InsertHoles appends query-scoped holes, given in local coordinates.
func (s *Session) InsertHoles(holes ...geom.Ring) error {
	if len(holes) == 0 {
		return nil
	}
	next, err := s.mesh.current.WithHoles(holes...)
	if err != nil {
		return err
	}
	s.mesh.current = next
	s.changed = true
	return nil
}

// ResetHoles drops every hole inserted through this session.
func (s *Session) ResetHoles() {
	s.mesh.current = s.mesh.base
	s.changed = false
}

// Changed reports whether the session currently has inserted holes.
func (s *Session) Changed() bool {
	return s.changed
}

// End resets inserted holes and releases the mesh. Calling End twice is a no-op.
func (s *Session) End() {
	if s.ended {
		return
	}
	s.ended = true
	s.ResetHoles()
	s.mesh.mu.Unlock()
}
