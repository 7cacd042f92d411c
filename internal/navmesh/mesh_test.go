package navmesh

import (
	"errors"
	"sync"
	"testing"

	"nav-planner/internal/geom"
)

func doorMesh(t *testing.T) *NavMesh {
	t.Helper()
	m, err := New("hall", square(10), geom.Transform{}, []Hole{
		{Ring: geom.Ring{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}}},
		{Name: "door", Ring: geom.Ring{{X: 4, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 10}, {X: 4, Y: 10}}},
		{Name: "crate", Ring: geom.Ring{{X: 7, Y: 7}, {X: 8, Y: 7}, {X: 8, Y: 8}, {X: 7, Y: 8}}, Enabled: true},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNew_DuplicateHoleNames(t *testing.T) {
	t.Parallel()
	_, err := New("dup", square(10), geom.Transform{}, []Hole{
		{Name: "a", Ring: geom.Ring{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}}},
		{Name: "a", Ring: geom.Ring{{X: 3, Y: 3}, {X: 4, Y: 3}, {X: 4, Y: 4}}},
	})
	if err == nil {
		t.Fatal("expected duplicate hole error")
	}
}

func TestNavMesh_StaticHoles(t *testing.T) {
	t.Parallel()
	m := doorMesh(t)

	if got := m.Snapshot().HoleCount(); got != 2 {
		t.Fatalf("initial hole count = %d, want 2 (permanent + crate)", got)
	}

	if err := m.AddHole("door"); err != nil {
		t.Fatalf("AddHole: %v", err)
	}
	if m.Snapshot().Contains(geom.Point{X: 5, Y: 5}) {
		t.Error("door hole not applied")
	}

	if err := m.ReplaceHole("", "door"); err != nil {
		t.Fatalf("ReplaceHole: %v", err)
	}
	if !m.Snapshot().Contains(geom.Point{X: 5, Y: 5}) {
		t.Error("door hole not removed")
	}

	if err := m.ReplaceHole("door", "crate"); err != nil {
		t.Fatalf("ReplaceHole: %v", err)
	}
	states := map[string]bool{}
	for _, h := range m.HoleStates() {
		states[h.Name] = h.Enabled
	}
	if !states["door"] || states["crate"] {
		t.Errorf("hole states = %v, want door on and crate off", states)
	}
}

func TestNavMesh_UnknownHole(t *testing.T) {
	t.Parallel()
	m := doorMesh(t)
	before := m.Snapshot().HoleCount()

	if err := m.ReplaceHole("door", "missing"); !errors.Is(err, ErrUnknownHole) {
		t.Fatalf("err = %v, want ErrUnknownHole", err)
	}
	if got := m.Snapshot().HoleCount(); got != before {
		t.Errorf("hole count changed to %d after failed replace", got)
	}
}

func TestSession_InsertAndEnd(t *testing.T) {
	t.Parallel()
	m := doorMesh(t)
	before := m.Snapshot().HoleCount()

	s := m.Begin()
	if err := s.InsertHoles(geom.Ring{{X: 3, Y: 3}, {X: 3.5, Y: 3.5}}); err != nil {
		t.Fatalf("InsertHoles: %v", err)
	}
	if !s.Changed() {
		t.Error("Changed = false after inserting a hole")
	}
	if got := s.Region().HoleCount(); got != before+1 {
		t.Errorf("session hole count = %d, want %d", got, before+1)
	}
	s.End()
	s.End()

	if got := m.Snapshot().HoleCount(); got != before {
		t.Errorf("hole count after End = %d, want %d", got, before)
	}
}

func TestSession_Exclusive(t *testing.T) {
	t.Parallel()
	m := doorMesh(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	maxHoles := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := m.Begin()
			defer s.End()
			_ = s.InsertHoles(geom.Ring{{X: 3, Y: 3}, {X: 3.5, Y: 3.5}})
			mu.Lock()
			maxHoles = max(maxHoles, s.Region().HoleCount())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxHoles != 3 {
		t.Errorf("a session saw %d holes; concurrent sessions leaked into each other", maxHoles)
	}
}

func TestCatalog(t *testing.T) {
	t.Parallel()
	a := doorMesh(t)
	b, err := New("yard", square(4), geom.Transform{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := NewCatalog(a, b)

	if c.Active() != "hall" {
		t.Errorf("Active = %q, want hall", c.Active())
	}
	got, err := c.Get("")
	if err != nil || got != a {
		t.Errorf("Get(\"\") = %v, %v; want the active mesh", got, err)
	}
	if err := c.SetActive("yard"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if got, _ := c.Get(""); got != b {
		t.Error("active mesh not switched")
	}
	if _, err := c.Get("nowhere"); !errors.Is(err, ErrUnknownMesh) {
		t.Errorf("err = %v, want ErrUnknownMesh", err)
	}
	if names := c.Names(); len(names) != 2 || names[0] != "hall" {
		t.Errorf("Names = %v", names)
	}
}

func TestNew_DegenerateHole(t *testing.T) {
	t.Parallel()
	_, err := New("bad", square(10), geom.Transform{}, []Hole{
		{Name: "door", Ring: geom.Ring{{X: 4, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 10}, {X: 4, Y: 10}}},
		{Name: "bad", Ring: geom.Ring{{X: 2, Y: 2}}},
	})
	if !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("err = %v, want ErrInvalidRegion for a disabled one-point hole", err)
	}
}

func TestNavMesh_ReplaceHoleRollsBack(t *testing.T) {
	t.Parallel()
	m := doorMesh(t)
	// Corrupt a hole after construction so that enabling it cannot build.
	m.holes[2].Ring = geom.Ring{{X: 7, Y: 7}}
	m.holes[2].Enabled = false
	if err := m.rebuild(); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	before := m.Snapshot().HoleCount()

	if err := m.ReplaceHole("crate", "door"); !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("err = %v, want ErrInvalidRegion", err)
	}
	for _, h := range m.HoleStates() {
		if h.Enabled {
			t.Errorf("hole %q enabled after failed replace", h.Name)
		}
	}
	if got := m.Snapshot().HoleCount(); got != before {
		t.Errorf("hole count = %d, want %d", got, before)
	}

	if err := m.AddHole("door"); err != nil {
		t.Fatalf("AddHole after failed replace: %v", err)
	}
	if m.Snapshot().Contains(geom.Point{X: 5, Y: 5}) {
		t.Error("door hole not applied")
	}
}
