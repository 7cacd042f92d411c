package navmesh

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownMesh is returned when a mesh name is not in the catalog.
var ErrUnknownMesh = errors.New("navmesh: unknown mesh")

// Catalog holds every loaded mesh and tracks which one is active, mirroring a
// scene whose default navmesh can be swapped at runtime.
type Catalog struct {
	mu     sync.RWMutex
	meshes map[string]*NavMesh
	active string
}

// NewCatalog creates a catalog from meshes. The first mesh becomes active.
func NewCatalog(meshes ...*NavMesh) *Catalog {
	c := &Catalog{meshes: make(map[string]*NavMesh, len(meshes))}
	for _, m := range meshes {
		c.Add(m)
	}
	return c
}

// Add registers or replaces a mesh. The mesh becomes active when none is.
func (c *Catalog) Add(m *NavMesh) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meshes[m.Name()] = m
	if c.active == "" {
		c.active = m.Name()
	}
}

// Get returns the mesh with the given name, or the active mesh when name is
// empty.
func (c *Catalog) Get(name string) (*NavMesh, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if name == "" {
		name = c.active
	}
	m, ok := c.meshes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMesh, name)
	}
	return m, nil
}

// SetActive switches the active mesh.
func (c *Catalog) SetActive(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.meshes[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMesh, name)
	}
	c.active = name
	return nil
}

// Active returns the name of the active mesh.
func (c *Catalog) Active() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Names returns all mesh names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.meshes))
	for name := range c.meshes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
