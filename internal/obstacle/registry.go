package obstacle

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownAgent is returned when an agent ID is not registered.
var ErrUnknownAgent = errors.New("obstacle: unknown agent")

// Registry is an explicit, concurrency-safe set of agents. It implements
// [Source] and returns agents ordered by ID so that obstacle insertion is
// deterministic.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Character
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Character)}
}

// Upsert adds or replaces an agent.
func (r *Registry) Upsert(c Character) error {
	if c.Name == "" {
		return errors.New("obstacle: agent id is required")
	}
	if c.Movement == "" {
		c.Movement = StateIdle
	}
	if !c.Movement.IsValid() {
		return fmt.Errorf("obstacle: agent %q: unknown state %q", c.Name, c.Movement)
	}
	if c.Collider != nil && c.Collider.Radius < 0 {
		return fmt.Errorf("obstacle: agent %q: negative radius %.3f", c.Name, c.Collider.Radius)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[c.Name] = c
	return nil
}

// Remove deletes an agent. Removing an unknown agent is an error.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAgent, id)
	}
	delete(r.agents, id)
	return nil
}

// SetState changes the movement state of a registered agent.
func (r *Registry) SetState(id string, s State) error {
	if !s.IsValid() {
		return fmt.Errorf("obstacle: agent %q: unknown state %q", id, s)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.agents[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAgent, id)
	}
	c.Movement = s
	r.agents[id] = c
	return nil
}

// Get returns a registered agent.
func (r *Registry) Get(id string) (Character, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.agents[id]
	return c, ok
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// Agents implements [Source].
func (r *Registry) Agents() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Agent, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.agents[id])
	}
	return out
}
