// Package obstacle turns idle agents standing on a navmesh into temporary
// holes so that other agents route around them.
package obstacle

import (
	"fmt"

	"nav-planner/internal/geom"
)

// State is the movement state of an agent.
type State string

const (
	StateIdle       State = "idle"
	StateMove       State = "move"
	StateDecelerate State = "decelerate"
	StateCustom     State = "custom"
)

// IsValid reports whether s is a recognised state.
func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateMove, StateDecelerate, StateCustom:
		return true
	}
	return false
}

// ParseState converts a string to a [State].
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.IsValid() {
		return "", fmt.Errorf("obstacle: unknown state %q; valid values: idle, move, decelerate, custom", s)
	}
	return st, nil
}

// Footprint is the circular collider of an agent, in the agent's local space.
type Footprint struct {
	Offset geom.Point
	Radius float64
}

// Agent is anything that stands on the navmesh and may block other agents.
type Agent interface {
	ID() string
	// Position is the agent's world position.
	Position() geom.Point
	// Scale is the agent's local scale. Only X scales the footprint radius.
	Scale() geom.Point
	State() State
	// Footprint returns the circular collider, or false if the agent has none.
	Footprint() (Footprint, bool)
}

// Source supplies the agents that are candidates for obstacle holes.
type Source interface {
	Agents() []Agent
}

// Character is a plain [Agent] value, used by the registry and in tests.
type Character struct {
	Name       string
	Pos        geom.Point
	LocalScale geom.Point
	Movement   State
	Collider   *Footprint
}

func (c Character) ID() string           { return c.Name }
func (c Character) Position() geom.Point { return c.Pos }
func (c Character) State() State         { return c.Movement }

// Scale returns the local scale, treating an unset scale as 1.
func (c Character) Scale() geom.Point {
	s := c.LocalScale
	if s.X == 0 {
		s.X = 1
	}
	if s.Y == 0 {
		s.Y = 1
	}
	return s
}

func (c Character) Footprint() (Footprint, bool) {
	if c.Collider == nil {
		return Footprint{}, false
	}
	return *c.Collider, true
}
