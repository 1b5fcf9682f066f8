package properties

import "sync"

// Finalizable is the lifecycle surface a property exposes to its owning unit.
type Finalizable interface {
	Finalize()
	Strict() bool
	Name() string
}

// Set holds all properties declared by one unit of work. The unit's driver
// calls StartExecution exactly once at the start of its run, which finalizes
// every strict property unconditionally. There is no ambient trigger: a
// property changes hands only through this explicit call.
type Set struct {
	owner string

	mu      sync.Mutex
	props   []Finalizable
	started bool
}

// NewSet creates an empty property set for the given owner.
func NewSet(owner string) *Set {
	return &Set{owner: owner}
}

// Owner returns the identity of the owning unit of work.
func (s *Set) Owner() string { return s.owner }

// Register adds a property to the set. Properties are owned exclusively by
// the unit that declared them and are never reused across units.
func (s *Set) Register(p Finalizable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props = append(s.props, p)
}

// StartExecution marks the owning unit as executing and finalizes all strict
// properties. Subsequent calls are no-ops: finalization happens exactly once.
func (s *Set) StartExecution() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	for _, p := range s.props {
		if p.Strict() {
			p.Finalize()
		}
	}
}

// Started reports whether the owning unit has begun executing.
func (s *Set) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
