package properties

import (
	"sync"
	"sync/atomic"

	"go.trai.ch/zerr"

	"go.trai.ch/skip/internal/core/domain"
)

// Property is a named, explicitly settable value owned by exactly one unit of
// work. A strict property may not be read until the owning unit has started
// executing, at which point it is finalized and immutable; this guarantees the
// value observed by fingerprinting cannot change mid- or post-execution.
//
// The strict read guard and the unsafe-read escape hatch are two independent
// gates: a strict property with unsafe reads enabled returns best-effort
// values like a lenient one, but still refuses late sets.
type Property[T any] struct {
	owner  string
	name   string
	strict bool
	unsafe atomic.Bool

	mu    sync.Mutex
	state atomic.Int32
	value T
}

// New creates a strict property in the UNSET state.
func New[T any](owner, name string) *Property[T] {
	return &Property[T]{owner: owner, name: name, strict: true}
}

// NewLenient creates a property whose reads bypass the availability guard.
// Lenient properties are for values that never enter fingerprinting.
func NewLenient[T any](owner, name string) *Property[T] {
	return &Property[T]{owner: owner, name: name}
}

// AllowUnsafeRead enables the second, independent read gate: reads bypass the
// guard even on a strict property. Returns the property for chaining.
func (p *Property[T]) AllowUnsafeRead() *Property[T] {
	p.unsafe.Store(true)
	return p
}

// Name returns the property name.
func (p *Property[T]) Name() string { return p.name }

// Owner returns the identity of the owning unit of work.
func (p *Property[T]) Owner() string { return p.owner }

// Strict reports whether the availability guard applies to reads.
func (p *Property[T]) Strict() bool { return p.strict }

// State returns the current lifecycle state.
func (p *Property[T]) State() State { return State(p.state.Load()) }

// Finalized reports whether the value is fixed and published.
func (p *Property[T]) Finalized() bool { return p.State() == StateFinalized }

// Set stores a new value. Allowed in UNSET and EXPLICIT only; once
// finalization has begun it fails naming the property and its owner, so the
// caller can diagnose which declared input was mutated too late.
func (p *Property[T]) Set(value T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch State(p.state.Load()) {
	case StateFinalizing, StateFinalized:
		err := zerr.With(zerr.Wrap(domain.ErrPropertyFinalized, ""), "property", p.name)
		return zerr.With(err, "owner", p.owner)
	default:
		p.value = value
		p.state.Store(int32(StateExplicit))
		return nil
	}
}

// Get returns the property value.
//
// Once finalized the read is lock-free: the FINALIZED store is the
// publication point, so observing it guarantees the value write is visible.
// Before finalization a strict read fails as unavailable unless unsafe reads
// were enabled; lenient reads return the current value.
func (p *Property[T]) Get() (T, error) {
	if State(p.state.Load()) == StateFinalized {
		return p.value, nil
	}

	if p.strict && !p.unsafe.Load() {
		var zero T
		return zero, p.unavailable()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, nil
}

func (p *Property[T]) unavailable() error {
	phase := "configuration not finished"
	if p.State() == StateUnset {
		phase = "producer has not run yet"
	}
	err := zerr.With(zerr.Wrap(domain.ErrValueUnavailable, ""), "property", p.name)
	err = zerr.With(err, "owner", p.owner)
	return zerr.With(err, "phase", phase)
}

// Finalize fixes the current value, driving the property through FINALIZING
// to FINALIZED. Idempotent. Only the execution path of the owning unit calls
// this; concurrent readers observe either the pre-finalization guard or the
// finalized value, never a torn state.
func (p *Property[T]) Finalize() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st := State(p.state.Load()); st == StateFinalizing || st == StateFinalized {
		return
	}
	p.state.Store(int32(StateFinalizing))
	// The value is frozen as of this point; publishing the FINALIZED state
	// is what makes it visible to lock-free readers.
	p.state.Store(int32(StateFinalized))
}
