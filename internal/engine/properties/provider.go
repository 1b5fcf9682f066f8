package properties

import (
	"errors"

	"go.trai.ch/zerr"

	"go.trai.ch/skip/internal/core/domain"
)

// Provider is a node in the value graph. The graph has a fixed set of node
// kinds: Literal, explicitly set properties, Map and FlatMap. Evaluation is
// structural recursion over this graph, memoized once the node is finalized.
type Provider[T any] interface {
	// Get evaluates the node under its read gates.
	Get() (T, error)
	// Name identifies the node in errors.
	Name() string
	// Finalized reports whether the node's value is fixed and published.
	Finalized() bool
}

// Literal returns an always-available, already-finalized provider carrying a
// fixed value. Used for values known at configuration time.
func Literal[T any](name string, value T) Provider[T] {
	return literal[T]{name: name, value: value}
}

type literal[T any] struct {
	name  string
	value T
}

func (l literal[T]) Get() (T, error) { return l.value, nil }
func (l literal[T]) Name() string    { return l.name }
func (l literal[T]) Finalized() bool { return true }

// Map derives a provider by applying fn to the upstream value. Evaluation is
// deferred until Get. Availability and finalization of the upstream propagate:
// the derived node is finalized only once the upstream is, and an upstream
// failure is wrapped into an error naming both nodes.
func Map[T, U any](name string, upstream Provider[T], fn func(T) (U, error)) Provider[U] {
	return &mapped[T, U]{name: name, upstream: upstream, fn: fn}
}

type mapped[T, U any] struct {
	name     string
	upstream Provider[T]
	fn       func(T) (U, error)

	memo memoCell[U]
}

func (m *mapped[T, U]) Get() (U, error) {
	if v, ok := m.memo.load(); ok {
		return v, nil
	}
	var zero U
	in, err := m.upstream.Get()
	if err != nil {
		return zero, wrapUpstream(err, m.name, m.upstream.Name())
	}
	out, err := m.fn(in)
	if err != nil {
		return zero, wrapUpstream(err, m.name, m.upstream.Name())
	}
	if m.upstream.Finalized() {
		m.memo.store(out)
	}
	return out, nil
}

func (m *mapped[T, U]) Name() string    { return m.name }
func (m *mapped[T, U]) Finalized() bool { return m.memo.done() }

// FlatMap derives a provider whose transformation yields another provider,
// which is then evaluated in turn.
func FlatMap[T, U any](name string, upstream Provider[T], fn func(T) (Provider[U], error)) Provider[U] {
	return &flatMapped[T, U]{name: name, upstream: upstream, fn: fn}
}

type flatMapped[T, U any] struct {
	name     string
	upstream Provider[T]
	fn       func(T) (Provider[U], error)

	memo memoCell[U]
}

func (f *flatMapped[T, U]) Get() (U, error) {
	if v, ok := f.memo.load(); ok {
		return v, nil
	}
	var zero U
	in, err := f.upstream.Get()
	if err != nil {
		return zero, wrapUpstream(err, f.name, f.upstream.Name())
	}
	inner, err := f.fn(in)
	if err != nil {
		return zero, wrapUpstream(err, f.name, f.upstream.Name())
	}
	out, err := inner.Get()
	if err != nil {
		return zero, wrapUpstream(err, f.name, inner.Name())
	}
	if f.upstream.Finalized() && inner.Finalized() {
		f.memo.store(out)
	}
	return out, nil
}

func (f *flatMapped[T, U]) Name() string    { return f.name }
func (f *flatMapped[T, U]) Finalized() bool { return f.memo.done() }

// wrapUpstream chains an upstream failure into a new error naming the derived
// node and the failing upstream. The cause stays in the chain.
func wrapUpstream(err error, derived, upstream string) error {
	wrapped := zerr.With(errors.Join(domain.ErrUpstreamFailed, err), "property", derived)
	return zerr.With(wrapped, "upstream", upstream)
}
