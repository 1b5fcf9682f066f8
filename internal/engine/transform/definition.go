package transform

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/cespare/xxhash/v2"

	"go.trai.ch/skip/internal/core/domain"
)

// Action is one transform implementation instance. The executor constructs a
// fresh instance per invocation, so implementations carry no cross-invocation
// state.
type Action interface {
	// Run performs the transform, resolving what it needs from the supplied
	// capabilities, and returns the produced output paths.
	Run(ctx context.Context, caps *Registry) ([]string, error)
}

// Definition describes a transform implementation: its identity, its
// configured parameters (isolated at construction time) and the capabilities
// its instances may request.
type Definition struct {
	implementation       domain.ImplementationSnapshot
	parameters           map[string]string
	attributes           map[string]string
	requiresDependencies bool
	newAction            func() Action
}

// Option configures a Definition.
type Option func(*Definition)

// WithAttributes sets the variant-selector attributes folded into the cache
// key.
func WithAttributes(attrs map[string]string) Option {
	return func(d *Definition) {
		d.attributes = maps.Clone(attrs)
	}
}

// RequiresDependencies declares that instances need the upstream-dependencies
// capability. Without this declaration the capability is omitted from every
// invocation, even if requested at runtime.
func RequiresDependencies() Option {
	return func(d *Definition) {
		d.requiresDependencies = true
	}
}

// NewDefinition creates a transform definition. The parameters map is
// deep-copied immediately: later mutation of the caller's configuration
// cannot affect an in-flight execution.
func NewDefinition(typeName, version string, parameters map[string]string, newAction func() Action, opts ...Option) *Definition {
	d := &Definition{
		implementation: domain.SnapshotImplementation(typeName, version),
		parameters:     maps.Clone(parameters),
		newAction:      newAction,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Implementation returns the identity snapshot of the transform's logic.
func (d *Definition) Implementation() domain.ImplementationSnapshot {
	return d.implementation
}

// DisplayName identifies the transform in logs and telemetry.
func (d *Definition) DisplayName() string {
	return d.implementation.TypeName
}

// SecondaryInputsHash folds the isolated parameters into a single digest.
func (d *Definition) SecondaryInputsHash() string {
	return domain.HashStrings(d.parameters)
}

// CacheKey computes the identity of one invocation:
// hash(implementation identity, secondary-inputs hash, primary input content
// fingerprint, variant-selector attributes). Two invocations are the same
// cacheable unit iff this key is equal; instance identity is irrelevant.
func (d *Definition) CacheKey(primaryInput domain.Fingerprint) string {
	digest := xxhash.New()
	_, _ = digest.WriteString(d.implementation.Hash)
	_, _ = digest.Write([]byte{0})
	_, _ = digest.WriteString(d.SecondaryInputsHash())
	_, _ = digest.Write([]byte{0})
	_, _ = digest.WriteString(primaryInput.Hash())
	_, _ = digest.Write([]byte{0})

	attrs := slices.Collect(maps.Keys(d.attributes))
	slices.Sort(attrs)
	for _, k := range attrs {
		_, _ = digest.WriteString(k)
		_, _ = digest.Write([]byte{'='})
		_, _ = digest.WriteString(d.attributes[k])
		_, _ = digest.Write([]byte{0})
	}

	return fmt.Sprintf("%016x", digest.Sum64())
}
