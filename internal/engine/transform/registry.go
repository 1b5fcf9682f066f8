// Package transform executes artifact transforms: units of work that turn a
// primary input file into outputs inside an isolated workspace.
package transform

import (
	"maps"

	"go.trai.ch/zerr"

	"go.trai.ch/skip/internal/core/domain"
)

// Capability tags the injectable services of a transform invocation. The set
// is finite and each tag resolves to at most one provider per invocation; no
// reflection is involved.
type Capability string

const (
	// CapabilityPrimaryInput resolves to the transform's input file location.
	CapabilityPrimaryInput Capability = "primary-input"
	// CapabilityWorkspace resolves to the scratch/output directory.
	CapabilityWorkspace Capability = "workspace"
	// CapabilityDependencies resolves to the upstream artifact accessor.
	// Supplied only when the definition declared the need at construction.
	CapabilityDependencies Capability = "upstream-dependencies"
	// CapabilityParameters resolves to the isolated parameter copy.
	CapabilityParameters Capability = "parameters"
)

// Dependencies exposes the upstream artifacts of the primary input.
type Dependencies interface {
	Files() []string
}

// Registry holds the capabilities supplied to one transform invocation.
type Registry struct {
	entries map[Capability]any
}

func newRegistry(primaryInput, workspace string, parameters map[string]string, deps Dependencies) *Registry {
	entries := map[Capability]any{
		CapabilityPrimaryInput: primaryInput,
		CapabilityWorkspace:    workspace,
		// Isolated per invocation: an action mutating the map it received
		// cannot affect the definition or a parallel invocation.
		CapabilityParameters: maps.Clone(parameters),
	}
	if deps != nil {
		entries[CapabilityDependencies] = deps
	}
	return &Registry{entries: entries}
}

func (r *Registry) resolve(c Capability) (any, error) {
	v, ok := r.entries[c]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownCapability, ""), "capability", string(c))
	}
	return v, nil
}

// PrimaryInput returns the transform's input file location.
func (r *Registry) PrimaryInput() (string, error) {
	v, err := r.resolve(CapabilityPrimaryInput)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Workspace returns the scratch/output directory.
func (r *Registry) Workspace() (string, error) {
	v, err := r.resolve(CapabilityWorkspace)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Dependencies returns the upstream artifact accessor. Fails with an unknown
// capability error unless the definition declared the need at construction,
// even if one was available at runtime.
func (r *Registry) Dependencies() (Dependencies, error) {
	v, err := r.resolve(CapabilityDependencies)
	if err != nil {
		return nil, err
	}
	return v.(Dependencies), nil
}

// Parameters returns the isolated copy of the configured parameters.
func (r *Registry) Parameters() (map[string]string, error) {
	v, err := r.resolve(CapabilityParameters)
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}
