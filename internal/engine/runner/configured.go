package runner

import (
	"maps"
	"slices"

	"go.trai.ch/skip/internal/core/domain"
	"go.trai.ch/skip/internal/engine/properties"
)

// configuredUnit pairs a unit declaration with its property set. Every
// declared input value becomes a strict property: set during configuration,
// finalized the instant the unit starts executing, so the value observed by
// fingerprinting can never change afterwards.
type configuredUnit struct {
	unit   domain.Unit
	props  *properties.Set
	values map[string]*properties.Property[string]
}

func configure(unit domain.Unit) (*configuredUnit, error) {
	identity := unit.Identity()
	set := properties.NewSet(identity)
	values := make(map[string]*properties.Property[string], len(unit.InputValues))

	for name, value := range unit.InputValues {
		p := properties.New[string](identity, name)
		if err := p.Set(value); err != nil {
			return nil, err
		}
		set.Register(p)
		values[name] = p
	}

	return &configuredUnit{unit: unit, props: set, values: values}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
