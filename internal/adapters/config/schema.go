package config

// Skipfile represents the structure of the skip.yaml configuration file.
type Skipfile struct {
	Version string             `yaml:"version"`
	Units   map[string]UnitDTO `yaml:"units"`
}

// UnitDTO represents a unit definition in the configuration.
type UnitDTO struct {
	Cmd     []string           `yaml:"cmd"`
	Values  map[string]string  `yaml:"values"`
	Inputs  map[string]RootDTO `yaml:"inputs"`
	Outputs map[string]RootDTO `yaml:"outputs"`
}

// RootDTO represents one declared file root of a unit.
type RootDTO struct {
	Path string `yaml:"path"`
	// Normalization selects the fingerprint strategy; empty means relative.
	Normalization string `yaml:"normalization"`
}
