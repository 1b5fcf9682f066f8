// Package config provides the configuration loader for skip.
package config

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"go.trai.ch/skip/internal/core/domain"
	"go.trai.ch/skip/internal/core/ports"
)

// DefaultFilename is the configuration file looked up in the working
// directory.
const DefaultFilename = "skip.yaml"

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	fsys     afero.Fs
	filename string
}

// NewLoader creates a loader reading filename from the working directory.
func NewLoader(fsys afero.Fs, filename string) *FileConfigLoader {
	if filename == "" {
		filename = DefaultFilename
	}
	return &FileConfigLoader{fsys: fsys, filename: filename}
}

// Load reads the configuration from the given working directory and returns
// the declared units sorted by name.
func (l *FileConfigLoader) Load(cwd string) ([]domain.Unit, error) {
	path := filepath.Join(cwd, l.filename)

	data, err := afero.ReadFile(l.fsys, path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	var skipfile Skipfile
	if err := yaml.Unmarshal(data, &skipfile); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse config file"), "path", path)
	}

	units := make([]domain.Unit, 0, len(skipfile.Units))
	for name, dto := range skipfile.Units {
		unit, err := buildUnit(cwd, name, dto)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}

	// Stable order: the same file always yields the same unit sequence.
	slices.SortFunc(units, func(a, b domain.Unit) int {
		return strings.Compare(a.Name.String(), b.Name.String())
	})

	return units, nil
}

func buildUnit(cwd, name string, dto UnitDTO) (domain.Unit, error) {
	if name == "" {
		return domain.Unit{}, zerr.New("unit name must not be empty")
	}

	inputs, err := buildRoots(cwd, name, dto.Inputs)
	if err != nil {
		return domain.Unit{}, err
	}
	outputs, err := buildRoots(cwd, name, dto.Outputs)
	if err != nil {
		return domain.Unit{}, err
	}

	return domain.Unit{
		Name:        domain.NewInternedString(name),
		Command:     dto.Cmd,
		InputValues: dto.Values,
		InputRoots:  inputs,
		OutputRoots: outputs,
	}, nil
}

func buildRoots(cwd, unit string, dtos map[string]RootDTO) (map[string]domain.FileRoot, error) {
	if len(dtos) == 0 {
		return nil, nil
	}

	roots := make(map[string]domain.FileRoot, len(dtos))
	for property, dto := range dtos {
		if dto.Path == "" {
			return nil, zerr.With(zerr.With(zerr.New("file root requires a path"), "unit", unit), "property", property)
		}

		normalization, err := domain.ParseNormalization(dto.Normalization)
		if err != nil {
			return nil, zerr.With(zerr.With(zerr.With(zerr.Wrap(err, "invalid normalization"), "unit", unit), "property", property), "normalization", dto.Normalization)
		}

		path := dto.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}

		roots[property] = domain.FileRoot{
			Path:          filepath.Clean(path),
			Normalization: normalization,
		}
	}
	return roots, nil
}
