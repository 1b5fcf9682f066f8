package config_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/skip/internal/adapters/config"
	"go.trai.ch/skip/internal/core/domain"
)

func writeConfig(t *testing.T, fsys afero.Fs, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, "/project/skip.yaml", []byte(content), 0o644))
}

func TestLoad_FullUnit(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, `
version: "1"
units:
  compile:
    cmd: [go, build, ./...]
    values:
      mode: release
    inputs:
      sources:
        path: src
      vendored:
        path: third_party
        normalization: name-only
    outputs:
      binary:
        path: bin
`)

	units, err := config.NewLoader(fsys, "").Load("/project")
	require.NoError(t, err)
	require.Len(t, units, 1)

	unit := units[0]
	assert.Equal(t, "compile", unit.Name.String())
	assert.Equal(t, []string{"go", "build", "./..."}, unit.Command)
	assert.Equal(t, "release", unit.InputValues["mode"])

	sources := unit.InputRoots["sources"]
	assert.Equal(t, "/project/src", sources.Path)
	assert.Equal(t, domain.NormalizationRelative, sources.Normalization)

	vendored := unit.InputRoots["vendored"]
	assert.Equal(t, domain.NormalizationNameOnly, vendored.Normalization)

	binary := unit.OutputRoots["binary"]
	assert.Equal(t, "/project/bin", binary.Path)
}

func TestLoad_UnitsSortedByName(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, `
units:
  zeta:
    cmd: [true]
  alpha:
    cmd: [true]
  mid:
    cmd: [true]
`)

	units, err := config.NewLoader(fsys, "").Load("/project")
	require.NoError(t, err)
	require.Len(t, units, 3)
	assert.Equal(t, "alpha", units[0].Name.String())
	assert.Equal(t, "mid", units[1].Name.String())
	assert.Equal(t, "zeta", units[2].Name.String())
}

func TestLoad_AbsolutePathsKept(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, `
units:
  compile:
    cmd: [true]
    inputs:
      sources:
        path: /elsewhere/src
`)

	units, err := config.NewLoader(fsys, "").Load("/project")
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/src", units[0].InputRoots["sources"].Path)
}

func TestLoad_UnknownNormalizationFails(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, `
units:
  compile:
    cmd: [true]
    inputs:
      sources:
        path: src
        normalization: fuzzy
`)

	_, err := config.NewLoader(fsys, "").Load("/project")
	assert.ErrorIs(t, err, domain.ErrUnknownNormalization)
}

func TestLoad_RootWithoutPathFails(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, `
units:
  compile:
    cmd: [true]
    outputs:
      binary:
        normalization: relative
`)

	_, err := config.NewLoader(fsys, "").Load("/project")
	assert.Error(t, err)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := config.NewLoader(afero.NewMemMapFs(), "").Load("/project")
	assert.Error(t, err)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeConfig(t, fsys, "units: [not: a: map")

	_, err := config.NewLoader(fsys, "").Load("/project")
	assert.Error(t, err)
}
