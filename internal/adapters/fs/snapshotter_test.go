package fs_test

import (
	iofs "io/fs"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/skip/internal/adapters/fs"
	"go.trai.ch/skip/internal/core/domain"
)

func newSnapshotter(fsys afero.Fs) *fs.Snapshotter {
	return fs.NewSnapshotter(fsys, fs.NewWalker(fsys))
}

func write(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func TestSnapshot_TreeWithFilesAndDirectories(t *testing.T) {
	fsys := afero.NewMemMapFs()
	write(t, fsys, "/src/main.go", "package main")
	write(t, fsys, "/src/pkg/util.go", "package pkg")

	snap, err := newSnapshotter(fsys).Snapshot("/src")
	require.NoError(t, err)

	assert.Equal(t, "/src", snap.Root())

	file, ok := snap.Entry("/src/main.go")
	require.True(t, ok)
	assert.False(t, file.IsDir)
	assert.Equal(t, int64(len("package main")), file.Size)
	assert.Len(t, file.Hash, 16)

	dir, ok := snap.Entry("/src/pkg")
	require.True(t, ok)
	assert.True(t, dir.IsDir)
	assert.Equal(t, domain.DirectoryHash, dir.Hash)
}

func TestSnapshot_MissingRootIsEmptyNotError(t *testing.T) {
	fsys := afero.NewMemMapFs()

	snap, err := newSnapshotter(fsys).Snapshot("/nonexistent")
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.Equal(t, "/nonexistent", snap.Root())
}

func TestSnapshot_SingleFileRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()
	write(t, fsys, "/config.yaml", "key: value")

	snap, err := newSnapshotter(fsys).Snapshot("/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Len())

	entry, ok := snap.Entry("/config.yaml")
	require.True(t, ok)
	assert.False(t, entry.IsDir)
}

func TestSnapshot_IdenticalContentHashesEqually(t *testing.T) {
	fsys := afero.NewMemMapFs()
	write(t, fsys, "/a/file.txt", "same content")
	write(t, fsys, "/b/file.txt", "same content")

	snapshotter := newSnapshotter(fsys)
	a, err := snapshotter.Snapshot("/a")
	require.NoError(t, err)
	b, err := snapshotter.Snapshot("/b")
	require.NoError(t, err)

	ea, _ := a.Entry("/a/file.txt")
	eb, _ := b.Entry("/b/file.txt")
	assert.Equal(t, ea.Hash, eb.Hash)

	// Relocated trees fingerprint identically under relative normalization.
	fa := domain.FingerprintSnapshots(domain.NormalizationRelative, a)
	fb := domain.FingerprintSnapshots(domain.NormalizationRelative, b)
	assert.True(t, fa.Equal(fb))
}

func TestSnapshot_DetectsContentChange(t *testing.T) {
	fsys := afero.NewMemMapFs()
	write(t, fsys, "/src/main.go", "v1")

	snapshotter := newSnapshotter(fsys)
	first, err := snapshotter.Snapshot("/src")
	require.NoError(t, err)

	// Chtimes guards against mtime granularity hiding the rewrite.
	write(t, fsys, "/src/main.go", "v2")
	require.NoError(t, fsys.Chtimes("/src/main.go", time.Now(), time.Now().Add(time.Second)))

	second, err := snapshotter.Snapshot("/src")
	require.NoError(t, err)

	e1, _ := first.Entry("/src/main.go")
	e2, _ := second.Entry("/src/main.go")
	assert.NotEqual(t, e1.Hash, e2.Hash)
}

func TestSnapshot_SkipsVersionControlMetadata(t *testing.T) {
	fsys := afero.NewMemMapFs()
	write(t, fsys, "/src/main.go", "package main")
	write(t, fsys, "/src/.git/HEAD", "ref: refs/heads/main")
	write(t, fsys, "/src/.jj/repo", "state")

	snap, err := newSnapshotter(fsys).Snapshot("/src")
	require.NoError(t, err)

	_, ok := snap.Entry("/src/.git/HEAD")
	assert.False(t, ok)
	_, ok = snap.Entry("/src/.jj/repo")
	assert.False(t, ok)
	_, ok = snap.Entry("/src/main.go")
	assert.True(t, ok)
}

func TestWalker_IgnorePatterns(t *testing.T) {
	fsys := afero.NewMemMapFs()
	write(t, fsys, "/src/main.go", "package main")
	write(t, fsys, "/src/main_test.go", "package main")
	write(t, fsys, "/src/node_modules/dep/index.js", "x")

	var seen []string
	walker := fs.NewWalker(fsys)
	err := walker.Walk("/src", []string{"*_test.go", "node_modules"}, func(path string, info iofs.FileInfo) error {
		if !info.IsDir() {
			seen = append(seen, path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/main.go"}, seen)
}
