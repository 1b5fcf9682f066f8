// Package fs provides the file system adapters: tree walking and content
// snapshotting.
package fs

import (
	iofs "io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// Walker traverses file trees, skipping version control metadata and ignored
// names.
type Walker struct {
	fsys afero.Fs
}

// NewWalker creates a new Walker over the given filesystem.
func NewWalker(fsys afero.Fs) *Walker {
	return &Walker{fsys: fsys}
}

// Walk visits every entry under root in lexical order, calling visit for each
// file and directory except the root itself. Directories named .git or .jj and
// names matching an ignore pattern are pruned.
func (w *Walker) Walk(root string, ignores []string, visit func(path string, info iofs.FileInfo) error) error {
	return afero.Walk(w.fsys, root, func(path string, info iofs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		name := info.Name()
		if info.IsDir() && (name == ".git" || name == ".jj") {
			return filepath.SkipDir
		}
		if ignored(name, ignores) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		return visit(path, info)
	})
}

func ignored(name string, ignores []string) bool {
	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}
