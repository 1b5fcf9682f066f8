package history

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"
	"github.com/spf13/afero"

	adapterfs "go.trai.ch/skip/internal/adapters/fs"
	"go.trai.ch/skip/internal/core/ports"
)

const NodeID graft.ID = "adapter.history_store"

// defaultDir resolves the history directory relative to the working tree.
func defaultDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return filepath.Join(cwd, ".skip", "history")
}

func init() {
	graft.Register(graft.Node[ports.HistoryStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{adapterfs.FilesystemNodeID},
		Run: func(ctx context.Context) (ports.HistoryStore, error) {
			fsys, err := graft.Dep[afero.Fs](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(fsys, defaultDir()), nil
		},
	})
}
