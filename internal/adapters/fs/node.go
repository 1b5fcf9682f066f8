package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/spf13/afero"

	"go.trai.ch/skip/internal/core/ports"
)

const (
	FilesystemNodeID  graft.ID = "adapter.fs.filesystem"
	WalkerNodeID      graft.ID = "adapter.fs.walker"
	SnapshotterNodeID graft.ID = "adapter.fs.snapshotter"
)

func init() {
	// Filesystem Node (shared by every adapter touching disk)
	graft.Register(graft.Node[afero.Fs]{
		ID:        FilesystemNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (afero.Fs, error) {
			return afero.NewOsFs(), nil
		},
	})

	// Walker Node (Concrete implementation needed by Snapshotter)
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{FilesystemNodeID},
		Run: func(ctx context.Context) (*Walker, error) {
			fsys, err := graft.Dep[afero.Fs](ctx)
			if err != nil {
				return nil, err
			}
			return NewWalker(fsys), nil
		},
	})

	// Snapshotter Node
	graft.Register(graft.Node[ports.Snapshotter]{
		ID:        SnapshotterNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{FilesystemNodeID, WalkerNodeID},
		Run: func(ctx context.Context) (ports.Snapshotter, error) {
			fsys, err := graft.Dep[afero.Fs](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewSnapshotter(fsys, walker), nil
		},
	})
}
