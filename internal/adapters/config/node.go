package config

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/spf13/afero"

	adapterfs "go.trai.ch/skip/internal/adapters/fs"
	"go.trai.ch/skip/internal/core/ports"
)

const NodeID graft.ID = "adapter.config_loader"

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{adapterfs.FilesystemNodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			fsys, err := graft.Dep[afero.Fs](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(fsys, DefaultFilename), nil
		},
	})
}
