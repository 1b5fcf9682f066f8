package runner

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/spf13/afero"

	adapterfs "go.trai.ch/skip/internal/adapters/fs"
	"go.trai.ch/skip/internal/adapters/history"
	"go.trai.ch/skip/internal/adapters/logger"
	"go.trai.ch/skip/internal/adapters/shell"
	"go.trai.ch/skip/internal/adapters/telemetry"
	"go.trai.ch/skip/internal/core/ports"
	"go.trai.ch/skip/internal/engine/overlap"
	"go.trai.ch/skip/internal/engine/tracker"
)

const NodeID graft.ID = "engine.runner"

func init() {
	graft.Register(graft.Node[*Runner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			adapterfs.FilesystemNodeID,
			adapterfs.SnapshotterNodeID,
			history.NodeID,
			shell.NodeID,
			telemetry.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Runner, error) {
			fsys, err := graft.Dep[afero.Fs](ctx)
			if err != nil {
				return nil, err
			}
			snapshotter, err := graft.Dep[ports.Snapshotter](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.HistoryStore](ctx)
			if err != nil {
				return nil, err
			}
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tr := tracker.New(store, log)
			return New(tr, snapshotter, executor, overlap.NewDetector(), tel, log, fsys), nil
		},
	})
}
