package telemetry

import (
	"context"
	"os"

	"github.com/grindlemire/graft"

	"go.trai.ch/skip/internal/core/ports"
)

const NodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Telemetry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Telemetry, error) {
			if os.Getenv("SKIP_NO_PROGRESS") != "" {
				return NewNoop(), nil
			}
			return New(), nil
		},
	})
}
