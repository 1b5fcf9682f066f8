package telemetry

import (
	"context"
	"io"

	"go.trai.ch/skip/internal/core/ports"
)

var _ ports.Telemetry = (*Noop)(nil)

// Noop is a telemetry implementation that records nothing. Used when progress
// rendering is disabled.
type Noop struct{}

// NewNoop creates a no-op telemetry recorder.
func NewNoop() *Noop {
	return &Noop{}
}

// Record returns a vertex that discards everything.
func (n *Noop) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noopVertex{}
}

// Close does nothing.
func (n *Noop) Close() error {
	return nil
}

type noopVertex struct{}

func (noopVertex) Stdout() io.Writer { return io.Discard }
func (noopVertex) Cached()           {}
func (noopVertex) Complete(error)    {}
