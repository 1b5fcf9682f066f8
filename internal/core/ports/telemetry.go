package ports

import (
	"context"
	"io"
)

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Telemetry records per-unit progress vertices for the build.
type Telemetry interface {
	// Record starts recording a vertex for one unit of work.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes and closes the recording session.
	Close() error
}

// Vertex represents one recorded unit of work.
type Vertex interface {
	// Stdout returns a writer capturing the unit's output stream.
	Stdout() io.Writer
	// Cached marks the vertex as reused without execution.
	Cached()
	// Complete marks the vertex as finished, successfully or with an error.
	Complete(err error)
}
