package ports

import (
	"context"
	"io"
)

// Executor runs the actual work of a command-shaped unit once the up-to-date
// decision has demanded execution. What the command does is opaque here.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command, streaming its combined output to out.
	// It returns an error if the command cannot be started or exits non-zero.
	Execute(ctx context.Context, command []string, out io.Writer) error
}
