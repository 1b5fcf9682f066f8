// Package shell provides the shell executor adapter.
package shell

import (
	"context"
	"io"
	"os/exec"
	"strings"

	"go.trai.ch/zerr"

	"go.trai.ch/skip/internal/core/ports"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new shell executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs command, streaming combined stdout and stderr to out. The
// command inherits the process environment and working directory. An empty
// command succeeds without doing anything.
func (e *Executor) Execute(ctx context.Context, command []string, out io.Writer) error {
	if len(command) == 0 {
		return nil
	}

	e.logger.Info("running " + strings.Join(command, " "))

	cmd := exec.CommandContext(ctx, command[0], command[1:]...) //nolint:gosec // user provided command
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		exitCode := -1 // Unknown or signal
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode), "command", command[0])
	}

	return nil
}
