package transform

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.trai.ch/zerr"

	"go.trai.ch/skip/internal/core/domain"
	"go.trai.ch/skip/internal/core/ports"
)

// Executor runs transform definitions and validates what they produce.
type Executor struct {
	fsys   afero.Fs
	logger ports.Logger
}

// NewExecutor creates a transform executor over the given filesystem.
func NewExecutor(fsys afero.Fs, logger ports.Logger) *Executor {
	return &Executor{fsys: fsys, logger: logger}
}

// Execute runs one invocation of def against primaryInput, writing into
// workspace. A fresh action instance is constructed per invocation. The
// upstream-dependencies capability is supplied only when the definition
// declared the need; otherwise it is withheld even when deps is non-nil.
// Returned outputs have been validated against the location rules.
func (e *Executor) Execute(ctx context.Context, def *Definition, primaryInput, workspace string, deps Dependencies) ([]string, error) {
	if !def.requiresDependencies {
		deps = nil
	}
	caps := newRegistry(primaryInput, workspace, def.parameters, deps)

	e.logger.Info(fmt.Sprintf("transforming %s with %s", primaryInput, def.DisplayName()))

	outputs, err := def.newAction().Run(ctx, caps)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "transform failed"), "transform", def.DisplayName())
	}
	if outputs == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrNullTransformResult, ""), "transform", def.DisplayName())
	}

	for _, output := range outputs {
		if err := e.validateOutput(output, primaryInput, workspace); err != nil {
			return nil, zerr.With(err, "transform", def.DisplayName())
		}
	}
	return outputs, nil
}

// validateOutput enforces the output location rules: every reported path must
// exist and must be the primary input itself, the workspace itself, or nested
// under one of the two. Anything else escapes the tracked roots and would be
// invisible to later up-to-date checks.
func (e *Executor) validateOutput(output, primaryInput, workspace string) error {
	if _, err := e.fsys.Stat(output); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrOutputMissing, ""), "path", output)
	}
	if output == primaryInput || output == workspace {
		return nil
	}
	if nestedUnder(primaryInput, output) || nestedUnder(workspace, output) {
		return nil
	}
	return zerr.With(zerr.Wrap(domain.ErrOutputOutsideRoots, ""), "path", output)
}

func nestedUnder(root, path string) bool {
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
