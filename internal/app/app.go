// Package app implements the application layer for skip.
package app

import (
	"context"
	"runtime"

	"go.trai.ch/zerr"

	"go.trai.ch/skip/internal/core/domain"
	"go.trai.ch/skip/internal/core/ports"
	"go.trai.ch/skip/internal/engine/runner"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	runner       *runner.Runner
	telemetry    ports.Telemetry
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, r *runner.Runner, telemetry ports.Telemetry) *App {
	return &App{
		configLoader: loader,
		runner:       r,
		telemetry:    telemetry,
	}
}

// Run loads the configured units, selects the requested ones and drives them
// through the work-avoidance engine. An empty selection means all units.
func (a *App) Run(ctx context.Context, names []string, parallelism int, force bool) error {
	defer a.telemetry.Close() //nolint:errcheck // Best effort flush

	units, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	selected, err := selectUnits(units, names)
	if err != nil {
		return err
	}

	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}

	return a.runner.Run(ctx, selected, parallelism, force)
}

// selectUnits filters units by name, preserving declaration order. Unknown
// names fail rather than silently running nothing.
func selectUnits(units []domain.Unit, names []string) ([]domain.Unit, error) {
	if len(names) == 0 {
		return units, nil
	}

	byName := make(map[string]domain.Unit, len(units))
	for _, unit := range units {
		byName[unit.Identity()] = unit
	}

	selected := make([]domain.Unit, 0, len(names))
	for _, name := range names {
		unit, ok := byName[name]
		if !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnitNotFound, ""), "unit", name)
		}
		selected = append(selected, unit)
	}
	return selected, nil
}
