// Package runner drives configured units of work: it finalizes their
// properties, captures before-execution state, consults the up-to-date
// decision and executes only what cannot be reused.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/afero"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"go.trai.ch/skip/internal/core/domain"
	"go.trai.ch/skip/internal/core/ports"
	"go.trai.ch/skip/internal/engine/overlap"
	"go.trai.ch/skip/internal/engine/tracker"
)

// UnitStatus represents the status of a unit of work.
type UnitStatus string

const (
	// StatusPending indicates the unit is waiting to be processed.
	StatusPending UnitStatus = "Pending"
	// StatusRunning indicates the unit is currently being processed.
	StatusRunning UnitStatus = "Running"
	// StatusCompleted indicates the unit executed successfully.
	StatusCompleted UnitStatus = "Completed"
	// StatusFailed indicates the unit's execution failed.
	StatusFailed UnitStatus = "Failed"
	// StatusCached indicates the unit was up-to-date and skipped.
	StatusCached UnitStatus = "Cached"
)

// Runner processes units with a bounded worker pool. Units are independent:
// the runner imposes no ordering beyond the pool limit.
type Runner struct {
	tracker     *tracker.Tracker
	snapshotter ports.Snapshotter
	executor    ports.Executor
	detector    *overlap.Detector
	telemetry   ports.Telemetry
	logger      ports.Logger
	fsys        afero.Fs

	mu     sync.RWMutex
	status map[domain.InternedString]UnitStatus
}

// New creates a Runner.
func New(
	tr *tracker.Tracker,
	snapshotter ports.Snapshotter,
	executor ports.Executor,
	detector *overlap.Detector,
	telemetry ports.Telemetry,
	logger ports.Logger,
	fsys afero.Fs,
) *Runner {
	return &Runner{
		tracker:     tr,
		snapshotter: snapshotter,
		executor:    executor,
		detector:    detector,
		telemetry:   telemetry,
		logger:      logger,
		fsys:        fsys,
		status:      make(map[domain.InternedString]UnitStatus),
	}
}

// Status returns the current status of one unit.
func (r *Runner) Status(name domain.InternedString) UnitStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status[name]
}

// Statuses returns a copy of the status of every known unit.
func (r *Runner) Statuses() map[string]UnitStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]UnitStatus, len(r.status))
	for name, status := range r.status {
		out[name.String()] = status
	}
	return out
}

func (r *Runner) setStatus(name domain.InternedString, status UnitStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[name] = status
}

// Run processes all units with at most parallelism workers. force bypasses
// the up-to-date decision and executes everything. The first failing unit
// cancels the ones still waiting.
func (r *Runner) Run(ctx context.Context, units []domain.Unit, parallelism int, force bool) error {
	if parallelism < 1 {
		parallelism = 1
	}

	configured, err := r.prepare(units)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, cu := range configured {
		g.Go(func() error {
			return r.runUnit(gctx, cu, force)
		})
	}

	if err := g.Wait(); err != nil {
		return errors.Join(domain.ErrBuildExecutionFailed, err)
	}
	return nil
}

// prepare validates the unit list, registers declared roots with the overlap
// detector and builds each unit's property set.
func (r *Runner) prepare(units []domain.Unit) ([]*configuredUnit, error) {
	configured := make([]*configuredUnit, 0, len(units))
	seen := make(map[string]struct{}, len(units))

	for _, unit := range units {
		identity := unit.Identity()
		if _, dup := seen[identity]; dup {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnitAlreadyExists, ""), "unit", identity)
		}
		seen[identity] = struct{}{}

		cu, err := configure(unit)
		if err != nil {
			return nil, err
		}
		configured = append(configured, cu)

		r.detector.Register(identity, unit.InputRoots, unit.OutputRoots)
		r.setStatus(unit.Name, StatusPending)
	}
	return configured, nil
}

func (r *Runner) runUnit(ctx context.Context, cu *configuredUnit, force bool) error {
	identity := cu.unit.Identity()
	r.setStatus(cu.unit.Name, StatusRunning)

	ctx, vertex := r.telemetry.Record(ctx, identity)

	if err := r.process(ctx, cu, force, vertex); err != nil {
		r.setStatus(cu.unit.Name, StatusFailed)
		return zerr.With(zerr.Wrap(err, "unit execution failed"), "unit", identity)
	}
	return nil
}

func (r *Runner) process(ctx context.Context, cu *configuredUnit, force bool, vertex ports.Vertex) error {
	identity := cu.unit.Identity()

	// Execution is starting: every strict property is finalized now, before
	// any value can enter fingerprinting.
	cu.props.StartExecution()

	before, err := r.captureBeforeState(cu)
	if err != nil {
		vertex.Complete(err)
		return err
	}

	decision := r.tracker.NeedsExecution(identity, before)
	if force {
		decision = domain.Execute(domain.ReasonForced)
	}

	if !decision.NeedsExecution {
		r.setStatus(cu.unit.Name, StatusCached)
		vertex.Cached()
		vertex.Complete(nil)
		return nil
	}

	r.logger.Info(fmt.Sprintf("executing %s: %s", identity, describe(decision)))

	if decision.CleanOutputs && before.DetectedOverlap == nil {
		if err := r.cleanOutputs(cu.unit); err != nil {
			vertex.Complete(err)
			return err
		}
	}

	execErr := r.executor.Execute(ctx, cu.unit.Command, vertex.Stdout())

	outputs, snapErr := r.fingerprintOutputs(cu.unit)
	if snapErr != nil {
		vertex.Complete(snapErr)
		return errors.Join(execErr, snapErr)
	}

	after := domain.NewAfterExecutionState(before, outputs, execErr == nil)
	if recErr := r.tracker.RecordAfterState(ctx, identity, after); recErr != nil {
		// History is advisory: a failed write costs a future rebuild, not
		// this one.
		r.logger.Error(recErr)
	}

	vertex.Complete(execErr)
	if execErr != nil {
		return execErr
	}

	r.setStatus(cu.unit.Name, StatusCompleted)
	return nil
}

// captureBeforeState snapshots all declared roots in parallel and assembles
// the unit's before-execution state, including overlap detection against the
// previous run's output fingerprints.
func (r *Runner) captureBeforeState(cu *configuredUnit) (domain.BeforeExecutionState, error) {
	unit := cu.unit
	identity := unit.Identity()

	inputProps := make(map[string]domain.ValueSnapshot, len(cu.values))
	for name, p := range cu.values {
		value, err := p.Get()
		if err != nil {
			return domain.BeforeExecutionState{}, err
		}
		inputProps[name] = domain.SnapshotValue(value)
	}

	var mu sync.Mutex
	inputFps := make(map[string]domain.Fingerprint, len(unit.InputRoots))
	outputFps := make(map[string]domain.Fingerprint, len(unit.OutputRoots))
	outputSnaps := make(map[string]domain.FileSystemSnapshot, len(unit.OutputRoots))

	var g errgroup.Group
	for name, root := range unit.InputRoots {
		g.Go(func() error {
			snap, err := r.snapshotter.Snapshot(root.Path)
			if err != nil {
				return err
			}
			fp := domain.FingerprintSnapshots(root.Normalization, snap)
			mu.Lock()
			inputFps[name] = fp
			mu.Unlock()
			return nil
		})
	}
	for name, root := range unit.OutputRoots {
		g.Go(func() error {
			snap, err := r.snapshotter.Snapshot(root.Path)
			if err != nil {
				return err
			}
			fp := domain.FingerprintSnapshots(root.Normalization, snap)
			mu.Lock()
			outputFps[name] = fp
			outputSnaps[name] = snap
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.BeforeExecutionState{}, err
	}

	before := domain.BeforeExecutionState{
		ExecutionState: domain.ExecutionState{
			Implementation:       unit.Implementation(),
			InputProperties:      inputProps,
			InputFileProperties:  inputFps,
			OutputFileProperties: outputFps,
		},
		OutputFileSnapshots: outputSnaps,
	}

	// First detected overlap wins; iteration is sorted so the pick is stable.
	for _, name := range sortedKeys(outputSnaps) {
		previous := r.tracker.PreviousOutputFingerprint(identity, name)
		if o := r.detector.Detect(identity, name, outputSnaps[name], previous); o != nil {
			r.logger.Warn(fmt.Sprintf(
				"output property %s of %s overlaps %s: work avoidance downgraded for this root",
				o.PropertyName, identity, o.OverlappingPath))
			before.DetectedOverlap = o
			break
		}
	}

	return before, nil
}

// cleanOutputs removes every declared output root ahead of re-execution.
func (r *Runner) cleanOutputs(unit domain.Unit) error {
	for _, name := range sortedKeys(unit.OutputRoots) {
		root := unit.OutputRoots[name]
		r.logger.Info(fmt.Sprintf("removing stale output root %s", root.Path))
		if err := r.fsys.RemoveAll(root.Path); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to remove stale outputs"), "path", root.Path)
		}
	}
	return nil
}

// fingerprintOutputs captures the post-run state of every output root.
func (r *Runner) fingerprintOutputs(unit domain.Unit) (map[string]domain.Fingerprint, error) {
	var mu sync.Mutex
	outputs := make(map[string]domain.Fingerprint, len(unit.OutputRoots))

	var g errgroup.Group
	for name, root := range unit.OutputRoots {
		g.Go(func() error {
			snap, err := r.snapshotter.Snapshot(root.Path)
			if err != nil {
				return err
			}
			fp := domain.FingerprintSnapshots(root.Normalization, snap)
			mu.Lock()
			outputs[name] = fp
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func describe(decision domain.Decision) string {
	if decision.Property != "" {
		return fmt.Sprintf("%s (%s)", decision.Reason, decision.Property)
	}
	return decision.Reason
}
