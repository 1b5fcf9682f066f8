// Package tracker persists before/after execution state and runs the
// up-to-date decision that determines whether a unit of work must execute.
package tracker

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.trai.ch/zerr"

	"go.trai.ch/skip/internal/core/domain"
	"go.trai.ch/skip/internal/core/ports"
)

// Tracker combines freshly computed before-execution state with the persisted
// history of the same identity to decide whether prior output can be reused.
type Tracker struct {
	store  ports.HistoryStore
	logger ports.Logger
	locks  keyedLocks
}

// New creates a Tracker over the given history store.
func New(store ports.HistoryStore, logger ports.Logger) *Tracker {
	return &Tracker{store: store, logger: logger}
}

// NeedsExecution evaluates the up-to-date decision for one identity. The
// decision is a pure function of the persisted record and the given state:
// repeated calls without an intervening RecordAfterState return the same
// decision. Read and write of one identity's record are mutually exclusive;
// different identities proceed fully concurrently.
func (t *Tracker) NeedsExecution(identity string, before domain.BeforeExecutionState) domain.Decision {
	unlock := t.locks.lock(identity)
	defer unlock()

	return decide(t.loadRecord(identity), before)
}

// RecordAfterState replaces the persisted record for identity with the given
// after state. When the build attempt was cancelled the call is a no-op: the
// history update is all-or-nothing, so an aborted run never pollutes the
// cache with partial results.
func (t *Tracker) RecordAfterState(ctx context.Context, identity string, after domain.AfterExecutionState) error {
	if ctx.Err() != nil {
		return nil
	}

	unlock := t.locks.lock(identity)
	defer unlock()

	if err := t.store.Put(identity, domain.RecordOf(after)); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to record execution state"), "identity", identity)
	}
	return nil
}

// PreviousOutputFingerprint returns the output fingerprint recorded for one
// property in the identity's last execution, or the empty fingerprint when
// there is none. Overlap detection uses it to tell a unit's own prior outputs
// from foreign content.
func (t *Tracker) PreviousOutputFingerprint(identity, property string) domain.Fingerprint {
	unlock := t.locks.lock(identity)
	defer unlock()

	record := t.loadRecord(identity)
	if record == nil {
		return domain.FingerprintFromEntries(domain.NormalizationRelative, nil)
	}
	if rec, ok := record.OutputFileFingerprints[property]; ok {
		return rec.Fingerprint()
	}
	return domain.FingerprintFromEntries(domain.NormalizationRelative, nil)
}

// loadRecord reads the persisted record. A corrupt record is recovered
// locally: the identity is treated as having no history, which forces
// execution. Never fatal to the build.
func (t *Tracker) loadRecord(identity string) *domain.ExecutionRecord {
	record, err := t.store.Get(identity)
	if err != nil {
		t.logger.Warn(fmt.Sprintf("discarding unreadable execution history for %s: %v", identity, err))
		return nil
	}
	return record
}

// decide evaluates the decision rules in order; the first match wins.
func decide(record *domain.ExecutionRecord, before domain.BeforeExecutionState) domain.Decision {
	// Rule 1: nothing to compare against.
	if record == nil {
		return domain.Execute(domain.ReasonNoHistory)
	}
	if !record.Successful {
		return domain.Execute("previous execution failed")
	}

	// Rule 2: the unit's logic changed.
	if record.ImplementationHash != before.Implementation.Hash {
		return domain.Execute(domain.ReasonImplementationChanged)
	}
	if len(record.AdditionalImplementationHashes) != len(before.AdditionalImplementations) {
		return domain.Execute(domain.ReasonImplementationChanged)
	}
	for i, impl := range before.AdditionalImplementations {
		if record.AdditionalImplementationHashes[i] != impl.Hash {
			return domain.Execute(domain.ReasonImplementationChanged)
		}
	}

	// Rule 3: a non-file input value changed.
	if name, changed := firstValueChange(record.InputPropertyHashes, before.InputProperties); changed {
		return domain.ExecuteProperty(domain.ReasonInputValueChanged, name)
	}

	// Rule 4: input file content changed.
	if name, changed := firstFingerprintChange(record.InputFileFingerprints, before.InputFileProperties); changed {
		return domain.ExecuteProperty(domain.ReasonInputFilesChanged, name)
	}

	// Rule 5: outputs were modified out-of-band since the last run. Stale
	// and foreign content must not linger, so all outputs are marked for
	// removal before re-execution. Roots downgraded by a persisting overlap
	// are exempt from this comparison.
	for _, name := range sortedNames(before.OutputFileProperties) {
		if overlapped(before.DetectedOverlap, name) {
			continue
		}
		recorded, ok := record.OutputFileFingerprints[name]
		if !ok || !recorded.Fingerprint().Equal(before.OutputFileProperties[name]) {
			decision := domain.ExecuteProperty(domain.ReasonOutputChanged, name)
			decision.CleanOutputs = true
			return decision
		}
	}
	for _, name := range sortedNames(record.OutputFileFingerprints) {
		if _, ok := before.OutputFileProperties[name]; !ok {
			decision := domain.ExecuteProperty(domain.ReasonOutputChanged, name)
			decision.CleanOutputs = true
			return decision
		}
	}

	// Rule 6: the hazard status changed in either direction. Never silently
	// reuse across a change in overlap state.
	if !before.DetectedOverlap.Equal(record.OverlappingOutputs) {
		return domain.Execute(domain.ReasonOverlapChanged)
	}

	return domain.UpToDate()
}

func overlapped(overlap *domain.OverlappingOutputs, property string) bool {
	return overlap != nil && overlap.PropertyName == property
}

func firstValueChange(recorded map[string]string, current map[string]domain.ValueSnapshot) (string, bool) {
	for _, name := range sortedNames(current) {
		hash, ok := recorded[name]
		if !ok || hash != current[name].Hash {
			return name, true
		}
	}
	for _, name := range sortedNames(recorded) {
		if _, ok := current[name]; !ok {
			return name, true
		}
	}
	return "", false
}

func sortedNames[V any](m map[string]V) []string {
	names := slices.Collect(maps.Keys(m))
	slices.Sort(names)
	return names
}

func firstFingerprintChange(recorded map[string]domain.FingerprintRecord, current map[string]domain.Fingerprint) (string, bool) {
	for _, name := range sortedNames(current) {
		rec, ok := recorded[name]
		if !ok || !rec.Fingerprint().Equal(current[name]) {
			return name, true
		}
	}
	for _, name := range sortedNames(recorded) {
		if _, ok := current[name]; !ok {
			return name, true
		}
	}
	return "", false
}
