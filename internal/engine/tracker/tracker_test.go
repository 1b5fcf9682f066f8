package tracker_test

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

	"go.trai.ch/skip/internal/core/domain"
	"go.trai.ch/skip/internal/core/ports/mocks"
	"go.trai.ch/skip/internal/engine/tracker"
)

const identity = "compile"

func before() domain.BeforeExecutionState {
	return domain.BeforeExecutionState{
		ExecutionState: domain.ExecutionState{
			Implementation: domain.SnapshotImplementation("command", "go", "build"),
			InputProperties: map[string]domain.ValueSnapshot{
				"mode": domain.SnapshotValue("release"),
			},
			InputFileProperties: map[string]domain.Fingerprint{
				"sources": domain.FingerprintFromEntries(domain.NormalizationRelative, map[string]string{
					"main.go": "aaaa",
				}),
			},
			OutputFileProperties: map[string]domain.Fingerprint{
				"binary": domain.FingerprintFromEntries(domain.NormalizationRelative, map[string]string{
					"bin": "bbbb",
				}),
			},
		},
	}
}

// recordFor simulates a completed run whose outputs matched state.
func recordFor(state domain.BeforeExecutionState) *domain.ExecutionRecord {
	after := domain.NewAfterExecutionState(state, state.OutputFileProperties, true)
	rec := domain.RecordOf(after)
	return &rec
}

func newTracker(t *testing.T, record *domain.ExecutionRecord) *tracker.Tracker {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockHistoryStore(ctrl)
	store.EXPECT().Get(identity).Return(record, nil).AnyTimes()
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return tracker.New(store, logger)
}

func TestNeedsExecution_NoHistory(t *testing.T) {
	tr := newTracker(t, nil)

	decision := tr.NeedsExecution(identity, before())
	if !decision.NeedsExecution {
		t.Fatal("expected execution")
	}
	if decision.Reason != domain.ReasonNoHistory {
		t.Errorf("reason = %q", decision.Reason)
	}
}

func TestNeedsExecution_UpToDate(t *testing.T) {
	tr := newTracker(t, recordFor(before()))

	decision := tr.NeedsExecution(identity, before())
	if decision.NeedsExecution {
		t.Fatalf("expected up-to-date, got %q", decision.Reason)
	}
}

func TestNeedsExecution_IsPureFunctionOfInputs(t *testing.T) {
	tr := newTracker(t, recordFor(before()))

	first := tr.NeedsExecution(identity, before())
	for range 5 {
		if got := tr.NeedsExecution(identity, before()); got != first {
			t.Fatalf("decision changed without a record update: %+v vs %+v", got, first)
		}
	}
}

func TestNeedsExecution_ImplementationChanged(t *testing.T) {
	tr := newTracker(t, recordFor(before()))

	changed := before()
	changed.Implementation = domain.SnapshotImplementation("command", "go", "test")

	decision := tr.NeedsExecution(identity, changed)
	if decision.Reason != domain.ReasonImplementationChanged {
		t.Errorf("reason = %q", decision.Reason)
	}
}

func TestNeedsExecution_AdditionalImplementationChanged(t *testing.T) {
	base := before()
	base.AdditionalImplementations = []domain.ImplementationSnapshot{
		domain.SnapshotImplementation("plugin", "v1"),
	}
	tr := newTracker(t, recordFor(base))

	changed := before()
	changed.AdditionalImplementations = []domain.ImplementationSnapshot{
		domain.SnapshotImplementation("plugin", "v2"),
	}

	decision := tr.NeedsExecution(identity, changed)
	if decision.Reason != domain.ReasonImplementationChanged {
		t.Errorf("reason = %q", decision.Reason)
	}
}

func TestNeedsExecution_InputValueChanged(t *testing.T) {
	tr := newTracker(t, recordFor(before()))

	changed := before()
	changed.InputProperties["mode"] = domain.SnapshotValue("debug")

	decision := tr.NeedsExecution(identity, changed)
	if decision.Reason != domain.ReasonInputValueChanged {
		t.Fatalf("reason = %q", decision.Reason)
	}
	if decision.Property != "mode" {
		t.Errorf("property = %q", decision.Property)
	}
}

func TestNeedsExecution_InputFilesChanged(t *testing.T) {
	tr := newTracker(t, recordFor(before()))

	changed := before()
	changed.InputFileProperties["sources"] = domain.FingerprintFromEntries(
		domain.NormalizationRelative, map[string]string{"main.go": "cccc"})

	decision := tr.NeedsExecution(identity, changed)
	if decision.Reason != domain.ReasonInputFilesChanged {
		t.Fatalf("reason = %q", decision.Reason)
	}
	if decision.Property != "sources" {
		t.Errorf("property = %q", decision.Property)
	}
}

func TestNeedsExecution_OutputChangedOutOfBand(t *testing.T) {
	tr := newTracker(t, recordFor(before()))

	changed := before()
	changed.OutputFileProperties["binary"] = domain.FingerprintFromEntries(
		domain.NormalizationRelative, map[string]string{"bin": "tampered"})

	decision := tr.NeedsExecution(identity, changed)
	if decision.Reason != domain.ReasonOutputChanged {
		t.Fatalf("reason = %q", decision.Reason)
	}
	if !decision.CleanOutputs {
		t.Error("out-of-band output change must mark outputs for removal")
	}
}

func TestNeedsExecution_RemovedOutputPropertyForcesExecution(t *testing.T) {
	tr := newTracker(t, recordFor(before()))

	changed := before()
	changed.OutputFileProperties = nil

	decision := tr.NeedsExecution(identity, changed)
	if decision.Reason != domain.ReasonOutputChanged {
		t.Fatalf("reason = %q", decision.Reason)
	}
	if decision.Property != "binary" {
		t.Errorf("property = %q", decision.Property)
	}
}

func TestNeedsExecution_OverlapStateChanged(t *testing.T) {
	tr := newTracker(t, recordFor(before()))

	// Newly detected overlap. The overlapped root is exempt from the
	// out-of-band comparison, so the overlap rule is what fires.
	changed := before()
	changed.OutputFileProperties["binary"] = domain.FingerprintFromEntries(
		domain.NormalizationRelative, map[string]string{"bin": "foreign"})
	changed.DetectedOverlap = &domain.OverlappingOutputs{
		PropertyName:    "binary",
		OverlappingPath: "/out/foreign",
	}

	decision := tr.NeedsExecution(identity, changed)
	if decision.Reason != domain.ReasonOverlapChanged {
		t.Fatalf("reason = %q", decision.Reason)
	}
	if decision.CleanOutputs {
		t.Error("overlapped outputs must not be marked for removal")
	}
}

func TestNeedsExecution_OverlapCleared(t *testing.T) {
	overlapped := before()
	overlapped.DetectedOverlap = &domain.OverlappingOutputs{
		PropertyName:    "binary",
		OverlappingPath: "/out/foreign",
	}
	tr := newTracker(t, recordFor(overlapped))

	// The hazard disappeared; conservative path still forces execution.
	decision := tr.NeedsExecution(identity, before())
	if decision.Reason != domain.ReasonOverlapChanged {
		t.Errorf("reason = %q", decision.Reason)
	}
}

func TestNeedsExecution_PersistentOverlapIsUpToDate(t *testing.T) {
	overlapped := before()
	overlapped.DetectedOverlap = &domain.OverlappingOutputs{
		PropertyName:    "binary",
		OverlappingPath: "/out/foreign",
	}
	tr := newTracker(t, recordFor(overlapped))

	decision := tr.NeedsExecution(identity, overlapped)
	if decision.NeedsExecution {
		t.Errorf("unchanged overlap state should not force execution, got %q", decision.Reason)
	}
}

func TestNeedsExecution_PreviousExecutionFailed(t *testing.T) {
	after := domain.NewAfterExecutionState(before(), before().OutputFileProperties, false)
	rec := domain.RecordOf(after)
	tr := newTracker(t, &rec)

	decision := tr.NeedsExecution(identity, before())
	if !decision.NeedsExecution {
		t.Error("a failed previous execution must not be reused")
	}
}

func TestNeedsExecution_CorruptHistoryForcesExecution(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockHistoryStore(ctrl)
	store.EXPECT().Get(identity).Return(nil, domain.ErrHistoryCorrupt).AnyTimes()
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).MinTimes(1)

	tr := tracker.New(store, logger)

	decision := tr.NeedsExecution(identity, before())
	if decision.Reason != domain.ReasonNoHistory {
		t.Errorf("corrupt history should degrade to no history, got %q", decision.Reason)
	}
}

func TestRecordAfterState_RoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockHistoryStore(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	tr := tracker.New(store, logger)

	state := before()
	after := domain.NewAfterExecutionState(state, state.OutputFileProperties, true)
	rec := domain.RecordOf(after)

	store.EXPECT().Put(identity, rec).Return(nil)
	if err := tr.RecordAfterState(context.Background(), identity, after); err != nil {
		t.Fatalf("RecordAfterState failed: %v", err)
	}

	store.EXPECT().Get(identity).Return(&rec, nil)
	decision := tr.NeedsExecution(identity, state)
	if decision.NeedsExecution {
		t.Errorf("state just recorded must be up-to-date, got %q", decision.Reason)
	}
}

func TestRecordAfterState_CancelledAttemptWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockHistoryStore(ctrl) // no Put expectation: any call fails the test
	logger := mocks.NewMockLogger(ctrl)
	tr := tracker.New(store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := before()
	after := domain.NewAfterExecutionState(state, state.OutputFileProperties, true)
	if err := tr.RecordAfterState(ctx, identity, after); err != nil {
		t.Fatalf("cancelled record must be a silent no-op, got %v", err)
	}
}

func TestPreviousOutputFingerprint(t *testing.T) {
	tr := newTracker(t, recordFor(before()))

	fp := tr.PreviousOutputFingerprint(identity, "binary")
	if hash, ok := fp.Get("bin"); !ok || hash != "bbbb" {
		t.Errorf("unexpected previous fingerprint: %v", fp.Entries())
	}

	missing := tr.PreviousOutputFingerprint(identity, "unknown")
	if !missing.Empty() {
		t.Error("unknown property should yield the empty fingerprint")
	}
}
