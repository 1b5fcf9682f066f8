package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ImplementationSnapshot identifies the executable logic of a unit of work:
// the implementation's type name plus a hash over whatever defines its
// behaviour (command line, parameters baked into the implementation, version).
type ImplementationSnapshot struct {
	TypeName string `json:"type_name"`
	Hash     string `json:"hash"`
}

// SnapshotImplementation hashes the identifying parts of a unit's logic.
func SnapshotImplementation(typeName string, parts ...string) ImplementationSnapshot {
	digest := xxhash.New()
	_, _ = digest.WriteString(typeName)
	_, _ = digest.Write([]byte{0})
	for _, p := range parts {
		_, _ = digest.WriteString(p)
		_, _ = digest.Write([]byte{0})
	}
	return ImplementationSnapshot{
		TypeName: typeName,
		Hash:     fmt.Sprintf("%016x", digest.Sum64()),
	}
}

// ValueSnapshot is the hash of a non-file input value.
type ValueSnapshot struct {
	Hash string `json:"hash"`
}

// SnapshotValue hashes an input value.
func SnapshotValue(value string) ValueSnapshot {
	return ValueSnapshot{Hash: fmt.Sprintf("%016x", xxhash.Sum64String(value))}
}

// OverlappingOutputs records that a unit's output root contained content
// belonging to another unit. It is a capability downgrade, not a failure:
// output based work avoidance and stale output deletion are disabled for the
// affected root.
type OverlappingOutputs struct {
	PropertyName    string `json:"property_name"`
	OverlappingPath string `json:"overlapping_path"`
}

// Equal reports whether two detections describe the same hazard.
func (o *OverlappingOutputs) Equal(other *OverlappingOutputs) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.PropertyName == other.PropertyName && o.OverlappingPath == other.OverlappingPath
}

// ExecutionState captures the identity-relevant inputs and outputs of one
// execution attempt. States are value objects, created once per attempt and
// never mutated.
type ExecutionState struct {
	Implementation            ImplementationSnapshot
	AdditionalImplementations []ImplementationSnapshot
	InputProperties           map[string]ValueSnapshot
	InputFileProperties       map[string]Fingerprint
	OutputFileProperties      map[string]Fingerprint
}

// BeforeExecutionState is the state captured before a unit runs. It
// additionally carries raw pre-run snapshots of the declared output roots and
// the result of overlap detection, when any.
type BeforeExecutionState struct {
	ExecutionState
	OutputFileSnapshots map[string]FileSystemSnapshot
	DetectedOverlap     *OverlappingOutputs
}

// AfterExecutionState is the state persisted once a unit has actually run:
// the before state's identity fields plus freshly captured output
// fingerprints and a success flag.
type AfterExecutionState struct {
	ExecutionState
	DetectedOverlap *OverlappingOutputs
	Successful      bool
}

// NewAfterExecutionState derives the after state from a before state. The
// transition is an explicit pure function: the before state is left intact.
func NewAfterExecutionState(before BeforeExecutionState, outputs map[string]Fingerprint, successful bool) AfterExecutionState {
	return AfterExecutionState{
		ExecutionState: ExecutionState{
			Implementation:            before.Implementation,
			AdditionalImplementations: slices.Clone(before.AdditionalImplementations),
			InputProperties:           maps.Clone(before.InputProperties),
			InputFileProperties:       maps.Clone(before.InputFileProperties),
			OutputFileProperties:      maps.Clone(outputs),
		},
		DetectedOverlap: before.DetectedOverlap,
		Successful:      successful,
	}
}

// IdentityKey computes the cache key of an execution state:
// hash(implementation, additional implementations, sorted input property
// hashes, sorted input file fingerprints). Output content never contributes,
// so equal keys imply equal logic and equal input identity only.
func (s ExecutionState) IdentityKey() string {
	digest := xxhash.New()

	_, _ = digest.WriteString(s.Implementation.Hash)
	_, _ = digest.Write([]byte{0})
	for _, impl := range s.AdditionalImplementations {
		_, _ = digest.WriteString(impl.Hash)
		_, _ = digest.Write([]byte{0})
	}
	_, _ = digest.Write([]byte{0})

	for _, name := range sortedKeys(s.InputProperties) {
		_, _ = digest.WriteString(name)
		_, _ = digest.Write([]byte{'='})
		_, _ = digest.WriteString(s.InputProperties[name].Hash)
		_, _ = digest.Write([]byte{0})
	}
	_, _ = digest.Write([]byte{0})

	for _, name := range sortedKeys(s.InputFileProperties) {
		_, _ = digest.WriteString(name)
		_, _ = digest.Write([]byte{'='})
		_, _ = digest.WriteString(s.InputFileProperties[name].Hash())
		_, _ = digest.Write([]byte{0})
	}

	return fmt.Sprintf("%016x", digest.Sum64())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}

// HashStrings folds a sorted key=value view of a string map into a digest.
// Shared by identity computations that take parameter maps.
func HashStrings(pairs map[string]string) string {
	digest := xxhash.New()
	keys := slices.Collect(maps.Keys(pairs))
	slices.Sort(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(pairs[k])
		sb.WriteByte(0)
	}
	_, _ = digest.WriteString(sb.String())
	return fmt.Sprintf("%016x", digest.Sum64())
}
