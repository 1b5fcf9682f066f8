// Package properties implements the lifecycle of deferred values feeding
// fingerprint computation. A property moves forward through
// UNSET → EXPLICIT → FINALIZING → FINALIZED and no state is ever revisited,
// which is what lets fingerprinting trust the value it observed.
package properties

// State is the lifecycle state of a property.
type State int32

const (
	// StateUnset means no value has been set yet.
	StateUnset State = iota
	// StateExplicit means a value has been set and may still be replaced.
	StateExplicit
	// StateFinalizing means finalization has begun; the value can no longer
	// be changed but is not yet published to readers.
	StateFinalizing
	// StateFinalized means the value is immutable and lock-free to read.
	StateFinalized
)

// String returns the lifecycle state name.
func (s State) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateExplicit:
		return "explicit"
	case StateFinalizing:
		return "finalizing"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}
