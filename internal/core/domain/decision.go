package domain

// Execution reasons reported by the up-to-date decision, in rule order.
const (
	ReasonNoHistory             = "no history"
	ReasonImplementationChanged = "implementation changed"
	ReasonInputValueChanged     = "input value changed"
	ReasonInputFilesChanged     = "input files changed"
	ReasonOutputChanged         = "output changed out-of-band"
	ReasonOverlapChanged        = "overlap state changed"
	ReasonForced                = "execution forced"
)

// Decision is the outcome of the up-to-date check for one unit of work.
type Decision struct {
	// NeedsExecution is false only when prior output can be reused as is.
	NeedsExecution bool
	// Reason names the first matching rule that forced execution.
	Reason string
	// Property names the input or output property that triggered the
	// decision, when a single property is attributable.
	Property string
	// CleanOutputs is set when stale or foreign content was found in the
	// declared output roots and must be removed before re-execution.
	CleanOutputs bool
}

// UpToDate is the reuse decision.
func UpToDate() Decision {
	return Decision{}
}

// Execute forces execution for the given reason.
func Execute(reason string) Decision {
	return Decision{NeedsExecution: true, Reason: reason}
}

// ExecuteProperty forces execution attributed to a named property.
func ExecuteProperty(reason, property string) Decision {
	return Decision{NeedsExecution: true, Reason: reason, Property: property}
}
