package domain

// FileRoot is one declared file property of a unit of work: a root directory
// (or single file) plus the normalization strategy its fingerprint is taken
// under.
type FileRoot struct {
	Path          string
	Normalization Normalization
}

// Unit is the declaration of one task-shaped unit of work, as loaded from
// configuration. What the command does is opaque to the engine; only its
// identity and its declared inputs and outputs matter here.
type Unit struct {
	Name        InternedString
	Command     []string
	InputValues map[string]string
	InputRoots  map[string]FileRoot
	OutputRoots map[string]FileRoot
}

// Implementation snapshots the unit's executable logic. For command units
// the command line is the logic, so changing the command forces execution.
func (u *Unit) Implementation() ImplementationSnapshot {
	return SnapshotImplementation("command", u.Command...)
}

// Identity returns the history key of the unit. Task-shaped units are keyed
// by name: the same declared unit owns the same history slot across runs.
func (u *Unit) Identity() string {
	return u.Name.String()
}
