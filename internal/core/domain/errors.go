package domain

import "go.trai.ch/zerr"

var (
	// ErrPropertyFinalized is returned when set is called on a property that
	// has entered finalization. The metadata names the property and its owner.
	ErrPropertyFinalized = zerr.New("property is finalized and cannot be changed")

	// ErrValueUnavailable is returned by a strict get before the owning unit
	// of work has started executing.
	ErrValueUnavailable = zerr.New("property value is not yet available")

	// ErrUpstreamFailed wraps a failure evaluating the upstream of a derived
	// property. The metadata names both properties.
	ErrUpstreamFailed = zerr.New("upstream property evaluation failed")

	// ErrNullTransformResult is returned when a transform returns a nil
	// output list.
	ErrNullTransformResult = zerr.New("transform returned null result")

	// ErrOutputMissing is returned when a transform lists an output path
	// that does not exist on disk.
	ErrOutputMissing = zerr.New("transform output file does not exist")

	// ErrOutputOutsideRoots is returned when a transform lists an output
	// path outside its input file and workspace directory.
	ErrOutputOutsideRoots = zerr.New("transform output file is not a child of the transform's input file or workspace directory")

	// ErrUnknownCapability is returned when a transform requests a
	// capability tag that was not supplied for the invocation.
	ErrUnknownCapability = zerr.New("unknown capability")

	// ErrHistoryCorrupt is returned when a persisted execution record cannot
	// be read. Recovered at the tracker boundary by treating the identity as
	// having no history.
	ErrHistoryCorrupt = zerr.New("execution history record is corrupt")

	// ErrUnknownNormalization is returned for an unrecognized normalization
	// strategy name in configuration.
	ErrUnknownNormalization = zerr.New("unknown normalization strategy")

	// ErrUnitAlreadyExists is returned when a configuration declares two
	// units with the same name.
	ErrUnitAlreadyExists = zerr.New("unit already exists")

	// ErrUnitNotFound is returned when a requested unit is not configured.
	ErrUnitNotFound = zerr.New("unit not found")

	// ErrBuildExecutionFailed is returned when one or more units failed.
	ErrBuildExecutionFailed = zerr.New("build execution failed")
)
