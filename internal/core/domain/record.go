package domain

// FingerprintRecord is the persisted form of a Fingerprint.
type FingerprintRecord struct {
	Strategy string            `json:"strategy"`
	Entries  map[string]string `json:"entries,omitempty"`
}

// ExecutionRecord is the single persisted history slot for one unit-of-work
// identity. A new record replaces the prior one; history is not a log.
type ExecutionRecord struct {
	ImplementationHash             string                       `json:"implementation_hash"`
	AdditionalImplementationHashes []string                     `json:"additional_implementation_hashes,omitempty"`
	InputPropertyHashes            map[string]string            `json:"input_property_hashes,omitempty"`
	InputFileFingerprints          map[string]FingerprintRecord `json:"input_file_fingerprints,omitempty"`
	OutputFileFingerprints         map[string]FingerprintRecord `json:"output_file_fingerprints,omitempty"`
	OverlappingOutputs             *OverlappingOutputs          `json:"overlapping_outputs,omitempty"`
	Successful                     bool                         `json:"successful"`
}

// RecordOf converts an after-execution state into its persisted form.
func RecordOf(after AfterExecutionState) ExecutionRecord {
	rec := ExecutionRecord{
		ImplementationHash:     after.Implementation.Hash,
		InputPropertyHashes:    make(map[string]string, len(after.InputProperties)),
		InputFileFingerprints:  make(map[string]FingerprintRecord, len(after.InputFileProperties)),
		OutputFileFingerprints: make(map[string]FingerprintRecord, len(after.OutputFileProperties)),
		OverlappingOutputs:     after.DetectedOverlap,
		Successful:             after.Successful,
	}
	for _, impl := range after.AdditionalImplementations {
		rec.AdditionalImplementationHashes = append(rec.AdditionalImplementationHashes, impl.Hash)
	}
	for name, value := range after.InputProperties {
		rec.InputPropertyHashes[name] = value.Hash
	}
	for name, fp := range after.InputFileProperties {
		rec.InputFileFingerprints[name] = recordFingerprint(fp)
	}
	for name, fp := range after.OutputFileProperties {
		rec.OutputFileFingerprints[name] = recordFingerprint(fp)
	}
	return rec
}

func recordFingerprint(fp Fingerprint) FingerprintRecord {
	return FingerprintRecord{
		Strategy: fp.Strategy().String(),
		Entries:  fp.Entries(),
	}
}

// Fingerprint restores the value form of a persisted fingerprint. An
// unknown strategy falls back to relative; the entry comparison still
// detects any change.
func (r FingerprintRecord) Fingerprint() Fingerprint {
	strategy, err := ParseNormalization(r.Strategy)
	if err != nil {
		strategy = NormalizationRelative
	}
	return FingerprintFromEntries(strategy, r.Entries)
}
