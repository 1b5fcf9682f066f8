package domain

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Normalization selects the key a file path is recorded under when
// fingerprinting, which controls how much of the path contributes to the
// content identity.
type Normalization int

const (
	// NormalizationAbsolute keys entries by their absolute path. Moving a
	// tree changes the fingerprint.
	NormalizationAbsolute Normalization = iota
	// NormalizationRelative keys entries by their path relative to the
	// declared root. Relocating the whole tree leaves the fingerprint
	// unchanged.
	NormalizationRelative
	// NormalizationNameOnly keys entries by base name alone.
	NormalizationNameOnly
	// NormalizationContentOnly ignores paths entirely; only the set of
	// content hashes contributes.
	NormalizationContentOnly
)

// String returns the configuration-facing name of the strategy.
func (n Normalization) String() string {
	switch n {
	case NormalizationAbsolute:
		return "absolute"
	case NormalizationRelative:
		return "relative"
	case NormalizationNameOnly:
		return "name-only"
	case NormalizationContentOnly:
		return "content-only"
	default:
		return fmt.Sprintf("normalization(%d)", int(n))
	}
}

// ParseNormalization maps a configuration string to a strategy.
// The empty string defaults to relative, the portable choice.
func ParseNormalization(s string) (Normalization, error) {
	switch s {
	case "", "relative":
		return NormalizationRelative, nil
	case "absolute":
		return NormalizationAbsolute, nil
	case "name-only":
		return NormalizationNameOnly, nil
	case "content-only":
		return NormalizationContentOnly, nil
	default:
		return 0, ErrUnknownNormalization
	}
}

// Key computes the fingerprint key for path under root.
func (n Normalization) Key(root, path string, entry FileEntry) string {
	switch n {
	case NormalizationRelative:
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return path
		}
		return rel
	case NormalizationNameOnly:
		return filepath.Base(path)
	case NormalizationContentOnly:
		return entry.Hash
	default:
		return path
	}
}

// Fingerprint is a normalized, deterministically ordered mapping of keys to
// content hashes. Equal fingerprints mean no observable change for decision
// purposes, independent of scan order or absolute location.
type Fingerprint struct {
	strategy Normalization
	entries  map[string]string
}

// FingerprintSnapshots derives a fingerprint from one or more snapshots under
// the given normalization strategy. Empty or missing roots yield the empty
// mapping.
func FingerprintSnapshots(strategy Normalization, snapshots ...FileSystemSnapshot) Fingerprint {
	entries := make(map[string]string)
	for _, snap := range snapshots {
		for _, path := range snap.Paths() {
			entry, _ := snap.Entry(path)
			entries[strategy.Key(snap.Root(), path, entry)] = entry.Hash
		}
	}
	return Fingerprint{strategy: strategy, entries: entries}
}

// FingerprintFromEntries reconstructs a fingerprint from persisted form.
func FingerprintFromEntries(strategy Normalization, entries map[string]string) Fingerprint {
	return Fingerprint{strategy: strategy, entries: maps.Clone(entries)}
}

// Strategy returns the normalization strategy the fingerprint was taken under.
func (f Fingerprint) Strategy() Normalization {
	return f.strategy
}

// Len returns the number of entries.
func (f Fingerprint) Len() int {
	return len(f.entries)
}

// Empty reports whether the fingerprint is the empty mapping.
func (f Fingerprint) Empty() bool {
	return len(f.entries) == 0
}

// Get returns the content hash recorded for key.
func (f Fingerprint) Get(key string) (string, bool) {
	h, ok := f.entries[key]
	return h, ok
}

// Keys returns all keys, sorted.
func (f Fingerprint) Keys() []string {
	keys := slices.Collect(maps.Keys(f.entries))
	slices.Sort(keys)
	return keys
}

// Entries returns a copy of the key to content hash mapping.
func (f Fingerprint) Entries() map[string]string {
	return maps.Clone(f.entries)
}

// Equal reports whether two fingerprints record the same strategy and the
// same key to hash mapping.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.strategy == other.strategy && maps.Equal(f.entries, other.entries)
}

// Accounts reports whether the given snapshot path is already covered by the
// fingerprint: the path's key is present and records the same content hash.
// Used by overlap detection to separate a unit's own outputs from foreign
// content; a foreign modification of a known path is not accounted for.
func (f Fingerprint) Accounts(root, path string, entry FileEntry) bool {
	hash, ok := f.entries[f.strategy.Key(root, path, entry)]
	return ok && hash == entry.Hash
}

// Hash returns a single digest of the whole mapping. Keys are sorted before
// hashing, so the result is insertion-order independent.
func (f Fingerprint) Hash() string {
	digest := xxhash.New()
	for _, key := range f.Keys() {
		_, _ = digest.WriteString(key)
		_, _ = digest.Write([]byte{0})
		_, _ = digest.WriteString(f.entries[key])
		_, _ = digest.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", digest.Sum64())
}
