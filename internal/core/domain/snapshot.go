// Package domain defines the value objects of the work-avoidance engine:
// file system snapshots, fingerprints, execution states and decisions.
package domain

import (
	"maps"
	"slices"
)

// DirectoryHash is the content hash recorded for directory entries.
// Directories have no content of their own; a fixed marker keeps them
// distinguishable from files in fingerprint comparisons.
const DirectoryHash = "dir"

// FileEntry describes one path inside a snapshot.
type FileEntry struct {
	// Hash is the content hash of the file, or DirectoryHash for directories.
	Hash string `json:"hash"`
	// Size is the file length in bytes, zero for directories.
	Size int64 `json:"size,omitempty"`
	// IsDir reports whether the entry is a directory.
	IsDir bool `json:"is_dir,omitempty"`
}

// FileSystemSnapshot is an immutable view of the file tree under a declared
// root at a single point in time. A missing root produces an empty snapshot,
// never an error.
type FileSystemSnapshot struct {
	root    string
	entries map[string]FileEntry
}

// NewFileSystemSnapshot creates a snapshot rooted at root. The entries map is
// copied so later mutation by the caller cannot affect the snapshot.
func NewFileSystemSnapshot(root string, entries map[string]FileEntry) FileSystemSnapshot {
	return FileSystemSnapshot{
		root:    root,
		entries: maps.Clone(entries),
	}
}

// Root returns the declared root the snapshot was taken under.
func (s FileSystemSnapshot) Root() string {
	return s.root
}

// Empty reports whether the snapshot contains no entries.
func (s FileSystemSnapshot) Empty() bool {
	return len(s.entries) == 0
}

// Len returns the number of entries in the snapshot.
func (s FileSystemSnapshot) Len() int {
	return len(s.entries)
}

// Entry returns the entry recorded for path.
func (s FileSystemSnapshot) Entry(path string) (FileEntry, bool) {
	e, ok := s.entries[path]
	return e, ok
}

// Paths returns all paths in the snapshot, sorted. Sorting here means two
// scans that visited files in different orders expose identical views.
func (s FileSystemSnapshot) Paths() []string {
	paths := slices.Collect(maps.Keys(s.entries))
	slices.Sort(paths)
	return paths
}
