// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/skip/internal/core/domain"

// Snapshotter captures the current on-disk state of a declared root.
//
//go:generate go run go.uber.org/mock/mockgen -source=snapshotter.go -destination=mocks/mock_snapshotter.go -package=mocks
type Snapshotter interface {
	// Snapshot returns an immutable view of the file tree under root.
	// A missing root yields an empty snapshot, never an error. Snapshots of
	// independent roots may be taken concurrently.
	Snapshot(root string) (domain.FileSystemSnapshot, error)
}
