// Package overlap flags output roots shared between units of work. A
// detected overlap is a capability downgrade, never a failure: it disables
// output-fingerprint work avoidance and stale-output deletion for the
// affected root while the unit still runs normally.
package overlap

import (
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/skip/internal/core/domain"
)

type declaredRoot struct {
	unit     string
	property string
	path     string
}

// Detector keeps a registry of the declared input and output roots of every
// unit scheduled in the current build attempt.
type Detector struct {
	mu    sync.RWMutex
	roots []declaredRoot
}

// NewDetector creates an empty registry.
func NewDetector() *Detector {
	return &Detector{}
}

// Register records a unit's declared roots. Must be called for every unit
// before any Detect call of the attempt, so detection sees the full picture.
func (d *Detector) Register(unitID string, inputRoots, outputRoots map[string]domain.FileRoot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for property, root := range inputRoots {
		d.roots = append(d.roots, declaredRoot{unit: unitID, property: property, path: filepath.Clean(root.Path)})
	}
	for property, root := range outputRoots {
		d.roots = append(d.roots, declaredRoot{unit: unitID, property: property, path: filepath.Clean(root.Path)})
	}
}

// Detect inspects the pre-run snapshot of one output root of unitID. Overlap
// is flagged for the first path that falls under another unit's declared root
// and is not already accounted for by the unit's own previous-run output
// fingerprint for that property.
func (d *Detector) Detect(unitID, propertyName string, snapshot domain.FileSystemSnapshot, previous domain.Fingerprint) *domain.OverlappingOutputs {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, path := range snapshot.Paths() {
		entry, _ := snapshot.Entry(path)
		if previous.Accounts(snapshot.Root(), path, entry) {
			continue
		}
		for _, root := range d.roots {
			if root.unit == unitID {
				continue
			}
			if covers(root.path, path) {
				return &domain.OverlappingOutputs{
					PropertyName:    propertyName,
					OverlappingPath: path,
				}
			}
		}
	}
	return nil
}

// covers reports whether path is root itself or nested under it.
func covers(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
