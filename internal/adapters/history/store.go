// Package history persists execution records as one JSON file per identity.
package history

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"go.trai.ch/zerr"

	"go.trai.ch/skip/internal/core/domain"
	"go.trai.ch/skip/internal/core/ports"
)

var _ ports.HistoryStore = (*Store)(nil)

// Store implements ports.HistoryStore on a directory of JSON files, one per
// identity. The record on disk is always the complete state of the identity's
// last execution; writes replace the whole file atomically.
type Store struct {
	fsys afero.Fs
	dir  string
	mu   sync.Mutex
}

// NewStore creates a history store rooted at dir.
func NewStore(fsys afero.Fs, dir string) *Store {
	return &Store{fsys: fsys, dir: filepath.Clean(dir)}
}

// recordPath derives the file name from the identity. Hashing keeps arbitrary
// identity strings (slashes, spaces) out of the file name.
func (s *Store) recordPath(identity string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%x.json", sha256.Sum256([]byte(identity))))
}

// Get retrieves the execution record for identity. A missing record is not an
// error: it returns nil, nil. An unreadable or unparsable record fails with
// ErrHistoryCorrupt so callers can recover by re-executing.
func (s *Store) Get(identity string) (*domain.ExecutionRecord, error) {
	data, err := afero.ReadFile(s.fsys, s.recordPath(identity))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrHistoryCorrupt, err), "failed to read execution record"), "identity", identity)
	}

	var record domain.ExecutionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrHistoryCorrupt, err), "failed to unmarshal execution record"), "identity", identity)
	}
	return &record, nil
}

// Put replaces the record for identity. The record is written to a temporary
// file and renamed into place, so a crash mid-write leaves either the old
// record or the new one, never a truncated file.
func (s *Store) Put(identity string, record domain.ExecutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to marshal execution record"), "identity", identity)
	}

	if err := s.fsys.MkdirAll(s.dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create history directory")
	}

	path := s.recordPath(identity)
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fsys, tmp, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write execution record"), "identity", identity)
	}
	if err := s.fsys.Rename(tmp, path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to publish execution record"), "identity", identity)
	}
	return nil
}
