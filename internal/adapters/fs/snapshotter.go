package fs

import (
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"

	"go.trai.ch/skip/internal/core/domain"
	"go.trai.ch/skip/internal/core/ports"
)

var _ ports.Snapshotter = (*Snapshotter)(nil)

// Snapshotter captures point-in-time views of file trees. Content hashes are
// cached by size and modification time, and concurrent snapshots of the same
// root share a single traversal.
type Snapshotter struct {
	fsys   afero.Fs
	walker *Walker
	group  singleflight.Group

	mu    sync.Mutex
	cache map[string]hashCacheEntry
}

// hashCacheEntry remembers the content hash of a path together with the stat
// attributes it was computed under. A matching size and mtime is taken as
// unchanged content.
type hashCacheEntry struct {
	size    int64
	modTime time.Time
	hash    string
}

// NewSnapshotter creates a Snapshotter over the given filesystem.
func NewSnapshotter(fsys afero.Fs, walker *Walker) *Snapshotter {
	return &Snapshotter{
		fsys:   fsys,
		walker: walker,
		cache:  make(map[string]hashCacheEntry),
	}
}

// Snapshot captures the tree under root. A missing root yields the empty
// snapshot, never an error: absence is a legitimate observable state. A root
// that is a single file yields a one-entry snapshot.
func (s *Snapshotter) Snapshot(root string) (domain.FileSystemSnapshot, error) {
	v, err, _ := s.group.Do(root, func() (any, error) {
		return s.snapshot(root)
	})
	if err != nil {
		return domain.FileSystemSnapshot{}, err
	}
	return v.(domain.FileSystemSnapshot), nil
}

func (s *Snapshotter) snapshot(root string) (domain.FileSystemSnapshot, error) {
	info, err := s.fsys.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewFileSystemSnapshot(root, nil), nil
		}
		return domain.FileSystemSnapshot{}, zerr.With(zerr.Wrap(err, "failed to stat snapshot root"), "path", root)
	}

	entries := make(map[string]domain.FileEntry)

	if !info.IsDir() {
		entry, err := s.fileEntry(root, info)
		if err != nil {
			return domain.FileSystemSnapshot{}, err
		}
		entries[root] = entry
		return domain.NewFileSystemSnapshot(root, entries), nil
	}

	err = s.walker.Walk(root, nil, func(path string, info iofs.FileInfo) error {
		if info.IsDir() {
			entries[path] = domain.FileEntry{Hash: domain.DirectoryHash, IsDir: true}
			return nil
		}
		entry, err := s.fileEntry(path, info)
		if err != nil {
			return err
		}
		entries[path] = entry
		return nil
	})
	if err != nil {
		return domain.FileSystemSnapshot{}, zerr.With(zerr.Wrap(err, "failed to snapshot tree"), "path", root)
	}

	return domain.NewFileSystemSnapshot(root, entries), nil
}

// fileEntry returns the snapshot entry for one regular file, reusing the
// cached hash when size and mtime are unchanged.
func (s *Snapshotter) fileEntry(path string, info iofs.FileInfo) (domain.FileEntry, error) {
	s.mu.Lock()
	cached, ok := s.cache[path]
	s.mu.Unlock()

	if ok && cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
		return domain.FileEntry{Hash: cached.hash, Size: info.Size()}, nil
	}

	hash, err := s.hashFile(path)
	if err != nil {
		return domain.FileEntry{}, err
	}

	s.mu.Lock()
	s.cache[path] = hashCacheEntry{size: info.Size(), modTime: info.ModTime(), hash: hash}
	s.mu.Unlock()

	return domain.FileEntry{Hash: hash, Size: info.Size()}, nil
}

// hashFile computes the content hash of a file.
func (s *Snapshotter) hashFile(path string) (string, error) {
	f, err := s.fsys.Open(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return fmt.Sprintf("%016x", digest.Sum64()), nil
}
