package domain_test

import (
	"testing"

	"go.trai.ch/skip/internal/core/domain"
)

func snapshotAt(root string, files map[string]domain.FileEntry) domain.FileSystemSnapshot {
	return domain.NewFileSystemSnapshot(root, files)
}

func TestFingerprint_RelocatedTreesEqualUnderRelative(t *testing.T) {
	left := snapshotAt("/home/a/src", map[string]domain.FileEntry{
		"/home/a/src/main.go":     {Hash: "aaaa", Size: 10},
		"/home/a/src/pkg":         {Hash: domain.DirectoryHash, IsDir: true},
		"/home/a/src/pkg/util.go": {Hash: "bbbb", Size: 20},
	})
	right := snapshotAt("/tmp/work/src", map[string]domain.FileEntry{
		"/tmp/work/src/main.go":     {Hash: "aaaa", Size: 10},
		"/tmp/work/src/pkg":         {Hash: domain.DirectoryHash, IsDir: true},
		"/tmp/work/src/pkg/util.go": {Hash: "bbbb", Size: 20},
	})

	relLeft := domain.FingerprintSnapshots(domain.NormalizationRelative, left)
	relRight := domain.FingerprintSnapshots(domain.NormalizationRelative, right)
	if !relLeft.Equal(relRight) {
		t.Errorf("relative fingerprints differ for relocated identical trees:\n%v\n%v", relLeft.Entries(), relRight.Entries())
	}

	nameLeft := domain.FingerprintSnapshots(domain.NormalizationNameOnly, left)
	nameRight := domain.FingerprintSnapshots(domain.NormalizationNameOnly, right)
	if !nameLeft.Equal(nameRight) {
		t.Error("name-only fingerprints differ for relocated identical trees")
	}

	absLeft := domain.FingerprintSnapshots(domain.NormalizationAbsolute, left)
	absRight := domain.FingerprintSnapshots(domain.NormalizationAbsolute, right)
	if absLeft.Equal(absRight) {
		t.Error("absolute fingerprints must differ for relocated trees")
	}
}

func TestFingerprint_ContentOnlyIgnoresPaths(t *testing.T) {
	left := snapshotAt("/a", map[string]domain.FileEntry{
		"/a/one.txt": {Hash: "c1"},
		"/a/two.txt": {Hash: "c2"},
	})
	right := snapshotAt("/b", map[string]domain.FileEntry{
		"/b/renamed.txt":     {Hash: "c1"},
		"/b/sub/another.txt": {Hash: "c2"},
	})

	fpLeft := domain.FingerprintSnapshots(domain.NormalizationContentOnly, left)
	fpRight := domain.FingerprintSnapshots(domain.NormalizationContentOnly, right)
	if !fpLeft.Equal(fpRight) {
		t.Error("content-only fingerprints should ignore path differences")
	}
}

func TestFingerprint_HashIsOrderIndependent(t *testing.T) {
	// Two scans of the same tree never produce a different digest,
	// whatever order the walker visited files in. Snapshot entries are
	// map-backed, so building them in reverse simulates a different
	// visiting order.
	files := map[string]domain.FileEntry{
		"/r/a.txt": {Hash: "h1"},
		"/r/b.txt": {Hash: "h2"},
		"/r/c.txt": {Hash: "h3"},
	}
	reversed := map[string]domain.FileEntry{
		"/r/c.txt": {Hash: "h3"},
		"/r/b.txt": {Hash: "h2"},
		"/r/a.txt": {Hash: "h1"},
	}

	first := domain.FingerprintSnapshots(domain.NormalizationRelative, snapshotAt("/r", files))
	second := domain.FingerprintSnapshots(domain.NormalizationRelative, snapshotAt("/r", reversed))

	if first.Hash() != second.Hash() {
		t.Errorf("fingerprint digest depends on insertion order: %s vs %s", first.Hash(), second.Hash())
	}
}

func TestFingerprint_EmptyRootIsEmptyMapping(t *testing.T) {
	fp := domain.FingerprintSnapshots(domain.NormalizationRelative, snapshotAt("/missing", nil))
	if !fp.Empty() {
		t.Errorf("expected empty mapping, got %d entries", fp.Len())
	}
}

func TestParseNormalization(t *testing.T) {
	cases := map[string]domain.Normalization{
		"":             domain.NormalizationRelative,
		"relative":     domain.NormalizationRelative,
		"absolute":     domain.NormalizationAbsolute,
		"name-only":    domain.NormalizationNameOnly,
		"content-only": domain.NormalizationContentOnly,
	}
	for in, want := range cases {
		got, err := domain.ParseNormalization(in)
		if err != nil {
			t.Fatalf("ParseNormalization(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseNormalization(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := domain.ParseNormalization("bogus"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestFingerprint_Accounts(t *testing.T) {
	snap := snapshotAt("/out", map[string]domain.FileEntry{
		"/out/bin": {Hash: "h1"},
	})
	fp := domain.FingerprintSnapshots(domain.NormalizationRelative, snap)

	entry, _ := snap.Entry("/out/bin")
	if !fp.Accounts("/out", "/out/bin", entry) {
		t.Error("fingerprint should account for its own entry")
	}
	if fp.Accounts("/out", "/out/foreign", domain.FileEntry{Hash: "hx"}) {
		t.Error("fingerprint should not account for an unknown path")
	}
	if fp.Accounts("/out", "/out/bin", domain.FileEntry{Hash: "h2"}) {
		t.Error("fingerprint should not account for a known path with changed content")
	}
}
