package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codeatlas-mcp/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), "const a = 1;\n")
	writeFile(t, filepath.Join(root, "lib", "b.ts"), "function b() {\n  return 2;\n}\n")
	writeFile(t, filepath.Join(root, "README.md"), "# readme\n")
	return root
}

func TestScanWorkspace_Full(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: false})

	result, stats, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, root, result.WorkspacePath)
	assert.Equal(t, 3, result.TotalFiles)
	assert.Len(t, result.Files, 3)
	assert.False(t, result.ScannedAt.IsZero())
	assert.Equal(t, 3, stats.FilesScanned)
	assert.Zero(t, stats.FilesFailed)
	assert.Positive(t, stats.UnitsExtracted)

	// The unrecognized extension still gets a zero-coverage entry
	idx := result.FindFile("README.md")
	require.GreaterOrEqual(t, idx, 0)
	entry := result.Files[idx]
	assert.Empty(t, entry.SyntaxUnits)
	assert.Empty(t, entry.CoveredLines)
	assert.Equal(t, 0.0, entry.CoveragePercent)
	assert.Equal(t, 2, entry.TotalLines)
}

func TestScanWorkspace_UnreadableRoot(t *testing.T) {
	s := New(Config{Persist: false})
	_, _, err := s.ScanWorkspace(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestScanWorkspace_InterruptionKeepsPreviousResult(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: false})

	first, _, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = s.ScanWorkspace(ctx, root)
	require.Error(t, err)

	cached, ok := s.Result(root)
	require.True(t, ok)
	assert.Same(t, first, cached, "an interrupted scan must not overwrite the cache")
}

func TestRescanFile_MergeReplacesInPlace(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: false})

	_, _, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "a.ts"), "const a = 1;\nconst extra = 2;\n")

	merged, err := s.RescanFile(context.Background(), root, "a.ts")
	require.NoError(t, err)

	assert.Equal(t, 3, merged.TotalFiles, "replace-in-place keeps totals")
	idx := merged.FindFile("a.ts")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, 3, merged.Files[idx].TotalLines)
}

func TestRescanFile_MergeIdempotence(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: false})

	_, _, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)

	once, err := s.RescanFile(context.Background(), root, "a.ts")
	require.NoError(t, err)
	twice, err := s.RescanFile(context.Background(), root, "a.ts")
	require.NoError(t, err)

	assert.Equal(t, once.TotalFiles, twice.TotalFiles)

	count := 0
	for _, f := range twice.Files {
		if f.FilePath == "a.ts" {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one entry per file path")

	a, b := once.Files[once.FindFile("a.ts")], twice.Files[twice.FindFile("a.ts")]
	assert.Equal(t, a.SyntaxUnits, b.SyntaxUnits, "unchanged file yields byte-identical hashes")
	assert.Equal(t, a.CoveredLines, b.CoveredLines)
	assert.Equal(t, a.CoveragePercent, b.CoveragePercent)
}

func TestRescanFile_AppendsNewFile(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: false})

	_, _, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "fresh.ts"), "const fresh = true;\n")

	merged, err := s.RescanFile(context.Background(), root, "fresh.ts")
	require.NoError(t, err)
	assert.Equal(t, 4, merged.TotalFiles)
	assert.GreaterOrEqual(t, merged.FindFile("fresh.ts"), 0)
}

func TestRescanFile_SynthesizesResultWithoutCache(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: false})

	_, ok := s.Result(root)
	require.False(t, ok)

	merged, err := s.RescanFile(context.Background(), root, "a.ts")
	require.NoError(t, err)

	assert.Equal(t, 1, merged.TotalFiles)
	assert.Len(t, merged.Files, 1)
	assert.Equal(t, "a.ts", merged.Files[0].FilePath)
	assert.False(t, merged.ScannedAt.IsZero())
}

func TestRescanFile_RefreshesTimestamp(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: false})

	first, _, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)

	merged, err := s.RescanFile(context.Background(), root, "a.ts")
	require.NoError(t, err)
	assert.False(t, merged.ScannedAt.Before(first.ScannedAt))
}

func TestFileEntry_OnDemandScan(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: false})

	entry, err := s.FileEntry(context.Background(), root, "lib/b.ts")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "lib/b.ts", entry.FilePath)
	assert.NotEmpty(t, entry.SyntaxUnits)
}

func TestLoadLastResult(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: true})

	// Nothing persisted yet: absent, not an error
	result, err := s.LoadLastResult(context.Background(), root)
	require.NoError(t, err)
	assert.Nil(t, result)

	scanned, _, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)

	// A fresh store sees the durable copy without rescanning
	other := New(Config{Persist: true})
	loaded, err := other.LoadLastResult(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, scanned.WorkspacePath, loaded.WorkspacePath)
	assert.Equal(t, scanned.TotalFiles, loaded.TotalFiles)
	require.Len(t, loaded.Files, len(scanned.Files))

	ai, bi := scanned.FindFile("a.ts"), loaded.FindFile("a.ts")
	require.GreaterOrEqual(t, ai, 0)
	require.GreaterOrEqual(t, bi, 0)
	assert.Equal(t, scanned.Files[ai].SyntaxUnits, loaded.Files[bi].SyntaxUnits)
	assert.Equal(t, scanned.Files[ai].CoveredLines, loaded.Files[bi].CoveredLines)
}

func TestScanWorkspace_TransientCopyWritten(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: true})

	_, _, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)

	data, err := os.ReadFile(TransientJSONPath(root))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"workspacePath\"")
	assert.Contains(t, string(data), "\"syntaxUnits\"")
}

func TestScanWorkspace_StateDirExcludedFromScan(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: true})

	_, _, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)

	// Second scan must not pick up the durable DB written by the first
	result, _, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalFiles)
	for _, f := range result.Files {
		assert.NotContains(t, f.FilePath, StateDirName)
	}
}

func TestFullScanDoesNotDiscardConcurrentMerge(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: false})
	path := filepath.Join(root, "a.ts")

	// Mutations against one workspace key are serialized end to end, so
	// whichever of the two lands second sees the edited file: either the
	// merge replaces the scan's entry, or the scan re-reads the new bytes.
	for i := 0; i < 25; i++ {
		require.NoError(t, os.WriteFile(path, []byte("const a = 1;\n"), 0o644))
		_, _, err := s.ScanWorkspace(context.Background(), root)
		require.NoError(t, err)

		errs := make(chan error, 2)
		go func() {
			_, _, err := s.ScanWorkspace(context.Background(), root)
			errs <- err
		}()
		go func() {
			if err := os.WriteFile(path, []byte("const a = 1;\nconst b = 2;\n"), 0o644); err != nil {
				errs <- err
				return
			}
			_, err := s.RescanFile(context.Background(), root, "a.ts")
			errs <- err
		}()
		require.NoError(t, <-errs)
		require.NoError(t, <-errs)

		result, ok := s.Result(root)
		require.True(t, ok)
		idx := result.FindFile("a.ts")
		require.GreaterOrEqual(t, idx, 0)
		assert.Equal(t, 3, result.Files[idx].TotalLines,
			"stale full-scan entry overwrote the merged one")
	}
}

func TestConcurrentMerges(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: false})

	_, _, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := s.RescanFile(context.Background(), root, "a.ts")
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}

	result, ok := s.Result(root)
	require.True(t, ok)
	assert.Equal(t, 3, result.TotalFiles)

	count := 0
	for _, f := range result.Files {
		if f.FilePath == "a.ts" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSnapshotStability(t *testing.T) {
	root := newWorkspace(t)
	s := New(Config{Persist: false})

	first, _, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)
	entriesBefore := len(first.Files)

	writeFile(t, filepath.Join(root, "later.ts"), "const later = 1;\n")
	_, err = s.RescanFile(context.Background(), root, "later.ts")
	require.NoError(t, err)

	assert.Len(t, first.Files, entriesBefore,
		"merges are copy-on-write; earlier snapshots do not mutate")
}

func TestZeroEntryShape(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data.bin"), "\x00\x01\n")

	s := New(Config{Persist: false})
	result, _, err := s.ScanWorkspace(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalFiles)

	entry := result.Files[0]
	assert.Equal(t, types.FileEntry{
		FilePath:     "data.bin",
		TotalLines:   2,
		CoveredLines: []int{},
		SyntaxUnits:  []types.SyntaxUnit{},
	}, entry)
}
