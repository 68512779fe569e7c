package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/codeatlas-mcp/internal/collector"
	"github.com/dshills/codeatlas-mcp/internal/scanner"
	"github.com/dshills/codeatlas-mcp/internal/storage"
	"github.com/dshills/codeatlas-mcp/pkg/types"
)

// ErrPersist marks a durable-persistence failure. The scan result returned
// alongside it is complete and usable; only writing it out failed.
var ErrPersist = errors.New("failed to persist scan result")

// Config contains configuration for the store
type Config struct {
	Workers int  // Number of concurrent file scans (default: runtime.NumCPU())
	Persist bool // Whether to write durable and transient copies (default: true)
}

// Statistics contains statistics about one scan operation
type Statistics struct {
	FilesScanned   int
	FilesFailed    int
	UnitsExtracted int
	Duration       time.Duration
	ErrorMessages  []string
}

// Store caches one ScanResult per workspace path and coordinates full
// scans and single-file rescan merges. Mutations against the same
// workspace key are serialized; different workspaces proceed concurrently.
type Store struct {
	collector *collector.Collector
	scanner   *scanner.Scanner
	cfg       Config

	mu         sync.Mutex
	workspaces map[string]*workspaceState
}

// workspaceState holds the cached result and the per-key locks. scanMu
// serializes whole mutations (a full scan or a single-file merge, end to
// end) so neither can discard the other's work; mu guards only the result
// pointer so readers never block behind an in-flight scan.
type workspaceState struct {
	scanMu sync.Mutex
	mu     sync.Mutex
	result *types.ScanResult
}

// New creates a new Store instance
func New(cfg Config) *Store {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Store{
		collector:  collector.New(),
		scanner:    scanner.New(),
		cfg:        cfg,
		workspaces: make(map[string]*workspaceState),
	}
}

// workspace returns the state for a workspace key, creating it on first use
func (s *Store) workspace(root string) *workspaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[root]
	if !ok {
		ws = &workspaceState{}
		s.workspaces[root] = ws
	}
	return ws
}

// ScanWorkspace recomputes every collected file's entry and replaces the
// cached result wholesale. The previous cached result stays intact if the
// scan fails or is interrupted before completion. A persistence failure is
// reported via ErrPersist while the returned result remains valid.
func (s *Store) ScanWorkspace(ctx context.Context, workspaceRoot string) (*types.ScanResult, Statistics, error) {
	start := time.Now()
	stats := Statistics{ErrorMessages: []string{}}

	// One in-flight mutation per workspace: a merge that lands while this
	// scan reads files must not be overwritten by entries computed from
	// older bytes.
	ws := s.workspace(workspaceRoot)
	ws.scanMu.Lock()
	defer ws.scanMu.Unlock()

	files, err := s.collector.Collect(workspaceRoot)
	if err != nil {
		return nil, stats, err
	}

	entries := make([]types.FileEntry, len(files))
	var failed int32
	var errMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	semaphore := make(chan struct{}, s.cfg.Workers)

	for i := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			entry, scanErr := s.scanFile(gctx, files[i])
			if scanErr != nil {
				atomic.AddInt32(&failed, 1)
				errMu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages,
					fmt.Sprintf("%s: %v", files[i].RelPath, scanErr))
				errMu.Unlock()
			}
			entries[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Interrupted: leave the previous cached result untouched
		return nil, stats, err
	}

	result := &types.ScanResult{
		WorkspacePath: workspaceRoot,
		ScannedAt:     time.Now().UTC(),
		TotalFiles:    len(entries),
		Files:         entries,
	}

	for i := range entries {
		stats.UnitsExtracted += len(entries[i].SyntaxUnits)
	}
	stats.FilesScanned = len(entries)
	stats.FilesFailed = int(failed)
	stats.Duration = time.Since(start)

	ws.mu.Lock()
	ws.result = result
	ws.mu.Unlock()

	if err := s.persist(ctx, result); err != nil {
		return result, stats, err
	}
	return result, stats, nil
}

// RescanFile recomputes one file's entry and splices it into the cached
// result: replace-in-place when the path already has an entry, append
// otherwise. When no cached result exists yet a minimal one-file result is
// synthesized. Re-merging an unchanged file is idempotent.
func (s *Store) RescanFile(ctx context.Context, workspaceRoot, relPath string) (*types.ScanResult, error) {
	ws := s.workspace(workspaceRoot)
	ws.scanMu.Lock()
	defer ws.scanMu.Unlock()

	absPath := filepath.Join(workspaceRoot, filepath.FromSlash(relPath))
	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", relPath, err)
	}

	entry, err := s.scanner.Scan(ctx, relPath, source)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()

	var merged *types.ScanResult
	if ws.result == nil {
		merged = &types.ScanResult{
			WorkspacePath: workspaceRoot,
			ScannedAt:     time.Now().UTC(),
			TotalFiles:    1,
			Files:         []types.FileEntry{entry},
		}
	} else {
		// Copy-on-write so previously returned snapshots stay stable
		entries := make([]types.FileEntry, len(ws.result.Files))
		copy(entries, ws.result.Files)

		if idx := ws.result.FindFile(relPath); idx >= 0 {
			entries[idx] = entry
		} else {
			entries = append(entries, entry)
		}

		merged = &types.ScanResult{
			WorkspacePath: workspaceRoot,
			ScannedAt:     time.Now().UTC(),
			TotalFiles:    len(entries),
			Files:         entries,
		}
	}

	ws.result = merged
	ws.mu.Unlock()

	if err := s.persist(ctx, merged); err != nil {
		return merged, err
	}
	return merged, nil
}

// Result returns the current cached result for a workspace, if any
func (s *Store) Result(workspaceRoot string) (*types.ScanResult, bool) {
	ws := s.workspace(workspaceRoot)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.result == nil {
		return nil, false
	}
	return ws.result, true
}

// FileEntry returns the cached entry for one file, triggering an on-demand
// single-file rescan when the workspace cache has no entry for it
func (s *Store) FileEntry(ctx context.Context, workspaceRoot, relPath string) (*types.FileEntry, error) {
	if result, ok := s.Result(workspaceRoot); ok {
		if idx := result.FindFile(relPath); idx >= 0 {
			return &result.Files[idx], nil
		}
	}

	result, err := s.RescanFile(ctx, workspaceRoot, relPath)
	if err != nil && !errors.Is(err, ErrPersist) {
		return nil, err
	}
	if idx := result.FindFile(relPath); idx >= 0 {
		return &result.Files[idx], nil
	}
	return nil, fmt.Errorf("no entry for %s", relPath)
}

// LoadLastResult returns the last durably persisted result for a workspace
// without rescanning. Returns (nil, nil) when none has been persisted.
func (s *Store) LoadLastResult(ctx context.Context, workspaceRoot string) (*types.ScanResult, error) {
	dbPath := DurableDBPath(workspaceRoot)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, nil
	}

	db, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open durable store: %w", err)
	}
	defer func() { _ = db.Close() }()

	result, err := db.LoadResult(ctx, workspaceRoot)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return result, err
}

// scanFile produces the entry for one collected file. Read or parse
// failures degrade to a zero-coverage entry so the file still counts.
func (s *Store) scanFile(ctx context.Context, cf collector.CollectedFile) (types.FileEntry, error) {
	zero := types.FileEntry{
		FilePath:     cf.RelPath,
		TotalLines:   cf.TotalLines,
		CoveredLines: []int{},
		SyntaxUnits:  []types.SyntaxUnit{},
	}

	source, err := os.ReadFile(cf.AbsPath)
	if err != nil {
		return zero, err
	}

	entry, err := s.scanner.Scan(ctx, cf.RelPath, source)
	if err != nil {
		return zero, err
	}
	return entry, nil
}
