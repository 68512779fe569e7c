package storage

import (
	"context"
	"errors"

	"github.com/dshills/codeatlas-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when no persisted result exists for a workspace
	ErrNotFound = errors.New("not found")
)

// Storage defines the interface for durably persisting and reloading scan
// results. Implementations replace a workspace's rows wholesale on save;
// loading never triggers a scan.
type Storage interface {
	SaveResult(ctx context.Context, result *types.ScanResult) error
	LoadResult(ctx context.Context, workspacePath string) (*types.ScanResult, error)
	Close() error
}
