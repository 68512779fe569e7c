package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/codeatlas-mcp/internal/storage"
	"github.com/dshills/codeatlas-mcp/pkg/types"
)

// StateDirName is the tool's workspace-local state directory. The collector
// excludes it from traversal.
const StateDirName = ".codeatlas"

// DurableDBPath returns the workspace-local durable persistence target
func DurableDBPath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, StateDirName, "atlas.db")
}

// TransientJSONPath returns the inspectable copy's location in the system
// temp directory, keyed by a digest of the workspace path
func TransientJSONPath(workspaceRoot string) string {
	sum := sha256.Sum256([]byte(workspaceRoot))
	name := hex.EncodeToString(sum[:8]) + ".json"
	return filepath.Join(os.TempDir(), "codeatlas", name)
}

// persist writes the durable SQLite copy and the transient JSON copy.
// Failures are wrapped in ErrPersist so callers can distinguish them from
// scan failures; the in-memory result stays valid either way.
func (s *Store) persist(ctx context.Context, result *types.ScanResult) error {
	if !s.cfg.Persist {
		return nil
	}

	if err := s.persistDurable(ctx, result); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := s.persistTransient(result); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func (s *Store) persistDurable(ctx context.Context, result *types.ScanResult) error {
	dbPath := DurableDBPath(result.WorkspacePath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}

	db, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return db.SaveResult(ctx, result)
}

func (s *Store) persistTransient(result *types.ScanResult) error {
	path := TransientJSONPath(result.WorkspacePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
