package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dshills/codeatlas-mcp/pkg/types"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveResult replaces the workspace's persisted rows wholesale inside one
// transaction, so a failed save never leaves a half-written result behind.
func (s *SQLiteStorage) SaveResult(ctx context.Context, result *types.ScanResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO workspaces (root_path, scanned_at, total_files)
		VALUES (?, ?, ?)
		ON CONFLICT(root_path) DO UPDATE SET
			scanned_at = excluded.scanned_at,
			total_files = excluded.total_files
	`, result.WorkspacePath, result.ScannedAt.Format(time.RFC3339Nano), result.TotalFiles); err != nil {
		return fmt.Errorf("failed to upsert workspace: %w", err)
	}

	var workspaceID int64
	if err := tx.QueryRowContext(ctx,
		"SELECT id FROM workspaces WHERE root_path = ?", result.WorkspacePath).Scan(&workspaceID); err != nil {
		return fmt.Errorf("failed to resolve workspace id: %w", err)
	}

	// Cascade removes the old file and unit rows
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM files WHERE workspace_id = ?", workspaceID); err != nil {
		return fmt.Errorf("failed to clear previous entries: %w", err)
	}

	for i := range result.Files {
		if err := insertFileEntry(ctx, tx, workspaceID, &result.Files[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}
	return nil
}

func insertFileEntry(ctx context.Context, tx *sql.Tx, workspaceID int64, entry *types.FileEntry) error {
	covered, err := json.Marshal(entry.CoveredLines)
	if err != nil {
		return fmt.Errorf("failed to encode covered lines: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO files (workspace_id, file_path, total_lines, covered_lines, coverage_percent)
		VALUES (?, ?, ?, ?, ?)
	`, workspaceID, entry.FilePath, entry.TotalLines, string(covered), entry.CoveragePercent)
	if err != nil {
		return fmt.Errorf("failed to insert file %s: %w", entry.FilePath, err)
	}

	fileID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get file id: %w", err)
	}

	for _, u := range entry.SyntaxUnits {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO units (file_id, unit_type, name, file_path, start_line, start_col, end_line, end_col, content_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, fileID, string(u.Type), u.Name, u.FilePath, u.StartLine, u.StartColumn, u.EndLine, u.EndColumn, u.ContentHash); err != nil {
			return fmt.Errorf("failed to insert unit: %w", err)
		}
	}

	return nil
}

// LoadResult reconstructs the last persisted result for a workspace.
// Returns ErrNotFound when the workspace has never been persisted.
func (s *SQLiteStorage) LoadResult(ctx context.Context, workspacePath string) (*types.ScanResult, error) {
	var (
		workspaceID int64
		scannedAt   string
		totalFiles  int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, scanned_at, total_files FROM workspaces WHERE root_path = ?",
		workspacePath).Scan(&workspaceID, &scannedAt, &totalFiles)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, scannedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scanned_at: %w", err)
	}

	result := &types.ScanResult{
		WorkspacePath: workspacePath,
		ScannedAt:     ts,
		TotalFiles:    totalFiles,
		Files:         []types.FileEntry{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_path, total_lines, covered_lines, coverage_percent
		FROM files WHERE workspace_id = ? ORDER BY id
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fileIDs []int64
	for rows.Next() {
		var (
			fileID  int64
			entry   types.FileEntry
			covered string
		)
		if err := rows.Scan(&fileID, &entry.FilePath, &entry.TotalLines, &covered, &entry.CoveragePercent); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		entry.CoveredLines = []int{}
		if err := json.Unmarshal([]byte(covered), &entry.CoveredLines); err != nil {
			return nil, fmt.Errorf("failed to decode covered lines: %w", err)
		}
		entry.SyntaxUnits = []types.SyntaxUnit{}
		result.Files = append(result.Files, entry)
		fileIDs = append(fileIDs, fileID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}

	for i, fileID := range fileIDs {
		units, err := s.loadUnits(ctx, fileID)
		if err != nil {
			return nil, err
		}
		result.Files[i].SyntaxUnits = units
	}

	return result, nil
}

func (s *SQLiteStorage) loadUnits(ctx context.Context, fileID int64) ([]types.SyntaxUnit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT unit_type, name, file_path, start_line, start_col, end_line, end_col, content_hash
		FROM units WHERE file_id = ? ORDER BY id
	`, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load units: %w", err)
	}
	defer func() { _ = rows.Close() }()

	units := []types.SyntaxUnit{}
	for rows.Next() {
		var u types.SyntaxUnit
		var typ string
		if err := rows.Scan(&typ, &u.Name, &u.FilePath, &u.StartLine, &u.StartColumn,
			&u.EndLine, &u.EndColumn, &u.ContentHash); err != nil {
			return nil, fmt.Errorf("failed to scan unit row: %w", err)
		}
		u.Type = types.UnitType(typ)
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate units: %w", err)
	}

	return units, nil
}
