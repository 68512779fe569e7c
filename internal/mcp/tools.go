package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/codeatlas-mcp/internal/store"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeScanFailed    = -32001 // Workspace scan failed
	ErrorCodeRescanFailed  = -32002 // Single-file rescan failed
)

// Path validation errors
var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)

// handleScanWorkspace handles the scan_workspace tool invocation
func (s *Server) handleScanWorkspace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requiredWorkspacePath(args)
	if err != nil {
		return nil, err
	}

	result, stats, err := s.store.ScanWorkspace(ctx, path)
	persistFailed := errors.Is(err, store.ErrPersist)
	if err != nil && !persistFailed {
		return nil, newMCPError(ErrorCodeScanFailed, "workspace scan failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"workspace_path":  result.WorkspacePath,
		"scanned_at":      result.ScannedAt.Format("2006-01-02T15:04:05Z07:00"),
		"total_files":     result.TotalFiles,
		"units_extracted": stats.UnitsExtracted,
		"files_failed":    stats.FilesFailed,
		"duration_ms":     stats.Duration.Milliseconds(),
	}

	// Persistence failure is reported alongside the valid result, never
	// instead of it
	if persistFailed {
		response["persist_error"] = err.Error()
	}

	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRescanFile handles the rescan_file tool invocation
func (s *Server) handleRescanFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requiredWorkspacePath(args)
	if err != nil {
		return nil, err
	}

	file, ok := args["file"].(string)
	if !ok || file == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file parameter is required", map[string]interface{}{
			"param":  "file",
			"reason": "missing or empty",
		})
	}

	result, err := s.store.RescanFile(ctx, path, file)
	persistFailed := errors.Is(err, store.ErrPersist)
	if err != nil && !persistFailed {
		return nil, newMCPError(ErrorCodeRescanFailed, "file rescan failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"scanned_at":  result.ScannedAt.Format("2006-01-02T15:04:05Z07:00"),
		"total_files": result.TotalFiles,
	}
	if idx := result.FindFile(file); idx >= 0 {
		entry := result.Files[idx]
		response["file"] = entry.FilePath
		response["total_lines"] = entry.TotalLines
		response["coverage_percent"] = entry.CoveragePercent
		response["unit_count"] = len(entry.SyntaxUnits)
	}
	if persistFailed {
		response["persist_error"] = err.Error()
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleLookupUnits handles the lookup_units tool invocation
func (s *Server) handleLookupUnits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requiredWorkspacePath(args)
	if err != nil {
		return nil, err
	}

	file, ok := args["file"].(string)
	if !ok || file == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file parameter is required", map[string]interface{}{
			"param":  "file",
			"reason": "missing or empty",
		})
	}

	query, _ := args["query"].(string)

	units, err := s.lookup.Lookup(ctx, path, file, query)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Size and kind signals so callers can weigh matches without walking
	// the unit list
	commentCount := 0
	lineCount := 0
	for i := range units {
		if units[i].IsComment() {
			commentCount++
		}
		lineCount += units[i].Span()
	}

	response := map[string]interface{}{
		"file":          file,
		"query":         query,
		"count":         len(units),
		"comment_count": commentCount,
		"line_count":    lineCount,
		"units":         units,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetLastScan handles the get_last_scan tool invocation
func (s *Server) handleGetLastScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requiredWorkspacePath(args)
	if err != nil {
		return nil, err
	}

	result, err := s.store.LoadLastResult(ctx, path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load last result", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if result == nil {
		response := map[string]interface{}{
			"scanned": false,
			"path":    path,
			"message": "No persisted scan result. Use scan_workspace to scan this workspace.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to encode result", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(string(data)), nil
}

// Helper functions

// requiredWorkspacePath extracts and validates the path parameter
func requiredWorkspacePath(args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}
	return path, nil
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path exists and is a readable directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}
