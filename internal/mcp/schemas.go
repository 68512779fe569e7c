package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// scanWorkspaceTool returns the tool definition for scan_workspace
func scanWorkspaceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "scan_workspace",
		Description: "Scan a workspace tree into a catalogue of syntax units with per-file line coverage",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the workspace root",
				},
			},
			Required: []string{"path"},
		},
	}
}

// rescanFileTool returns the tool definition for rescan_file
func rescanFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "rescan_file",
		Description: "Rescan a single file and merge its entry into the cached workspace result",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the workspace root",
				},
				"file": map[string]interface{}{
					"type":        "string",
					"description": "File path relative to the workspace root",
				},
			},
			Required: []string{"path", "file"},
		},
	}
}

// lookupUnitsTool returns the tool definition for lookup_units
func lookupUnitsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "lookup_units",
		Description: "Find syntax units in a file matching a keyword phrase (e.g. 'const foo', 'class UserService')",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the workspace root",
				},
				"file": map[string]interface{}{
					"type":        "string",
					"description": "File path relative to the workspace root",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Whitespace-separated keyword phrase; all tokens must match",
				},
			},
			Required: []string{"path", "file", "query"},
		},
	}
}

// getLastScanTool returns the tool definition for get_last_scan
func getLastScanTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_last_scan",
		Description: "Load the last durably persisted scan result for a workspace without rescanning",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the workspace root",
				},
			},
			Required: []string{"path"},
		},
	}
}
