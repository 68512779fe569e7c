// Package mcp exposes the scan catalogue over the Model Context Protocol.
//
// Four tools are registered: scan_workspace (full recompute),
// rescan_file (single-file merge), lookup_units (keyword lookup), and
// get_last_scan (load the durable result without rescanning). The server
// speaks MCP on stdio; stdout is reserved for the protocol.
package mcp
