// Package types defines the shared data model for the scan catalogue:
// the closed syntax-unit taxonomy, per-file entries with line coverage,
// and the workspace-level scan result.
//
// The JSON struct tags define the persisted result document consumed by
// external collaborators; field names are part of that contract.
package types
