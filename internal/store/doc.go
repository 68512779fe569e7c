// Package store caches and persists workspace scan results.
//
// A Store holds one ScanResult per workspace path. Two mutation modes are
// supported: a full-workspace scan that replaces the cached result
// wholesale, and a single-file rescan that splices one recomputed entry
// into the cache. Mutations against the same workspace key are serialized
// by a per-key mutex so a completing full scan and a concurrent merge
// cannot silently discard each other's work; different workspaces never
// contend.
//
// Results are persisted to two targets: a durable SQLite database inside
// the workspace's .codeatlas directory, reloadable without rescanning, and
// a transient JSON document in the system temp directory for inspection.
// Persistence failure is reported via ErrPersist, distinct from scan
// failure - the returned result is still complete and usable.
package store
