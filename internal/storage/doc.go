// Package storage provides durable SQLite persistence for scan results.
//
// The driver is selected at build time: modernc.org/sqlite (pure Go) by
// default, github.com/mattn/go-sqlite3 with the sqlite_cgo tag. Saves
// replace a workspace's rows wholesale in one transaction; loads rebuild
// the exact ScanResult without triggering a scan.
package storage
