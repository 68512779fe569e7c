// Package collector discovers candidate files under a workspace root.
//
// The walk is depth-first and composes ignore rules cumulatively: a rule
// declared in an ancestor's .atlasignore applies to every descendant, while
// a rule declared in a subdirectory applies only within that subtree. A
// fixed set of directories (.git, node_modules, the tool's state directory)
// is always excluded and never descended into.
//
// I/O failures below the root are skipped silently; only an unreadable
// workspace root surfaces as an error, since no partial result would be
// meaningful there.
package collector
