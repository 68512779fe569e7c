// Package lookup resolves keyword phrases against a file's syntax units.
//
// Matching is conjunctive over whitespace tokens. A token matches a unit
// by literal substring of the lowercased "{type} {name}" string, by the
// fixed keyword alias table (e.g. "const" selects variable declarations,
// "function" selects both ordinary and arrow-style callables), or
// unconditionally when it is a pure modifier keyword like "static".
//
// Lookups never require a prior full-workspace scan: a miss triggers an
// on-demand single-file rescan through the store.
package lookup
