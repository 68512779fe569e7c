// Package scanner extracts syntax units and line coverage from source files
// using tree-sitter grammars.
//
// # Basic Usage
//
//	s := scanner.New()
//	entry, err := s.Scan(ctx, "src/app.ts", source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, unit := range entry.SyntaxUnits {
//	    fmt.Printf("%s %s lines %d-%d\n", unit.Type, unit.Name, unit.StartLine, unit.EndLine)
//	}
//
// # Taxonomy
//
// Extraction recognizes a fixed, closed set of constructs: classes,
// functions (named and arrow-style), methods, properties, constructors,
// getter/setter pairs, interfaces, type aliases, enums and their members,
// block-scoped variable declarations, and import/export statements.
// Comments and blank lines are extracted as their own unit types so every
// line of a file is accounted for.
//
// # Three-Pass Coverage
//
// Each file is processed in three sequential passes, each seeing the
// previous pass's covered lines:
//
//  1. Declarations: full-tree traversal classifying every matching node
//  2. Comments: distinct comment spans, deduplicated, line vs block
//  3. Blank filler: remaining lines whose trimmed text is empty
//
// The ordering is semantically required - a line covered by a declaration
// or comment must never be reclassified as blank.
//
// A line holding a bare statement that no recognized construct claims stays
// uncovered. That depresses the coverage percentage and is expected.
//
// # Content Hashes
//
// Every unit carries a SHA-256 digest of the exact, unnormalized source
// slice its node spans. The digest changes on any byte change within the
// span and is unaffected by edits strictly outside it, which lets callers
// detect stale references to code that has since moved or changed.
//
// # Determinism
//
// Scanning the same bytes twice yields byte-identical entries: same unit
// order, same hashes, same covered lines. Results are keyed by span, never
// by traversal order.
package scanner
