package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/dshills/codeatlas-mcp/pkg/types"
)

// extractor accumulates units and covered lines across the three passes
// over a single file's syntax tree
type extractor struct {
	source   []byte
	filePath string
	index    *lineIndex
	covered  map[int]struct{}
	seen     map[[2]int]struct{} // comment spans already claimed
	units    []types.SyntaxUnit
}

// declarationPass visits every named node in the tree, not only top level,
// so nested declarations are each independently extracted. Their spans may
// nest or overlap; covered lines are a set union.
func (ex *extractor) declarationPass(n *sitter.Node) {
	ex.classify(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ex.declarationPass(n.NamedChild(i))
	}
}

// classify maps a node to the taxonomy and records a unit when it matches.
// Node type strings follow the tree-sitter typescript/javascript grammars.
func (ex *extractor) classify(n *sitter.Node) {
	switch n.Type() {
	case "class_declaration", "abstract_class_declaration", "class":
		ex.addNode(types.UnitClass, ex.fieldContent(n, "name"), n)

	case "function_declaration", "generator_function_declaration":
		ex.addNode(types.UnitFunction, ex.fieldContent(n, "name"), n)

	case "function_expression", "function", "generator_function":
		ex.addNode(types.UnitFunction, ex.assignedName(n), n)

	case "arrow_function":
		ex.addNode(types.UnitArrowFunction, ex.assignedName(n), n)

	case "method_definition":
		ex.addNode(ex.methodKind(n), ex.fieldContent(n, "name"), n)

	case "method_signature", "abstract_method_signature":
		ex.addNode(types.UnitMethod, ex.fieldContent(n, "name"), n)

	case "public_field_definition", "field_definition", "property_signature":
		name := ex.fieldContent(n, "name")
		if name == "" {
			name = ex.fieldContent(n, "property")
		}
		ex.addNode(types.UnitProperty, name, n)

	case "interface_declaration":
		ex.addNode(types.UnitInterface, ex.fieldContent(n, "name"), n)

	case "type_alias_declaration":
		ex.addNode(types.UnitTypeAlias, ex.fieldContent(n, "name"), n)

	case "enum_declaration":
		ex.addNode(types.UnitEnum, ex.fieldContent(n, "name"), n)

	case "enum_assignment":
		ex.addNode(types.UnitEnumMember, ex.fieldContent(n, "name"), n)

	case "property_identifier":
		// Bare enum members have no wrapping assignment node
		if p := n.Parent(); p != nil && p.Type() == "enum_body" {
			ex.addNode(types.UnitEnumMember, n.Content(ex.source), n)
		}

	case "lexical_declaration", "variable_declaration":
		ex.addNode(types.UnitVariable, ex.firstDeclaratorName(n), n)

	case "import_statement":
		ex.addNode(types.UnitImport, ex.moduleRef(n), n)

	case "export_statement":
		ex.addNode(types.UnitExport, ex.exportTarget(n), n)
	}
}

// fieldContent returns the source text of a node's named field, or the
// empty string when the grammar exposes no such child
func (ex *extractor) fieldContent(n *sitter.Node, field string) string {
	c := n.ChildByFieldName(field)
	if c == nil {
		return ""
	}
	return c.Content(ex.source)
}

// methodKind distinguishes constructors and accessor pairs from ordinary
// methods. The get/set keywords are unnamed direct children of the
// method_definition node.
func (ex *extractor) methodKind(n *sitter.Node) types.UnitType {
	if ex.fieldContent(n, "name") == types.ConstructorName {
		return types.UnitConstructor
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "get":
			return types.UnitGetter
		case "set":
			return types.UnitSetter
		}
	}
	return types.UnitMethod
}

// assignedName resolves a best-effort identifier for anonymous callables
// from the binding they are assigned to, e.g. `const handler = () => {}`
func (ex *extractor) assignedName(n *sitter.Node) string {
	p := n.Parent()
	if p == nil {
		return ""
	}
	switch p.Type() {
	case "variable_declarator":
		return ex.fieldContent(p, "name")
	case "pair":
		return ex.fieldContent(p, "key")
	case "assignment_expression":
		return ex.fieldContent(p, "left")
	case "public_field_definition", "field_definition":
		if name := ex.fieldContent(p, "name"); name != "" {
			return name
		}
		return ex.fieldContent(p, "property")
	}
	return ""
}

// firstDeclaratorName takes the name from the first binding, matching the
// taxonomy rule for block-scoped variable declarations
func (ex *extractor) firstDeclaratorName(n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "variable_declarator" {
			return ex.fieldContent(c, "name")
		}
	}
	return ""
}

// moduleRef returns the literal module reference of an import statement
func (ex *extractor) moduleRef(n *sitter.Node) string {
	src := n.ChildByFieldName("source")
	if src == nil {
		return ""
	}
	return strings.Trim(src.Content(ex.source), "\"'`")
}

// exportTarget names an export by its re-exported module, its declaration,
// or its exported value, in that order
func (ex *extractor) exportTarget(n *sitter.Node) string {
	if src := n.ChildByFieldName("source"); src != nil {
		return strings.Trim(src.Content(ex.source), "\"'`")
	}
	if decl := n.ChildByFieldName("declaration"); decl != nil {
		if name := ex.fieldContent(decl, "name"); name != "" {
			return name
		}
		if name := ex.firstDeclaratorNameOf(decl); name != "" {
			return name
		}
	}
	if val := n.ChildByFieldName("value"); val != nil {
		return ex.fieldContent(val, "name")
	}
	return ""
}

func (ex *extractor) firstDeclaratorNameOf(n *sitter.Node) string {
	switch n.Type() {
	case "lexical_declaration", "variable_declaration":
		return ex.firstDeclaratorName(n)
	}
	return ""
}

// commentPass records every distinct comment byte range. The grammar can
// expose the same comment through more than one traversal entry point, so
// spans are deduplicated before a unit is emitted.
func (ex *extractor) commentPass(n *sitter.Node) {
	if n.Type() == "comment" {
		key := [2]int{int(n.StartByte()), int(n.EndByte())}
		if _, dup := ex.seen[key]; !dup {
			ex.seen[key] = struct{}{}
			typ := types.UnitCommentBlock
			if strings.HasPrefix(n.Content(ex.source), "//") {
				typ = types.UnitCommentLine
			}
			ex.addNode(typ, "<comment>", n)
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ex.commentPass(n.NamedChild(i))
	}
}

// blankPass claims every line the first two passes left uncovered whose
// trimmed text is empty. Ordering matters: an already-covered line must
// never be reclassified as blank.
func (ex *extractor) blankPass() {
	for line := 1; line <= ex.index.lineCount(); line++ {
		if _, ok := ex.covered[line]; ok {
			continue
		}
		start, end := ex.index.lineBounds(line)
		if strings.TrimSpace(string(ex.source[start:end])) != "" {
			continue
		}
		ex.addSpan(types.UnitBlank, types.BlankName, start, end)
	}
}

// addNode records a unit for a syntax node
func (ex *extractor) addNode(typ types.UnitType, name string, n *sitter.Node) {
	ex.addSpan(typ, name, int(n.StartByte()), int(n.EndByte()))
}

// addSpan records a unit over an exact byte range and marks its lines covered
func (ex *extractor) addSpan(typ types.UnitType, name string, startByte, endByte int) {
	if name == "" {
		name = types.AnonymousName
	}
	startLine, startCol, endLine, endCol := ex.index.lineSpan(startByte, endByte)
	ex.units = append(ex.units, types.SyntaxUnit{
		Type:        typ,
		Name:        name,
		FilePath:    ex.filePath,
		StartLine:   startLine,
		StartColumn: startCol,
		EndLine:     endLine,
		EndColumn:   endCol,
		ContentHash: hashSlice(ex.source[startByte:endByte]),
	})
	for l := startLine; l <= endLine; l++ {
		ex.covered[l] = struct{}{}
	}
}

// coveredSorted returns the covered set as strictly increasing line numbers
func (ex *extractor) coveredSorted() []int {
	lines := make([]int, 0, len(ex.covered))
	for l := range ex.covered {
		lines = append(lines, l)
	}
	sort.Ints(lines)
	return lines
}

// hashSlice computes the content fingerprint of an exact source slice.
// Any byte change inside the slice changes the digest; edits strictly
// outside it cannot.
func hashSlice(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
