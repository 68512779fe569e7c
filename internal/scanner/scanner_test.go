package scanner

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codeatlas-mcp/pkg/types"
)

func scanSource(t *testing.T, path, source string) types.FileEntry {
	t.Helper()
	entry, err := New().Scan(context.Background(), path, []byte(source))
	require.NoError(t, err)
	return entry
}

func unitNames(entry types.FileEntry, typ types.UnitType) []string {
	var names []string
	for _, u := range entry.SyntaxUnits {
		if u.Type == typ {
			names = append(names, u.Name)
		}
	}
	return names
}

func findUnit(entry types.FileEntry, typ types.UnitType, name string) *types.SyntaxUnit {
	for i, u := range entry.SyntaxUnits {
		if u.Type == typ && u.Name == name {
			return &entry.SyntaxUnits[i]
		}
	}
	return nil
}

// Eight lines of callable, one comment line, eleven blank lines: every
// line of the file is claimed by exactly one pass.
func TestScan_FullCoverageScenario(t *testing.T) {
	source := "\n\n" +
		"function greet(name) {\n" +
		"  const msg = name;\n" +
		"  if (msg) {\n" +
		"    return msg;\n" +
		"  }\n" +
		"\n" +
		"  return '';\n" +
		"}\n" +
		"\n" +
		"// done\n" +
		"\n\n\n\n\n\n\n"

	entry := scanSource(t, "src/greet.ts", source)
	require.Equal(t, 20, entry.TotalLines)

	fn := findUnit(entry, types.UnitFunction, "greet")
	require.NotNil(t, fn)
	assert.Equal(t, 3, fn.StartLine)
	assert.Equal(t, 10, fn.EndLine)

	comments := unitNames(entry, types.UnitCommentLine)
	require.Len(t, comments, 1)

	blanks := unitNames(entry, types.UnitBlank)
	assert.Len(t, blanks, 11, "line 8 is inside the function span, not blank filler")

	assert.Len(t, entry.CoveredLines, 20)
	assert.Equal(t, 100.0, entry.CoveragePercent)
	require.NoError(t, entry.Validate())
}

// A declaration names itself through its name field; an anonymous callable
// borrows the identifier it is bound to.
func TestScan_NameFieldResolution(t *testing.T) {
	entry := scanSource(t, "src/fns.ts",
		"function named() {}\nconst bound = function () {};\n")

	assert.ElementsMatch(t, []string{"named", "bound"},
		unitNames(entry, types.UnitFunction))
}

func TestScan_Taxonomy(t *testing.T) {
	source := `import { api } from "./api";

// Primary store
export class UserStore {
  private count = 0;

  constructor(api) {
    this.api = api;
  }

  get size() {
    return this.count;
  }

  set size(v) {
    this.count = v;
  }

  load() {
    return this.api.fetch();
  }
}

export const pick = (u) => u.id;

interface Shape {
  area(): number;
  name: string;
}

type ID = string;

enum Color {
  Red,
  Green = 2,
}
`

	entry := scanSource(t, "src/store.ts", source)

	assert.Contains(t, unitNames(entry, types.UnitImport), "./api")
	assert.Contains(t, unitNames(entry, types.UnitClass), "UserStore")
	assert.Contains(t, unitNames(entry, types.UnitExport), "UserStore")
	assert.Contains(t, unitNames(entry, types.UnitProperty), "count")
	assert.Contains(t, unitNames(entry, types.UnitConstructor), "constructor")
	assert.Contains(t, unitNames(entry, types.UnitGetter), "size")
	assert.Contains(t, unitNames(entry, types.UnitSetter), "size")
	assert.Contains(t, unitNames(entry, types.UnitMethod), "load")
	assert.Contains(t, unitNames(entry, types.UnitExport), "pick")
	assert.Contains(t, unitNames(entry, types.UnitVariable), "pick")
	assert.Contains(t, unitNames(entry, types.UnitArrowFunction), "pick")
	assert.Contains(t, unitNames(entry, types.UnitInterface), "Shape")
	assert.Contains(t, unitNames(entry, types.UnitMethod), "area")
	assert.Contains(t, unitNames(entry, types.UnitProperty), "name")
	assert.Contains(t, unitNames(entry, types.UnitTypeAlias), "ID")
	assert.Contains(t, unitNames(entry, types.UnitEnum), "Color")
	assert.Contains(t, unitNames(entry, types.UnitEnumMember), "Red")
	assert.Contains(t, unitNames(entry, types.UnitEnumMember), "Green")
}

func TestScan_NestedSpansOverlap(t *testing.T) {
	source := `class Box {
  open() {
    return 1;
  }
}
`
	entry := scanSource(t, "src/box.ts", source)

	class := findUnit(entry, types.UnitClass, "Box")
	method := findUnit(entry, types.UnitMethod, "open")
	require.NotNil(t, class)
	require.NotNil(t, method)

	// The method lies fully inside its enclosing class; both claim the
	// shared lines and the covered set stays a set
	assert.LessOrEqual(t, class.StartLine, method.StartLine)
	assert.GreaterOrEqual(t, class.EndLine, method.EndLine)
	require.NoError(t, entry.Validate())
}

func TestScan_BareStatementStaysUncovered(t *testing.T) {
	source := "const a = 1;\n" +
		"a + 1;\n" +
		"function f() {}\n"

	entry := scanSource(t, "src/bare.ts", source)

	covered := make(map[int]bool)
	for _, l := range entry.CoveredLines {
		covered[l] = true
	}
	assert.True(t, covered[1])
	assert.False(t, covered[2], "a bare expression statement claims no unit")
	assert.True(t, covered[3])
	assert.Less(t, entry.CoveragePercent, 100.0)
}

func TestScan_Idempotence(t *testing.T) {
	source := "// header\nconst x = 1;\n\nfunction f() {\n  return x;\n}\n"

	first := scanSource(t, "src/idem.ts", source)
	second := scanSource(t, "src/idem.ts", source)

	require.Equal(t, first, second, "same bytes must yield a byte-identical entry")
}

func TestScan_HashSensitivity(t *testing.T) {
	before := "function f() {\n  return 1;\n}\n\ndoWork();\n"
	after := "function f() {\n  return 1;\n}\n\ndoLater();\n"

	a := scanSource(t, "src/h.ts", before)
	b := scanSource(t, "src/h.ts", after)

	fnA := findUnit(a, types.UnitFunction, "f")
	fnB := findUnit(b, types.UnitFunction, "f")
	require.NotNil(t, fnA)
	require.NotNil(t, fnB)
	assert.Equal(t, fnA.ContentHash, fnB.ContentHash,
		"edits strictly outside a unit's span leave its hash unchanged")

	edited := "function f() {\n  return 2;\n}\n\ndoWork();\n"
	c := scanSource(t, "src/h.ts", edited)
	fnC := findUnit(c, types.UnitFunction, "f")
	require.NotNil(t, fnC)
	assert.NotEqual(t, fnA.ContentHash, fnC.ContentHash,
		"a one-character edit inside the span changes the hash")
}

func TestScan_CommentClassification(t *testing.T) {
	source := "// line comment\n" +
		"/* block\n" +
		"   comment */\n" +
		"const x = 1;\n"

	entry := scanSource(t, "src/c.ts", source)

	require.Len(t, unitNames(entry, types.UnitCommentLine), 1)

	blocks := []types.SyntaxUnit{}
	for _, u := range entry.SyntaxUnits {
		if u.Type == types.UnitCommentBlock {
			blocks = append(blocks, u)
		}
	}
	require.Len(t, blocks, 1, "a comment span is claimed exactly once")
	assert.Equal(t, 2, blocks[0].StartLine)
	assert.Equal(t, 3, blocks[0].EndLine)
}

func TestScan_UnrecognizedExtension(t *testing.T) {
	entry := scanSource(t, "notes.txt", "some\nplain\ntext\n")

	assert.Equal(t, 4, entry.TotalLines)
	assert.Empty(t, entry.SyntaxUnits)
	assert.Empty(t, entry.CoveredLines)
	assert.Equal(t, 0.0, entry.CoveragePercent)
}

func TestScan_EmptyFile(t *testing.T) {
	entry := scanSource(t, "src/empty.ts", "")

	assert.Equal(t, 0, entry.TotalLines)
	assert.Empty(t, entry.SyntaxUnits)
	assert.Empty(t, entry.CoveredLines)
	assert.Equal(t, 0.0, entry.CoveragePercent)
}

func TestScan_AnonymousCallable(t *testing.T) {
	source := "setTimeout(() => {\n  tick();\n}, 10);\n"

	entry := scanSource(t, "src/anon.ts", source)
	assert.Contains(t, unitNames(entry, types.UnitArrowFunction), types.AnonymousName)
}

func TestScan_PartitionProperty(t *testing.T) {
	source := "// top\nconst a = 1;\n\nrun();\n\nfunction g() {\n  return a;\n}\n"

	entry := scanSource(t, "src/part.ts", source)
	require.NoError(t, entry.Validate())

	covered := make(map[int]bool)
	for _, l := range entry.CoveredLines {
		covered[l] = true
	}

	blankLines := make(map[int]bool)
	for _, u := range entry.SyntaxUnits {
		if u.Type == types.UnitBlank {
			for l := u.StartLine; l <= u.EndLine; l++ {
				assert.False(t, blankLines[l], "one blank unit per line")
				blankLines[l] = true
			}
		}
	}

	lines := strings.Split(source, "\n")
	for l := 1; l <= entry.TotalLines; l++ {
		blank := strings.TrimSpace(lines[l-1]) == ""
		switch {
		case blankLines[l]:
			assert.True(t, blank, "line %d: blank filler only claims empty lines", l)
			assert.True(t, covered[l], "line %d: blank filler counts as covered", l)
		case covered[l]:
			// claimed by a declaration or comment
		default:
			assert.False(t, blank, "line %d: an empty line must not stay uncovered", l)
		}
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.ts"))
	assert.True(t, Supported("a.tsx"))
	assert.True(t, Supported("a.js"))
	assert.True(t, Supported("a.mjs"))
	assert.False(t, Supported("a.txt"))
	assert.False(t, Supported("Makefile"))
}
