package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyntaxUnitValidate(t *testing.T) {
	unit := SyntaxUnit{
		Type:        UnitFunction,
		Name:        "greet",
		FilePath:    "src/app.ts",
		StartLine:   3,
		StartColumn: 1,
		EndLine:     10,
		EndColumn:   1,
	}
	assert.NoError(t, unit.Validate())

	bad := unit
	bad.Type = UnitType("widget")
	assert.Error(t, bad.Validate())

	bad = unit
	bad.Name = ""
	assert.Error(t, bad.Validate())

	bad = unit
	bad.StartLine = 12
	assert.Error(t, bad.Validate())
}

func TestSyntaxUnitHelpers(t *testing.T) {
	comment := SyntaxUnit{Type: UnitCommentLine, StartLine: 4, EndLine: 4}
	assert.True(t, comment.IsComment())
	assert.Equal(t, 1, comment.Span())

	block := SyntaxUnit{Type: UnitCommentBlock, StartLine: 2, EndLine: 5}
	assert.True(t, block.IsComment())
	assert.Equal(t, 4, block.Span())

	fn := SyntaxUnit{Type: UnitFunction}
	assert.False(t, fn.IsComment())
}
