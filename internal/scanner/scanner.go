package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/dshills/codeatlas-mcp/pkg/types"
)

// Scanner extracts syntax units and line coverage from source files.
// It is safe for concurrent use; tree-sitter parsers are pooled because a
// single parser instance is not.
type Scanner struct {
	pool sync.Pool
}

// New creates a new Scanner instance
func New() *Scanner {
	return &Scanner{
		pool: sync.Pool{
			New: func() interface{} {
				return sitter.NewParser()
			},
		},
	}
}

// Scan parses source and produces the file's complete entry: syntax units,
// the covered-line set, and the derived coverage percentage.
//
// Extraction runs in three passes, each seeing the previous pass's covered
// lines: declarations, then comments, then blank-line filler. A file whose
// extension has no registered grammar yields a zero-coverage entry, not an
// error, so the workspace result still counts it.
func (s *Scanner) Scan(ctx context.Context, filePath string, source []byte) (types.FileEntry, error) {
	entry := types.FileEntry{
		FilePath:     filePath,
		TotalLines:   types.CountLines(source),
		CoveredLines: []int{},
		SyntaxUnits:  []types.SyntaxUnit{},
	}

	lang, ok := languageFromExtension(filepath.Ext(filePath))
	if !ok {
		return entry, nil
	}

	parser := s.pool.Get().(*sitter.Parser)
	defer s.pool.Put(parser)
	parser.SetLanguage(getLanguage(lang))

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return entry, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	defer tree.Close()

	ex := &extractor{
		source:   source,
		filePath: filePath,
		index:    newLineIndex(source),
		covered:  make(map[int]struct{}),
		seen:     make(map[[2]int]struct{}),
	}

	root := tree.RootNode()
	ex.declarationPass(root)
	ex.commentPass(root)
	ex.blankPass()

	entry.SyntaxUnits = ex.units
	entry.CoveredLines = ex.coveredSorted()
	entry.CoveragePercent = types.CoveragePercent(len(entry.CoveredLines), entry.TotalLines)

	return entry, nil
}
