package collector

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/codeatlas-mcp/pkg/types"
)

// IgnoreFileName is the per-directory ignore file read during traversal
const IgnoreFileName = ".atlasignore"

// alwaysExcluded directories are skipped regardless of ignore-file content
// and never descended into, so ignore files nested inside them are never
// read: version-control metadata, dependency caches, and the tool's own
// state directory.
var alwaysExcluded = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	".codeatlas":   true,
}

// CollectedFile is one candidate file found under the workspace root
type CollectedFile struct {
	RelPath    string // Relative to workspace root, slash-separated
	AbsPath    string
	TotalLines int
}

// Collector walks a workspace tree and returns candidate files with raw
// line counts. Traversal order is unspecified; consumers must treat the
// output as a set.
type Collector struct{}

// New creates a new Collector instance
func New() *Collector {
	return &Collector{}
}

// Collect walks the workspace root depth-first, composing ignore rules
// cumulatively from the root down to each visited directory. An unreadable
// workspace root is the one hard failure; unreadable entries below it are
// skipped silently.
func (c *Collector) Collect(workspaceRoot string) ([]CollectedFile, error) {
	info, err := os.Stat(workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("workspace root not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", workspaceRoot)
	}

	var files []CollectedFile
	c.walk(workspaceRoot, workspaceRoot, nil, &files)
	return files, nil
}

// walk visits one directory. Rules defined at ancestors apply to the whole
// subtree; rules read here apply only beneath this directory.
func (c *Collector) walk(root, dir string, rules []ignoreRule, out *[]CollectedFile) {
	rules = append(rules, readIgnoreRules(dir)...)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		abs := filepath.Join(dir, name)

		if entry.IsDir() {
			if alwaysExcluded[name] {
				continue
			}
			if matchAny(rules, abs, name) {
				continue
			}
			c.walk(root, abs, rules, out)
			continue
		}

		if matchAny(rules, abs, name) {
			continue
		}

		source, err := os.ReadFile(abs)
		if err != nil {
			continue
		}

		rel, err := filepath.Rel(root, abs)
		if err != nil {
			continue
		}

		*out = append(*out, CollectedFile{
			RelPath:    filepath.ToSlash(rel),
			AbsPath:    abs,
			TotalLines: types.CountLines(source),
		})
	}
}
