package collector

import (
	"os"
	"path/filepath"
	"strings"
)

// ignoreRule is one pattern line together with the directory whose ignore
// file defined it. Patterns are matched against entry names and against
// paths relative to that directory, so a rule never reaches outside the
// subtree it was declared in.
type ignoreRule struct {
	pattern string
	baseDir string
}

// readIgnoreRules loads the ignore file in dir. A missing or unreadable
// ignore file means no additional rules, not an error.
func readIgnoreRules(dir string) []ignoreRule {
	data, err := os.ReadFile(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		return nil
	}

	var rules []ignoreRule
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, ignoreRule{pattern: line, baseDir: dir})
	}
	return rules
}

// matches reports whether the rule excludes the entry at absPath
func (r ignoreRule) matches(absPath, name string) bool {
	if ok, _ := filepath.Match(r.pattern, name); ok {
		return true
	}

	rel, err := filepath.Rel(r.baseDir, absPath)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	if ok, _ := filepath.Match(r.pattern, rel); ok {
		return true
	}
	return rel == r.pattern || strings.HasPrefix(rel, r.pattern+"/")
}

// matchAny applies the composed rule set for the current directory
func matchAny(rules []ignoreRule, absPath, name string) bool {
	for _, r := range rules {
		if r.matches(absPath, name) {
			return true
		}
	}
	return false
}
