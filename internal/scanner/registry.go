package scanner

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language identifies a supported source grammar
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
)

// languageFromExtension maps a file extension to its grammar. Files with
// extensions outside this table get a zero-coverage entry, never an error.
func languageFromExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	default:
		return "", false
	}
}

// getLanguage returns the tree-sitter grammar for a language identifier
func getLanguage(lang Language) *sitter.Language {
	switch lang {
	case LangTypeScript:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	case LangJavaScript:
		return javascript.GetLanguage()
	default:
		return nil
	}
}

// Supported reports whether a grammar is registered for the file's extension
func Supported(path string) bool {
	_, ok := languageFromExtension(filepath.Ext(path))
	return ok
}
