package types

import (
	"math"
	"strings"
	"time"
)

// FileEntry is the complete scan output for one collected file.
// CoveredLines is a set: strictly increasing, unique line numbers within
// [1, TotalLines]. SyntaxUnits are ordered by discovery, not line position.
type FileEntry struct {
	FilePath        string       `json:"filePath"`
	TotalLines      int          `json:"totalLines"`
	CoveredLines    []int        `json:"coveredLines"`
	CoveragePercent float64      `json:"coveragePercent"`
	SyntaxUnits     []SyntaxUnit `json:"syntaxUnits"`
}

// ScanResult aggregates per-file entries for one workspace.
type ScanResult struct {
	WorkspacePath string      `json:"workspacePath"`
	ScannedAt     time.Time   `json:"scannedAt"`
	TotalFiles    int         `json:"totalFiles"`
	Files         []FileEntry `json:"files"`
}

// CoveragePercent computes the percentage of covered lines, rounded to two
// decimals. Returns 0 when totalLines is zero.
func CoveragePercent(covered, totalLines int) float64 {
	if totalLines == 0 {
		return 0
	}
	return math.Round(float64(covered)/float64(totalLines)*100*100) / 100
}

// CountLines returns the number of lines in source text. An empty file has
// zero lines; otherwise a trailing newline starts a final empty line, the
// same accounting the blank-filler pass uses.
func CountLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	return strings.Count(string(source), "\n") + 1
}

// FindFile returns the index of the entry for relPath, or -1
func (r *ScanResult) FindFile(relPath string) int {
	for i := range r.Files {
		if r.Files[i].FilePath == relPath {
			return i
		}
	}
	return -1
}

// Validate checks the entry's covered-line invariants
func (fe *FileEntry) Validate() error {
	prev := 0
	for _, line := range fe.CoveredLines {
		if line <= prev {
			return errInvalidCoveredLines
		}
		if line < 1 || line > fe.TotalLines {
			return errCoveredLineOutOfRange
		}
		prev = line
	}
	return nil
}
