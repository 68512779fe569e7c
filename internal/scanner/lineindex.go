package scanner

import "sort"

// lineIndex maps byte offsets to 1-indexed line/column positions.
// It is built once per scanned file and shared by all three passes.
type lineIndex struct {
	starts []int // byte offset of the first character of each line
	size   int
}

func newLineIndex(source []byte) *lineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts, size: len(source)}
}

// position converts a byte offset to a 1-indexed (line, column) pair
func (li *lineIndex) position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > li.size {
		offset = li.size
	}
	idx := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	}) - 1
	return idx + 1, offset - li.starts[idx] + 1
}

// lineSpan converts a [start, end) byte range to inclusive 1-indexed
// line/column bounds. The end position is taken from the last byte inside
// the range so spans never bleed onto a following line.
func (li *lineIndex) lineSpan(startByte, endByte int) (startLine, startCol, endLine, endCol int) {
	startLine, startCol = li.position(startByte)
	if endByte <= startByte {
		return startLine, startCol, startLine, startCol
	}
	endLine, endCol = li.position(endByte - 1)
	return startLine, startCol, endLine, endCol
}

// lineBounds returns the [start, end) byte range of a 1-indexed line,
// excluding the trailing newline
func (li *lineIndex) lineBounds(line int) (start, end int) {
	start = li.starts[line-1]
	if line < len(li.starts) {
		end = li.starts[line] - 1
	} else {
		end = li.size
	}
	return start, end
}

// lineCount returns the number of lines the index covers
func (li *lineIndex) lineCount() int {
	if li.size == 0 {
		return 0
	}
	return len(li.starts)
}
