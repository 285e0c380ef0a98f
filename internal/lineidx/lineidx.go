// Package lineidx maps final-file line numbers to byte offsets, scanning
// the buffer once (spec §4.1).
package lineidx

// Index records the byte offset of every line start in a buffer. Lines are
// 0-based internally; callers translate to 1-based line numbers at the
// output boundary.
type Index struct {
	offsets []int // offsets[i] = byte offset where line i starts
	size    int
}

// Build scans buf once and returns its Index. A buffer without a trailing
// newline contributes one extra incomplete final line, matching the
// convention that every byte belongs to some line.
func Build(buf []byte) *Index {
	idx := &Index{size: len(buf)}
	idx.offsets = append(idx.offsets, 0)
	for i, b := range buf {
		if b == '\n' && i+1 < len(buf) {
			idx.offsets = append(idx.offsets, i+1)
		}
	}
	if len(buf) == 0 {
		// Zero lines, not one empty line.
		idx.offsets = nil
	}
	return idx
}

// LineCount returns the number of lines in the scanned buffer.
func (idx *Index) LineCount() int {
	return len(idx.offsets)
}

// LineByteOffset returns the byte offset where 0-based line i starts, or
// -1 if i is out of range.
func (idx *Index) LineByteOffset(i int) int {
	if i < 0 || i >= len(idx.offsets) {
		return -1
	}
	return idx.offsets[i]
}

// LineBytes returns the raw bytes of 0-based line i (including its
// trailing newline, if any), given the same buffer Build scanned.
func (idx *Index) LineBytes(buf []byte, i int) []byte {
	start := idx.LineByteOffset(i)
	if start < 0 {
		return nil
	}
	end := idx.size
	if i+1 < len(idx.offsets) {
		end = idx.offsets[i+1]
	}
	return buf[start:end]
}
