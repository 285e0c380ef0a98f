// Package patch implements the Patch Adapter (spec §4.2): it consumes
// unified-diff text emitted by a TextDiffer and yields a compact sequence
// of Chunks describing where two line images diverge.
package patch

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Chunk is one divergence record (spec §3, glossary). same is the
// postimage line up to which pre and post match; p_next/t_next are the
// preimage/postimage line to resume from after the divergence.
type Chunk struct {
	Same  int
	PNext int
	TNext int
}

// Patch is an ordered sequence of Chunks, one per hunk of the underlying
// unified diff. Its lifetime is a single propagation call (spec §3).
type Patch struct {
	Chunks []Chunk
}

// Parse reads unified-diff text (as emitted by a TextDiffer) and builds a
// Patch. An unparseable hunk header is silently dropped — the spec treats
// this as a diff error (§7), not fatal: the corresponding partition simply
// remains on its current suspect.
func Parse(diffText string) *Patch {
	p := &Patch{}
	sc := bufio.NewScanner(strings.NewReader(diffText))
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	var cur *Chunk
	trailingContext := 0

	flush := func() {
		if cur == nil {
			return
		}
		cur.PNext -= trailingContext
		cur.TNext -= trailingContext
		p.Chunks = append(p.Chunks, *cur)
		cur = nil
		trailingContext = 0
	}

	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "@@") {
			off1, len1, off2, len2, ok := parseHunkHeader(line)
			if !ok {
				// Drop this hunk's header; skip its body lines below by
				// leaving cur nil until the next recognizable header.
				flush()
				continue
			}
			flush()

			same := off2
			if len2 == 0 {
				same = off2 + 1
			}
			cur = &Chunk{
				Same:  same,
				PNext: off1 + max(len1, 1),
				TNext: same + len2,
			}
			continue
		}
		if cur == nil {
			continue
		}
		switch {
		case strings.HasPrefix(line, " "):
			trailingContext++
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, "+"):
			trailingContext = 0
		default:
			// Blank line or no-prefix context line from some differs.
			trailingContext++
		}
	}
	flush()
	return p
}

// parseHunkHeader parses "@@ -off1,len1 +off2,len2 @@..." converting the
// 1-based diff offsets to 0-based. A missing ",len" means len==1.
func parseHunkHeader(line string) (off1, len1, off2, len2 int, ok bool) {
	start := strings.Index(line, "@@")
	if start < 0 {
		return 0, 0, 0, 0, false
	}
	end := strings.Index(line[start+2:], "@@")
	if end < 0 {
		return 0, 0, 0, 0, false
	}
	body := strings.TrimSpace(line[start+2 : start+2+end])
	fields := strings.Fields(body)
	if len(fields) != 2 {
		return 0, 0, 0, 0, false
	}
	a, ok1 := parseRange(fields[0], '-')
	b, ok2 := parseRange(fields[1], '+')
	if !ok1 || !ok2 {
		return 0, 0, 0, 0, false
	}
	off1, len1 = a[0]-1, a[1]
	off2, len2 = b[0]-1, b[1]
	if off1 < -1 || off2 < -1 {
		return 0, 0, 0, 0, false
	}
	return off1, len1, off2, len2, true
}

func parseRange(field string, want byte) ([2]int, bool) {
	if len(field) < 2 || field[0] != want {
		return [2]int{}, false
	}
	field = field[1:]
	parts := strings.SplitN(field, ",", 2)
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return [2]int{}, false
	}
	length := 1
	if len(parts) == 2 {
		length, err = strconv.Atoi(parts[1])
		if err != nil {
			return [2]int{}, false
		}
	}
	return [2]int{start, length}, true
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (c Chunk) String() string {
	return fmt.Sprintf("{same:%d p_next:%d t_next:%d}", c.Same, c.PNext, c.TNext)
}
