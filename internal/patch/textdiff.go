package patch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DMPTextDiffer is the module's default implementation of the coretypes
// TextDiffer external interface, built on the same
// github.com/sergi/go-diff/diffmatchpatch library the teacher uses for its
// side-by-side diff view — here driven in line mode (DiffLinesToChars /
// DiffCharsToLines) so every diff fragment is a whole number of complete
// lines, which the char-level DiffMain the teacher uses for cosmetic
// display does not guarantee.
type DMPTextDiffer struct{}

type lineOp struct {
	kind byte // ' ' equal, '-' delete, '+' insert
	text string
}

// TextDiff renders a unified diff between pre and post at the given
// context width (spec §4.2: 0 for propagation, 1 for move/copy search).
func (DMPTextDiffer) TextDiff(pre, post string, context int) (string, error) {
	ops := diffLineOps(pre, post)
	return renderUnified(ops, context), nil
}

func diffLineOps(pre, post string) []lineOp {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(pre, post)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var ops []lineOp
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		var kind byte
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			kind = ' '
		case diffmatchpatch.DiffDelete:
			kind = '-'
		case diffmatchpatch.DiffInsert:
			kind = '+'
		}
		for _, l := range splitKeepingLines(d.Text) {
			ops = append(ops, lineOp{kind: kind, text: l})
		}
	}
	return ops
}

// splitKeepingLines splits s into lines, each including its trailing "\n"
// except possibly the last (when s has no trailing newline).
func splitKeepingLines(s string) []string {
	parts := strings.SplitAfter(s, "\n")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// renderUnified groups ops into hunks (merging adjacent change regions
// whose separating equal run is <= 2*context) and emits standard unified
// diff text: "@@ -off1,len1 +off2,len2 @@" headers, 1-based, followed by
// " "/"-"/"+"-prefixed body lines.
func renderUnified(ops []lineOp, context int) string {
	if context < 0 {
		context = 0
	}
	n := len(ops)
	if n == 0 {
		return ""
	}

	prePos := make([]int, n+1)
	postPos := make([]int, n+1)
	for i, op := range ops {
		prePos[i+1] = prePos[i]
		postPos[i+1] = postPos[i]
		switch op.kind {
		case ' ':
			prePos[i+1]++
			postPos[i+1]++
		case '-':
			prePos[i+1]++
		case '+':
			postPos[i+1]++
		}
	}

	// Maximal non-equal blocks [lo,hi).
	type block struct{ lo, hi int }
	var blocks []block
	i := 0
	for i < n {
		if ops[i].kind == ' ' {
			i++
			continue
		}
		lo := i
		for i < n && ops[i].kind != ' ' {
			i++
		}
		blocks = append(blocks, block{lo, i})
	}
	if len(blocks) == 0 {
		return ""
	}

	// Merge blocks whose separating equal run is <= 2*context.
	var groups []block
	cur := blocks[0]
	for _, b := range blocks[1:] {
		gap := b.lo - cur.hi
		if gap <= 2*context {
			cur.hi = b.hi
		} else {
			groups = append(groups, cur)
			cur = b
		}
	}
	groups = append(groups, cur)

	var out strings.Builder
	for gi, g := range groups {
		lo, hi := g.lo, g.hi
		// Extend for leading/trailing context, bounded by neighbors.
		minLo := 0
		if gi > 0 {
			minLo = groups[gi-1].hi
		}
		maxHi := n
		if gi+1 < len(groups) {
			maxHi = groups[gi+1].lo
		}
		for k := 0; k < context && lo > minLo; k++ {
			lo--
		}
		for k := 0; k < context && hi < maxHi; k++ {
			hi++
		}

		off1, off2 := prePos[lo], postPos[lo]
		len1 := prePos[hi] - prePos[lo]
		len2 := postPos[hi] - postPos[lo]

		start1, start2 := off1+1, off2+1
		if len1 == 0 {
			start1 = off1
		}
		if len2 == 0 {
			start2 = off2
		}
		fmt.Fprintf(&out, "@@ -%s +%s @@\n", rangeStr(start1, len1), rangeStr(start2, len2))
		for _, op := range ops[lo:hi] {
			out.WriteByte(op.kind)
			out.WriteString(strings.TrimSuffix(op.text, "\n"))
			out.WriteByte('\n')
		}
	}
	return out.String()
}

func rangeStr(start, length int) string {
	if length == 1 {
		return strconv.Itoa(start)
	}
	return strconv.Itoa(start) + "," + strconv.Itoa(length)
}
