// Package partition implements the Blame Entry partition sequence: the
// ordered doubly linked list of final-file line ranges, each accusing one
// suspect origin, that the Propagator and Mover/Copier rewrite in place
// (spec §3, §4.3).
package partition

import (
	"fmt"
	"strings"

	"github.com/jensroland/git-blamebot/internal/lineidx"
	"github.com/jensroland/git-blamebot/internal/origin"
)

// Entry is one contiguous range of lines in the final file, currently
// accused to Suspect. Score caches 1 plus the alphanumeric-character count
// across the range; 0 means "recompute" (spec §3, §4.8).
type Entry struct {
	Lno      int
	NumLines int
	Suspect  *origin.Origin
	SLno     int
	Guilty   bool
	Score    int

	prev, next *Entry
}

// Store owns the partition sequence for one file's blame and the final
// buffer/line index needed to score entries.
type Store struct {
	head, tail *Entry
	count      int

	finalBuf []byte
	idx      *lineidx.Index
}

// New builds a Store whose sequence initially covers [rangeStart, rangeEnd)
// as a single entry accusing suspect, with s_lno equal to lno (the
// canonical starting assumption: the target commit is its own suspect).
func New(finalBuf []byte, idx *lineidx.Index, rangeStart, rangeEnd int, suspect *origin.Origin) *Store {
	s := &Store{finalBuf: finalBuf, idx: idx}
	if rangeEnd <= rangeStart {
		return s
	}
	e := &Entry{
		Lno:      rangeStart,
		NumLines: rangeEnd - rangeStart,
		Suspect:  suspect,
		SLno:     rangeStart,
	}
	s.head, s.tail = e, e
	s.count = 1
	return s
}

// Head returns the first entry in lno order, or nil if empty.
func (s *Store) Head() *Entry { return s.head }

// Next returns the entry following e in lno order, or nil at the tail.
func (e *Entry) Next() *Entry { return e.next }

// Len returns the number of entries currently in the sequence.
func (s *Store) Len() int { return s.count }

// Entries returns the sequence as a slice, in lno order.
func (s *Store) Entries() []*Entry {
	out := make([]*Entry, 0, s.count)
	for e := s.head; e != nil; e = e.next {
		out = append(out, e)
	}
	return out
}

// unlink removes e from the list without touching its own prev/next
// (the caller is about to discard or reuse e).
func (s *Store) unlink(e *Entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
	s.count--
}

// insertAfter links fresh immediately after at (at may be nil to mean
// "before the head").
func (s *Store) insertAfter(at, fresh *Entry) {
	if at == nil {
		fresh.prev = nil
		fresh.next = s.head
		if s.head != nil {
			s.head.prev = fresh
		} else {
			s.tail = fresh
		}
		s.head = fresh
	} else {
		fresh.prev = at
		fresh.next = at.next
		if at.next != nil {
			at.next.prev = fresh
		} else {
			s.tail = fresh
		}
		at.next = fresh
	}
	s.count++
}

// Split replaces e with up to three adjacent entries — pre, middle, post —
// whose combined span equals e's span. Any of the three may be omitted by
// passing a nil *Split for it, or a zero-length span. middle normally
// carries a new suspect; pre and post keep e's.
//
// Per spec §9's resolved Open Question, e is removed from the list first
// and the surviving pieces are inserted fresh, rather than mutating e in
// place and splicing siblings around it — that ordering is what avoids the
// reference implementation's edge-case anomalies when a split's middle
// region touches a prior sibling's boundary.
type Split struct {
	Lno, NumLines int
	Suspect       *origin.Origin
	SLno          int
	Guilty        bool
}

func (s *Store) Split(e *Entry, pre, middle, post *Split) {
	before := e.prev
	s.unlink(e)

	at := before
	for _, sp := range []*Split{pre, middle, post} {
		if sp == nil || sp.NumLines <= 0 {
			continue
		}
		fresh := &Entry{
			Lno:      sp.Lno,
			NumLines: sp.NumLines,
			Suspect:  sp.Suspect,
			SLno:     sp.SLno,
			Guilty:   sp.Guilty,
		}
		s.insertAfter(at, fresh)
		at = fresh
	}
}

// Insert adds e into the sequence preserving lno order, for building a
// Store incrementally rather than via New.
func (s *Store) Insert(e *Entry) {
	if s.head == nil || e.Lno < s.head.Lno {
		s.insertAfter(nil, e)
		return
	}
	at := s.head
	for at.next != nil && at.next.Lno < e.Lno {
		at = at.next
	}
	s.insertAfter(at, e)
}

// Coalesce fuses any adjacent pair where suspects are equal, guilty flags
// match, and left.s_lno+left.num_lines == right.s_lno (spec §4.3).
// Idempotent: a second call finds nothing left to merge.
func (s *Store) Coalesce() {
	e := s.head
	for e != nil && e.next != nil {
		r := e.next
		if origin.Equal(e.Suspect, r.Suspect) &&
			e.Guilty == r.Guilty &&
			e.SLno+e.NumLines == r.SLno {
			e.NumLines += r.NumLines
			e.Score = 0 // invalidate cache (spec §4.3)
			s.unlink(r)
			continue // e may now merge with its new next
		}
		e = e.next
	}
}

// FindLastSLno returns the max of s_lno+num_lines across unresolved
// entries accusing o, or -1 if none (spec §4.3).
func (s *Store) FindLastSLno(o *origin.Origin) int {
	best := -1
	for e := s.head; e != nil; e = e.next {
		if e.Guilty || !origin.Equal(e.Suspect, o) {
			continue
		}
		if v := e.SLno + e.NumLines; v > best {
			best = v
		}
	}
	return best
}

// Unresolved returns every entry still accusing o and not yet guilty.
func (s *Store) Unresolved(o *origin.Origin) []*Entry {
	var out []*Entry
	for e := s.head; e != nil; e = e.next {
		if !e.Guilty && origin.Equal(e.Suspect, o) {
			out = append(out, e)
		}
	}
	return out
}

// AnyUnresolved reports whether any entry remains unresolved.
func (s *Store) AnyUnresolved() bool {
	for e := s.head; e != nil; e = e.next {
		if !e.Guilty {
			return true
		}
	}
	return false
}

// MarkGuilty marks every entry still accusing o as guilty.
func (s *Store) MarkGuilty(o *origin.Origin) {
	for e := s.head; e != nil; e = e.next {
		if !e.Guilty && origin.Equal(e.Suspect, o) {
			e.Guilty = true
		}
	}
}

// ReassignAll rewrites every entry currently accusing from to instead
// accuse to, keeping s_lno/lno unchanged — valid only when from and to's
// blobs are identical, so the line numbering carries over exactly (spec
// §4.5's same-blob short-circuit).
func (s *Store) ReassignAll(from, to *origin.Origin) {
	for e := s.head; e != nil; e = e.next {
		if !e.Guilty && origin.Equal(e.Suspect, from) {
			e.Suspect = to
		}
	}
}

// Score returns e's cached score, 1 plus the alphanumeric-character count
// across its final-buffer range, computing and caching it on first use
// (spec §4.8).
func (s *Store) Score(e *Entry) int {
	if e.Score != 0 {
		return e.Score
	}
	count := 1
	for i := e.Lno; i < e.Lno+e.NumLines; i++ {
		for _, b := range s.idx.LineBytes(s.finalBuf, i) {
			if isAlnum(b) {
				count++
			}
		}
	}
	e.Score = count
	return count
}

// FinalText returns the text of numLines final-buffer lines starting at
// lno, joined as-is (spec §4.6's "file_o").
func (s *Store) FinalText(lno, numLines int) string {
	var b strings.Builder
	for i := lno; i < lno+numLines; i++ {
		b.Write(s.idx.LineBytes(s.finalBuf, i))
	}
	return b.String()
}

// ScoreRange computes the alphanumeric-character score (spec §4.8) for an
// arbitrary final-buffer range without requiring a committed Entry —
// used to compare move/copy candidates before one is chosen.
func (s *Store) ScoreRange(lno, numLines int) int {
	count := 1
	for i := lno; i < lno+numLines; i++ {
		for _, b := range s.idx.LineBytes(s.finalBuf, i) {
			if isAlnum(b) {
				count++
			}
		}
	}
	return count
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// CheckInvariants verifies spec §3 invariants (1)-(5) and panics with the
// full sequence rendered as text if any is violated — an invariant
// violation is a bug signal, never a user error (spec §7).
func (s *Store) CheckInvariants(rangeStart, rangeEnd int) {
	if s.head == nil {
		if rangeStart != rangeEnd {
			panic(s.dump("empty sequence but non-empty range"))
		}
		return
	}
	if s.head.Lno != rangeStart {
		panic(s.dump("first entry does not start at range_start"))
	}
	prev := s.head
	if prev.NumLines < 1 || prev.SLno < 0 {
		panic(s.dump("degenerate first entry"))
	}
	for e := s.head.next; e != nil; e = e.next {
		if e.NumLines < 1 {
			panic(s.dump("entry with num_lines < 1"))
		}
		if e.SLno < 0 {
			panic(s.dump("entry with s_lno < 0"))
		}
		if prev.Lno+prev.NumLines != e.Lno {
			panic(s.dump("gap or overlap between adjacent entries"))
		}
		if e.prev != prev || prev.next != e {
			panic(s.dump("doubly linked list inconsistency"))
		}
		prev = e
	}
	if prev.Lno+prev.NumLines != rangeEnd {
		panic(s.dump("last entry does not reach range_end"))
	}
}

func (s *Store) dump(reason string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "oops: %s\n", reason)
	for e := s.head; e != nil; e = e.next {
		fmt.Fprintf(&b, "  lno=%d num_lines=%d suspect=%v s_lno=%d guilty=%v\n",
			e.Lno, e.NumLines, e.Suspect, e.SLno, e.Guilty)
	}
	return b.String()
}
