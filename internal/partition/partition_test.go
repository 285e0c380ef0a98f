package partition

import (
	"strings"
	"testing"

	"github.com/jensroland/git-blamebot/internal/lineidx"
	"github.com/jensroland/git-blamebot/internal/origin"
)

func newFixture(t *testing.T, content string, rangeStart, rangeEnd int, suspect *origin.Origin) *Store {
	t.Helper()
	buf := []byte(content)
	idx := lineidx.Build(buf)
	return New(buf, idx, rangeStart, rangeEnd, suspect)
}

func TestNew_SingleEntryCoversRange(t *testing.T) {
	o := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "A\nB\nC\n", 0, 3, o)

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	e := s.Head()
	if e.Lno != 0 || e.NumLines != 3 || e.SLno != 0 || e.Suspect != o {
		t.Fatalf("unexpected entry: %+v", e)
	}
	s.CheckInvariants(0, 3)
}

func TestNew_EmptyRange(t *testing.T) {
	o := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "", 0, 0, o)
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
	s.CheckInvariants(0, 0)
}

// Split exercises the four shapes a split can take: all three parts
// present (strict-interior cut), pre+middle (middle reaching the end),
// middle+post (middle cut from the start), and middle alone (exact cover).
func TestSplit_AllThreeParts(t *testing.T) {
	target := &origin.Origin{Commit: "c2", Path: "f"}
	parent := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "A\nB\nC\nD\nE\n", 0, 5, target)

	e := s.Head()
	s.Split(e, &Split{Lno: 0, NumLines: 1, Suspect: target, SLno: 0},
		&Split{Lno: 1, NumLines: 3, Suspect: parent, SLno: 1},
		&Split{Lno: 4, NumLines: 1, Suspect: target, SLno: 4})

	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Lno != 0 || entries[0].NumLines != 1 || entries[0].Suspect != target {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Lno != 1 || entries[1].NumLines != 3 || entries[1].Suspect != parent {
		t.Errorf("entry 1 = %+v", entries[1])
	}
	if entries[2].Lno != 4 || entries[2].NumLines != 1 || entries[2].Suspect != target {
		t.Errorf("entry 2 = %+v", entries[2])
	}
	s.CheckInvariants(0, 5)
}

func TestSplit_PreOnly(t *testing.T) {
	target := &origin.Origin{Commit: "c2", Path: "f"}
	parent := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "A\nB\nC\n", 0, 3, target)

	e := s.Head()
	s.Split(e, &Split{Lno: 0, NumLines: 1, Suspect: target, SLno: 0},
		&Split{Lno: 1, NumLines: 2, Suspect: parent, SLno: 1}, nil)

	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	s.CheckInvariants(0, 3)
}

func TestSplit_PostOnly(t *testing.T) {
	target := &origin.Origin{Commit: "c2", Path: "f"}
	parent := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "A\nB\nC\n", 0, 3, target)

	e := s.Head()
	s.Split(e, nil,
		&Split{Lno: 0, NumLines: 2, Suspect: parent, SLno: 0},
		&Split{Lno: 2, NumLines: 1, Suspect: target, SLno: 2})

	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	s.CheckInvariants(0, 3)
}

func TestSplit_ExactCover(t *testing.T) {
	target := &origin.Origin{Commit: "c2", Path: "f"}
	parent := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "A\nB\nC\n", 0, 3, target)

	e := s.Head()
	s.Split(e, nil, &Split{Lno: 0, NumLines: 3, Suspect: parent, SLno: 0}, nil)

	entries := s.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(entries), entries)
	}
	if entries[0].Suspect != parent {
		t.Errorf("entry 0 suspect = %+v, want %+v", entries[0].Suspect, parent)
	}
	s.CheckInvariants(0, 3)
}

func TestCoalesce_MergesAdjacentMatchingEntries(t *testing.T) {
	o := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "A\nB\nC\nD\n", 0, 4, o)

	e := s.Head()
	s.Split(e, &Split{Lno: 0, NumLines: 2, Suspect: o, SLno: 0},
		&Split{Lno: 2, NumLines: 2, Suspect: o, SLno: 2}, nil)
	if s.Len() != 2 {
		t.Fatalf("setup: expected 2 entries before coalesce, got %d", s.Len())
	}

	s.Coalesce()
	if s.Len() != 1 {
		t.Fatalf("Coalesce() left %d entries, want 1", s.Len())
	}
	if s.Head().NumLines != 4 {
		t.Fatalf("merged entry NumLines = %d, want 4", s.Head().NumLines)
	}
	s.CheckInvariants(0, 4)
}

func TestCoalesce_Idempotent(t *testing.T) {
	o := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "A\nB\nC\nD\n", 0, 4, o)
	e := s.Head()
	s.Split(e, &Split{Lno: 0, NumLines: 2, Suspect: o, SLno: 0},
		&Split{Lno: 2, NumLines: 2, Suspect: o, SLno: 2}, nil)

	s.Coalesce()
	firstPassLen := s.Len()
	s.Coalesce()
	if s.Len() != firstPassLen {
		t.Fatalf("second Coalesce() call changed entry count: %d -> %d", firstPassLen, s.Len())
	}
}

func TestCoalesce_DoesNotMergeDifferentSuspects(t *testing.T) {
	a := &origin.Origin{Commit: "c1", Path: "f"}
	b := &origin.Origin{Commit: "c2", Path: "f"}
	s := newFixture(t, "A\nB\nC\nD\n", 0, 4, a)
	e := s.Head()
	s.Split(e, &Split{Lno: 0, NumLines: 2, Suspect: a, SLno: 0},
		&Split{Lno: 2, NumLines: 2, Suspect: b, SLno: 2}, nil)

	s.Coalesce()
	if s.Len() != 2 {
		t.Fatalf("Coalesce() merged entries with different suspects: Len() = %d", s.Len())
	}
}

func TestCheckInvariants_PanicsOnGap(t *testing.T) {
	o := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "A\nB\nC\n", 0, 3, o)
	// Manually introduce a gap: second entry starts past where the first ends.
	s.Head().NumLines = 1
	fresh := &Entry{Lno: 2, NumLines: 1, Suspect: o, SLno: 2}
	s.insertAfter(s.Head(), fresh)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected CheckInvariants to panic on a gap between entries")
		}
		if !strings.Contains(r.(string), "gap or overlap") {
			t.Errorf("panic message = %q, want it to mention the gap", r)
		}
	}()
	s.CheckInvariants(0, 3)
}

func TestScore_CountsAlphanumericAndCaches(t *testing.T) {
	o := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "ab1\ncd2\n", 0, 2, o)
	e := s.Head()

	score := s.Score(e)
	want := 1 + 6 // 1 + six alphanumeric chars across both lines
	if score != want {
		t.Fatalf("Score() = %d, want %d", score, want)
	}
	if e.Score != want {
		t.Fatalf("Score() did not cache onto the entry: e.Score = %d", e.Score)
	}
}

func TestScoreRange_MatchesScore(t *testing.T) {
	o := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "xy\nzz\n", 0, 2, o)
	if got, want := s.ScoreRange(0, 2), s.Score(s.Head()); got != want {
		t.Fatalf("ScoreRange() = %d, want %d (matching Score())", got, want)
	}
}

func TestFinalText_JoinsLines(t *testing.T) {
	o := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "A\nB\nC\n", 0, 3, o)
	if got, want := s.FinalText(0, 2), "A\nB\n"; got != want {
		t.Fatalf("FinalText() = %q, want %q", got, want)
	}
}

func TestFindLastSLno_NoneUnresolved(t *testing.T) {
	o := &origin.Origin{Commit: "c1", Path: "f"}
	s := newFixture(t, "A\nB\n", 0, 2, o)
	s.MarkGuilty(o)
	if got := s.FindLastSLno(o); got != -1 {
		t.Fatalf("FindLastSLno() = %d, want -1 once everything is guilty", got)
	}
}
