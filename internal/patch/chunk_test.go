package patch

import "testing"

func TestParse_SingleLineReplacement(t *testing.T) {
	diff := "@@ -2,1 +2,1 @@\n-B\n+X\n"
	p := Parse(diff)
	want := []Chunk{{Same: 1, PNext: 2, TNext: 2}}
	assertChunks(t, p.Chunks, want)
}

func TestParse_PureInsertion(t *testing.T) {
	diff := "@@ -1,0 +2,1 @@\n+X\n"
	p := Parse(diff)
	want := []Chunk{{Same: 1, PNext: 1, TNext: 2}}
	assertChunks(t, p.Chunks, want)
}

func TestParse_PureDeletion(t *testing.T) {
	diff := "@@ -2,1 +1,0 @@\n-B\n"
	p := Parse(diff)
	want := []Chunk{{Same: 1, PNext: 2, TNext: 1}}
	assertChunks(t, p.Chunks, want)
}

func TestParse_TrailingContextCorrection(t *testing.T) {
	diff := "@@ -1,3 +1,3 @@\n A\n-B\n+X\n C\n"
	p := Parse(diff)
	want := []Chunk{{Same: 0, PNext: 2, TNext: 2}}
	assertChunks(t, p.Chunks, want)
}

func TestParse_MultipleHunks(t *testing.T) {
	diff := "@@ -2,1 +2,1 @@\n-B\n+X\n@@ -2,1 +1,0 @@\n-B\n"
	p := Parse(diff)
	want := []Chunk{
		{Same: 1, PNext: 2, TNext: 2},
		{Same: 1, PNext: 2, TNext: 1},
	}
	assertChunks(t, p.Chunks, want)
}

func TestParse_MalformedHeaderDropped(t *testing.T) {
	diff := "@@ bogus @@\n-B\n+X\n"
	p := Parse(diff)
	if len(p.Chunks) != 0 {
		t.Fatalf("expected 0 chunks for an unparseable header, got %d: %+v", len(p.Chunks), p.Chunks)
	}
}

func TestParse_EmptyDiff(t *testing.T) {
	p := Parse("")
	if len(p.Chunks) != 0 {
		t.Fatalf("expected 0 chunks for empty diff text, got %d", len(p.Chunks))
	}
}

func assertChunks(t *testing.T, got, want []Chunk) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("chunk count = %d, want %d (%+v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
