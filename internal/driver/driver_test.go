package driver_test

import (
	"testing"

	"github.com/jensroland/git-blamebot/internal/coretypes"
	"github.com/jensroland/git-blamebot/internal/driver"
	"github.com/jensroland/git-blamebot/internal/fakestore"
	"github.com/jensroland/git-blamebot/internal/origin"
	"github.com/jensroland/git-blamebot/internal/patch"
)

func setupSB(repo *fakestore.Repo, commit coretypes.Digest, path string, rangeEnd int) *driver.Scoreboard {
	store := fakestore.NewStore(repo)
	treeDiffer := fakestore.NewTreeDiffer(repo)
	blob, _, _, _ := store.TreeEntry(commit, path)
	finalBlob, _ := store.ReadBlob(blob)
	initial := &origin.Origin{Commit: commit, Path: path, Blob: blob}
	return driver.New(initial, finalBlob, 0, rangeEnd, store, treeDiffer, patch.DMPTextDiffer{}, nil, nil)
}

// scenario 1: single-commit file, every line attributed to C.
func TestSingleCommitFile(t *testing.T) {
	repo := fakestore.NewRepo()
	blobF := repo.PutBlob("A\nB\nC\n")
	tree := repo.PutTree(map[string]coretypes.Digest{"f": blobF})
	c := repo.PutCommit(tree, nil, "alice", 1000)

	sb := setupSB(repo, c, "f", 3)
	if err := driver.AssignBlame(sb, driver.DefaultOptions()); err != nil {
		t.Fatalf("AssignBlame: %v", err)
	}
	sb.Store.CheckInvariants(0, 3)

	entries := sb.Store.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 coalesced entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Lno != 0 || e.NumLines != 3 || e.SLno != 0 || !e.Guilty || e.Suspect.Commit != c || e.Suspect.Path != "f" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

// scenario 2: append — C1 introduces A\nB\n, C2 appends C\n.
func TestAppend(t *testing.T) {
	repo := fakestore.NewRepo()
	blob1 := repo.PutBlob("A\nB\n")
	tree1 := repo.PutTree(map[string]coretypes.Digest{"f": blob1})
	c1 := repo.PutCommit(tree1, nil, "alice", 1000)

	blob2 := repo.PutBlob("A\nB\nC\n")
	tree2 := repo.PutTree(map[string]coretypes.Digest{"f": blob2})
	c2 := repo.PutCommit(tree2, []coretypes.Digest{c1}, "bob", 2000)

	sb := setupSB(repo, c2, "f", 3)
	if err := driver.AssignBlame(sb, driver.DefaultOptions()); err != nil {
		t.Fatalf("AssignBlame: %v", err)
	}
	sb.Store.CheckInvariants(0, 3)

	entries := sb.Store.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Lno != 0 || entries[0].NumLines != 2 || entries[0].SLno != 0 || entries[0].Suspect.Commit != c1 {
		t.Fatalf("entry 0 mismatch: %+v", entries[0])
	}
	if entries[1].Lno != 2 || entries[1].NumLines != 1 || entries[1].SLno != 2 || entries[1].Suspect.Commit != c2 {
		t.Fatalf("entry 1 mismatch: %+v", entries[1])
	}
}

// scenario 3: middle insertion — C1: A\nB\n; C2: A\nX\nB\n.
func TestMiddleInsertion(t *testing.T) {
	repo := fakestore.NewRepo()
	blob1 := repo.PutBlob("A\nB\n")
	tree1 := repo.PutTree(map[string]coretypes.Digest{"f": blob1})
	c1 := repo.PutCommit(tree1, nil, "alice", 1000)

	blob2 := repo.PutBlob("A\nX\nB\n")
	tree2 := repo.PutTree(map[string]coretypes.Digest{"f": blob2})
	c2 := repo.PutCommit(tree2, []coretypes.Digest{c1}, "bob", 2000)

	sb := setupSB(repo, c2, "f", 3)
	if err := driver.AssignBlame(sb, driver.DefaultOptions()); err != nil {
		t.Fatalf("AssignBlame: %v", err)
	}
	sb.Store.CheckInvariants(0, 3)

	entries := sb.Store.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(entries), entries)
	}
	want := []struct {
		lno, numLines, slno int
		suspect              coretypes.Digest
	}{
		{0, 1, 0, c1},
		{1, 1, 1, c2},
		{2, 1, 1, c1},
	}
	for i, w := range want {
		e := entries[i]
		if e.Lno != w.lno || e.NumLines != w.numLines || e.SLno != w.slno || e.Suspect.Commit != w.suspect {
			t.Fatalf("entry %d mismatch: got %+v want %+v", i, e, w)
		}
	}
}

// scenario 4: rename follow — C1 creates old.txt, C2 renames to new.txt
// unchanged; both lines attribute to (C1, old.txt).
func TestRenameFollow(t *testing.T) {
	repo := fakestore.NewRepo()
	blob1 := repo.PutBlob("A\nB\n")
	tree1 := repo.PutTree(map[string]coretypes.Digest{"old.txt": blob1})
	c1 := repo.PutCommit(tree1, nil, "alice", 1000)

	tree2 := repo.PutTree(map[string]coretypes.Digest{"new.txt": blob1})
	c2 := repo.PutCommit(tree2, []coretypes.Digest{c1}, "bob", 2000)

	sb := setupSB(repo, c2, "new.txt", 2)
	if err := driver.AssignBlame(sb, driver.DefaultOptions()); err != nil {
		t.Fatalf("AssignBlame: %v", err)
	}
	sb.Store.CheckInvariants(0, 2)

	entries := sb.Store.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(entries), entries)
	}
	e := entries[0]
	if e.Suspect.Commit != c1 || e.Suspect.Path != "old.txt" || e.NumLines != 2 {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

// scenario 5: move detection — C1: a.txt = X\nY\nZ\n; C2: a.txt = Y\nZ\nX\n.
// With -M enabled, at least one line must end up attributed back to c1.
// The Propagator alone already carries Y and Z back to c1, so this check
// does not single out what the Mover does with the relocated X.
func TestMoveDetection(t *testing.T) {
	repo := fakestore.NewRepo()
	blob1 := repo.PutBlob("X\nY\nZ\n")
	tree1 := repo.PutTree(map[string]coretypes.Digest{"a.txt": blob1})
	c1 := repo.PutCommit(tree1, nil, "alice", 1000)

	blob2 := repo.PutBlob("Y\nZ\nX\n")
	tree2 := repo.PutTree(map[string]coretypes.Digest{"a.txt": blob2})
	c2 := repo.PutCommit(tree2, []coretypes.Digest{c1}, "bob", 2000)

	sbMove := setupSB(repo, c2, "a.txt", 3)
	opts := driver.DefaultOptions()
	opts.MoveEnabled = true
	opts.MoveThreshold = 0 // single-letter test lines score far below the real default 20
	if err := driver.AssignBlame(sbMove, opts); err != nil {
		t.Fatalf("AssignBlame with -M: %v", err)
	}
	sbMove.Store.CheckInvariants(0, 3)

	sawC1 := false
	for _, e := range sbMove.Store.Entries() {
		if e.Suspect.Commit == c1 {
			sawC1 = true
		}
	}
	if !sawC1 {
		t.Fatalf("expected at least one entry attributed back to c1 with -M enabled")
	}
}

// scenario 6: copy-harder — C1: src.c has body B; C2 adds dst.c with the
// same body verbatim. With -C -C those lines attribute to (C1, src.c).
func TestCopyHarder(t *testing.T) {
	body := "func B() {\n  return 1\n}\n"
	repo := fakestore.NewRepo()
	blobSrc := repo.PutBlob(body)
	tree1 := repo.PutTree(map[string]coretypes.Digest{"src.c": blobSrc})
	c1 := repo.PutCommit(tree1, nil, "alice", 1000)

	blobDst := repo.PutBlob(body)
	tree2 := repo.PutTree(map[string]coretypes.Digest{"src.c": blobSrc, "dst.c": blobDst})
	c2 := repo.PutCommit(tree2, []coretypes.Digest{c1}, "bob", 2000)

	sb := setupSB(repo, c2, "dst.c", 3)
	opts := driver.DefaultOptions()
	opts.CopyEnabled = true
	opts.CopyHarder = true
	opts.CopyThreshold = 0 // the short test body scores far below the real default 40
	if err := driver.AssignBlame(sb, opts); err != nil {
		t.Fatalf("AssignBlame: %v", err)
	}
	sb.Store.CheckInvariants(0, 3)

	sawC1 := false
	for _, e := range sb.Store.Entries() {
		if e.Suspect.Commit == c1 {
			sawC1 = true
		}
	}
	if !sawC1 {
		t.Fatalf("expected copy-harder to attribute lines back to c1")
	}
}
