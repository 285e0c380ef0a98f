package blamecore

import (
	"github.com/jensroland/git-blamebot/internal/coretypes"
	"github.com/jensroland/git-blamebot/internal/origin"
	"github.com/jensroland/git-blamebot/internal/partition"
	"github.com/jensroland/git-blamebot/internal/patch"
)

// Candidate is one parent-side blob the Mover or Copier searches for an
// unresolved entry's text inside (spec §4.6, §4.7).
type Candidate struct {
	Origin *origin.Origin
	Blob   []byte
}

type proposal struct {
	origin           *origin.Origin
	tlno, same, plno int
	score            int
}

// proposeAgainst runs a context-1 diff between candidate's bytes (as
// preimage) and the entry's exact final-buffer text (as postimage,
// spec's "file_o"), and returns the highest-scoring unchanged region as a
// move/copy proposal, if any.
func proposeAgainst(store *partition.Store, e *partition.Entry, cand Candidate, differ coretypes.TextDiffer) (*proposal, error) {
	fileO := store.FinalText(e.Lno, e.NumLines)
	diffText, err := differ.TextDiff(string(cand.Blob), fileO, 1)
	if err != nil {
		return nil, err
	}
	p := patch.Parse(diffText)

	var best *proposal
	consider := func(tlno, same, plno int) {
		if same <= tlno {
			return
		}
		score := store.ScoreRange(e.Lno+tlno, same-tlno)
		if best == nil || score > best.score {
			best = &proposal{origin: cand.Origin, tlno: tlno, same: same, plno: plno, score: score}
		}
	}
	plno, tlno := 0, 0
	for _, c := range p.Chunks {
		consider(tlno, c.Same, plno)
		plno, tlno = c.PNext, c.TNext
	}
	// Trailing unchanged region after the last chunk (or the whole entry,
	// verbatim, when the diff against this candidate is empty).
	consider(tlno, e.NumLines, plno)
	return best, nil
}

// BestProposal scans every candidate for entry e and returns the single
// highest-scoring proposal across all of them (spec §4.7: "retain the
// best-scoring proposal across all candidate blobs").
func BestProposal(store *partition.Store, e *partition.Entry, candidates []Candidate, differ coretypes.TextDiffer) (*proposal, error) {
	var best *proposal
	for _, cand := range candidates {
		p, err := proposeAgainst(store, e, cand, differ)
		if err != nil {
			return nil, err
		}
		if p != nil && (best == nil || p.score > best.score) {
			best = p
		}
	}
	return best, nil
}

// Apply commits a winning proposal for entry e if its score clears
// threshold, splitting e into (unchanged pre, moved/copied middle,
// unchanged post) exactly as the Propagator does (spec §4.4, §4.6, §4.7).
func Apply(store *partition.Store, e *partition.Entry, target *origin.Origin, p *proposal, threshold int) bool {
	if p == nil || p.score <= threshold {
		return false
	}
	var pre, middle, post *partition.Split
	if p.tlno > 0 {
		pre = &partition.Split{
			Lno: e.Lno, NumLines: p.tlno,
			Suspect: target, SLno: e.SLno, Guilty: e.Guilty,
		}
	}
	middle = &partition.Split{
		Lno: e.Lno + p.tlno, NumLines: p.same - p.tlno,
		Suspect: p.origin, SLno: p.plno, Guilty: false,
	}
	if p.same < e.NumLines {
		post = &partition.Split{
			Lno: e.Lno + p.same, NumLines: e.NumLines - p.same,
			Suspect: target, SLno: e.SLno + p.same, Guilty: e.Guilty,
		}
	}
	store.Split(e, pre, middle, post)
	return true
}

// Move runs the Mover for one parent origin at the same path (spec §4.6):
// every unresolved entry accusing target is tried against parent's blob,
// and the winning proposal is applied if its score beats moveThreshold.
func Move(store *partition.Store, target, parent *origin.Origin, objStore coretypes.ObjectStore, differ coretypes.TextDiffer, moveThreshold int) error {
	parentBytes, err := objStore.ReadBlob(parent.Blob)
	if err != nil {
		return err
	}
	cand := Candidate{Origin: parent, Blob: parentBytes}
	for _, e := range store.Unresolved(target) {
		p, err := proposeAgainst(store, e, cand, differ)
		if err != nil {
			return err
		}
		Apply(store, e, target, p, moveThreshold)
	}
	return nil
}

// Copy runs the Copier for a set of candidate parent-side blobs (spec
// §4.7), excluding the path the Mover already tried.
func Copy(store *partition.Store, target *origin.Origin, candidates []Candidate, differ coretypes.TextDiffer, copyThreshold int) error {
	for _, e := range store.Unresolved(target) {
		best, err := BestProposal(store, e, candidates, differ)
		if err != nil {
			return err
		}
		Apply(store, e, target, best, copyThreshold)
	}
	return nil
}
