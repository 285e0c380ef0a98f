// Package blamecore implements the Propagator and its Mover/Copier
// variants (spec §4.4, §4.6, §4.7): the algorithms that rewrite a
// partition.Store's entries to reassign line ranges from one suspect to
// another based on diff chunks.
//
// The shifting/splitting arithmetic here is the same shape as the
// teacher's internal/linemap.AdjustLinePositions (walk a line range
// forward through a sequence of hunks, keeping the part before the edit,
// dropping the part inside it, shifting the part after) and its
// internal/checkpoint/attribution.go (walk ordered edit pairs building a
// per-line attribution map) — generalized from "AI edit checkpoints" to
// "diff chunks between a commit and a parent".
package blamecore

import (
	"github.com/jensroland/git-blamebot/internal/coretypes"
	"github.com/jensroland/git-blamebot/internal/origin"
	"github.com/jensroland/git-blamebot/internal/partition"
	"github.com/jensroland/git-blamebot/internal/patch"
)

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Propagate pushes blame for target to parent along matching diff regions
// (spec §4.4). It reports ran=false when no unresolved entry accuses
// target — the spec's "done for this parent" case — so the driver can
// skip remaining parents/steps for this suspect.
func Propagate(store *partition.Store, target, parent *origin.Origin, objStore coretypes.ObjectStore, differ coretypes.TextDiffer) (ran bool, err error) {
	if len(store.Unresolved(target)) == 0 {
		return false, nil
	}

	parentBytes, err := objStore.ReadBlob(parent.Blob)
	if err != nil {
		return false, err
	}
	targetBytes, err := objStore.ReadBlob(target.Blob)
	if err != nil {
		return false, err
	}

	diffText, err := differ.TextDiff(string(parentBytes), string(targetBytes), 0)
	if err != nil {
		return false, err
	}
	p := patch.Parse(diffText)

	plno, tlno := 0, 0
	for _, c := range p.Chunks {
		blameChunk(store, target, parent, tlno, plno, c.Same)
		plno, tlno = c.PNext, c.TNext
	}

	lastSLno := store.FindLastSLno(target)
	if lastSLno == -1 {
		return true, nil
	}
	blameChunk(store, target, parent, tlno, plno, lastSLno)
	return true, nil
}

// blameChunk reassigns the portion of every unresolved target-accusing
// entry that overlaps the unchanged postimage span [tlno, same) to parent,
// leaving the rest of each entry on target (spec §4.4).
func blameChunk(store *partition.Store, target, parent *origin.Origin, tlno, plno, same int) {
	for _, e := range store.Unresolved(target) {
		eEnd := e.SLno + e.NumLines
		if eEnd <= tlno || e.SLno >= same {
			// Whole span below tlno (already handled) or above same
			// (handled by a later chunk or the tail sweep).
			continue
		}

		delta := e.Lno - e.SLno

		midStart := max(e.SLno, tlno)
		midEnd := min(eEnd, same)
		if midEnd <= midStart {
			continue // zero-length middle: nothing to reassign
		}

		var pre, middle, post *partition.Split
		if midStart > e.SLno {
			pre = &partition.Split{
				Lno: e.Lno, NumLines: midStart - e.SLno,
				Suspect: target, SLno: e.SLno, Guilty: e.Guilty,
			}
		}
		middle = &partition.Split{
			Lno: midStart + delta, NumLines: midEnd - midStart,
			Suspect: parent, SLno: plno + (midStart - tlno), Guilty: false,
		}
		if eEnd > midEnd {
			post = &partition.Split{
				Lno: midEnd + delta, NumLines: eEnd - midEnd,
				Suspect: target, SLno: midEnd, Guilty: e.Guilty,
			}
		}
		store.Split(e, pre, middle, post)
	}
}
