package fakestore

import (
	"strings"
	"time"

	"github.com/jensroland/git-blamebot/internal/coretypes"
)

// TreeDiffer is a coretypes.TreeDiffer over a Repo's trees. Renames and
// copies are detected by line-shingle Dice-coefficient similarity
// between blobs rather than path heuristics, the same idea the real git
// engine uses when -M/-C is requested (spec §6's "detect-rename").
type TreeDiffer struct {
	repo      *Repo
	threshold float64 // similarity required to call two paths a rename/copy, default 0.5
}

// NewTreeDiffer returns a TreeDiffer over repo with the default
// similarity threshold.
func NewTreeDiffer(repo *Repo) *TreeDiffer {
	return &TreeDiffer{repo: repo, threshold: 0.5}
}

// TreeDiff compares a's and b's trees path by path, then — when rename
// or copy detection is requested — matches any path that vanished from a
// (rename candidates) or any path newly added in b (copy candidates, the
// source path may still exist unchanged in b) against the other side by
// content similarity.
func (d *TreeDiffer) TreeDiff(a, b coretypes.Digest, opts coretypes.TreeDiffOptions) ([]coretypes.TreeDiffEntry, error) {
	treeA := d.repo.trees[d.repo.commits[a].tree]
	treeB := d.repo.trees[d.repo.commits[b].tree]

	var entries []coretypes.TreeDiffEntry
	matchedB := make(map[string]bool)
	vanished := make(map[string]bool) // pathA with no same-path survivor in b

	for pathA, blobA := range treeA {
		if blobB, ok := treeB[pathA]; ok {
			matchedB[pathA] = true
			if blobA != blobB {
				entries = append(entries, coretypes.TreeDiffEntry{
					Status: coretypes.StatusModify, PathOne: pathA, PathTwo: pathA, BlobOne: blobA, BlobTwo: blobB,
				})
			}
			continue
		}
		vanished[pathA] = true
	}

	if opts.DetectRename {
		for pathA := range vanished {
			blobA := treeA[pathA]
			bestPath, bestScore := "", 0.0
			for pathB, blobB := range treeB {
				if matchedB[pathB] {
					continue
				}
				if score := diceSimilarity(d.repo.blobs[blobA], d.repo.blobs[blobB]); score > bestScore {
					bestPath, bestScore = pathB, score
				}
			}
			if bestPath != "" && bestScore >= d.threshold {
				matchedB[bestPath] = true
				entries = append(entries, coretypes.TreeDiffEntry{
					Status: coretypes.StatusRename, PathOne: pathA, PathTwo: bestPath, BlobOne: blobA, BlobTwo: treeB[bestPath],
				})
			}
		}
	}

	if opts.DetectCopy || opts.FindCopiesHarder {
		for pathB, blobB := range treeB {
			if matchedB[pathB] {
				continue
			}
			bestPath, bestScore := "", 0.0
			for pathA, blobA := range treeA {
				if score := diceSimilarity(d.repo.blobs[blobA], d.repo.blobs[blobB]); score > bestScore {
					bestPath, bestScore = pathA, score
				}
			}
			if bestPath != "" && bestScore >= d.threshold {
				matchedB[pathB] = true
				entries = append(entries, coretypes.TreeDiffEntry{
					Status: coretypes.StatusCopy, PathOne: bestPath, PathTwo: pathB, BlobOne: treeA[bestPath], BlobTwo: blobB,
				})
			}
		}
	}

	for pathA := range vanished {
		already := false
		for _, e := range entries {
			if e.Status == coretypes.StatusRename && e.PathOne == pathA {
				already = true
				break
			}
		}
		if !already {
			entries = append(entries, coretypes.TreeDiffEntry{Status: coretypes.StatusDelete, PathOne: pathA, BlobOne: treeA[pathA]})
		}
	}
	for pathB, blobB := range treeB {
		if !matchedB[pathB] {
			entries = append(entries, coretypes.TreeDiffEntry{Status: coretypes.StatusAdd, PathTwo: pathB, BlobTwo: blobB})
		}
	}
	return entries, nil
}

// diceSimilarity computes the Dice coefficient over line shingles of two
// blobs' text, the standard cheap proxy for "this is probably the same
// content" used by content-addressed rename detectors.
func diceSimilarity(a, b []byte) float64 {
	linesA := shingle(a)
	linesB := shingle(b)
	if len(linesA) == 0 && len(linesB) == 0 {
		return 1
	}
	if len(linesA) == 0 || len(linesB) == 0 {
		return 0
	}
	common := 0
	remaining := make(map[string]int, len(linesB))
	for _, l := range linesB {
		remaining[l]++
	}
	for _, l := range linesA {
		if remaining[l] > 0 {
			common++
			remaining[l]--
		}
	}
	return 2 * float64(common) / float64(len(linesA)+len(linesB))
}

func shingle(b []byte) []string {
	var out []string
	for _, l := range strings.Split(string(b), "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Walker is a coretypes.RevisionWalker test double with no masked
// commits and no age cutoff unless explicitly configured.
type Walker struct {
	masked map[coretypes.Digest]bool
	maxAge time.Time
	has    bool
}

// NewWalker returns an empty Walker.
func NewWalker() *Walker { return &Walker{masked: make(map[coretypes.Digest]bool)} }

// Mask marks commit as uninteresting for subsequent Uninteresting calls.
func (w *Walker) Mask(commit coretypes.Digest) { w.masked[commit] = true }

func (w *Walker) Walk(positive, negative []coretypes.Digest) ([]coretypes.Digest, error) {
	return positive, nil
}

func (w *Walker) Uninteresting(commit coretypes.Digest) bool { return w.masked[commit] }

func (w *Walker) MaxAge() (time.Time, bool) { return w.maxAge, w.has }
