package driver

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jensroland/git-blamebot/internal/blamecore"
	"github.com/jensroland/git-blamebot/internal/commitcache"
	"github.com/jensroland/git-blamebot/internal/coretypes"
	"github.com/jensroland/git-blamebot/internal/origin"
)

// AssignBlame drives the main loop (spec §4.9): repeatedly pick any
// suspect still accused by an unresolved entry, resolve its parents,
// propagate blame along each one, optionally run the Mover and Copier,
// then mark the suspect guilty and coalesce — until every entry is
// resolved.
func AssignBlame(sb *Scoreboard, opts Options) error {
	iterations := 0
	for {
		suspect := nextUnresolvedSuspect(sb)
		if suspect == nil {
			break
		}

		if err := processSuspect(sb, opts, suspect); err != nil {
			return err
		}

		sb.Store.MarkGuilty(suspect)
		sb.Store.Coalesce()
		iterations++
	}
	sb.trace("assign_blame complete", map[string]any{
		"iterations": humanize.Comma(int64(iterations)),
		"entries":    humanize.Comma(int64(sb.Store.Len())),
	})
	return nil
}

// nextUnresolvedSuspect returns the suspect of the first entry that is
// not yet guilty, or nil if none remain.
func nextUnresolvedSuspect(sb *Scoreboard) *origin.Origin {
	for e := sb.Store.Head(); e != nil; e = e.Next() {
		if !e.Guilty {
			return e.Suspect
		}
	}
	return nil
}

// processSuspect resolves one suspect's parents and propagates/moves/
// copies blame for it (spec §4.9). Its caller always marks the suspect
// guilty and coalesces afterward, regardless of how far this got — an
// uninteresting or too-old commit simply stops here with its accused
// entries left pinned on it, which is the spec's intended outcome.
func processSuspect(sb *Scoreboard, opts Options, suspect *origin.Origin) error {
	commit, err := sb.Commits.Get(suspect.Commit)
	if err != nil {
		return err
	}

	if commit.Uninteresting || pastMaxAge(opts, commit) {
		return nil
	}

	resolved, done, err := ResolveParents(sb, suspect, commit.Parents)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	for _, parent := range resolved {
		ran, err := blamecore.Propagate(sb.Store, suspect, parent, sb.ObjStore, sb.Differ)
		if err != nil {
			return err
		}
		if !ran {
			break
		}
	}

	if opts.MoveEnabled {
		for _, parent := range resolved {
			if err := blamecore.Move(sb.Store, suspect, parent, sb.ObjStore, sb.Differ, opts.MoveThreshold); err != nil {
				return err
			}
		}
	}

	if opts.CopyEnabled {
		candidates, err := copyCandidates(sb, suspect, commit.Parents, opts)
		if err != nil {
			return err
		}
		if len(candidates) > 0 {
			if err := blamecore.Copy(sb.Store, suspect, candidates, sb.Differ, opts.CopyThreshold); err != nil {
				return err
			}
		}
	}

	return nil
}

// copyCandidates asks the Tree Differ for copy matches of suspect's path
// against each parent's tree (spec §4.7): any other path in a parent's
// tree whose content the differ judges similar enough to have been
// copied from, --copy-harder widening the search to paths unchanged
// between parent and child. This is deliberately independent of
// ResolveParents/rename-following — a copy source keeps its own path
// alive in both trees, so it never appears in the same-path or rename
// resolution the Propagator and Mover rely on.
func copyCandidates(sb *Scoreboard, suspect *origin.Origin, parents []coretypes.Digest, opts Options) ([]blamecore.Candidate, error) {
	if sb.TreeDiffer == nil {
		return nil, nil
	}

	var out []blamecore.Candidate
	for _, pd := range parents {
		entries, err := sb.TreeDiffer.TreeDiff(pd, suspect.Commit, coretypes.TreeDiffOptions{
			Recursive:        true,
			DetectCopy:       true,
			FindCopiesHarder: opts.CopyHarder,
		})
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Status != coretypes.StatusCopy || e.PathTwo != suspect.Path {
				continue
			}
			blob, err := sb.ObjStore.ReadBlob(e.BlobOne)
			if err != nil {
				return nil, err
			}
			src := sb.Interner.Intern(pd, e.PathOne, e.BlobOne)
			sb.trace("copy candidate", map[string]any{"target": suspect.Path, "source": e.PathOne, "parent": pd})
			out = append(out, blamecore.Candidate{Origin: src, Blob: blob})
		}
	}
	return out, nil
}

// pastMaxAge reports whether commit's author time is at or before the
// --max-age cutoff (spec §6), in which case it is treated like an
// uninteresting commit: blame stops here rather than propagating further.
func pastMaxAge(opts Options, commit *commitcache.Commit) bool {
	if !opts.HasMaxAge {
		return false
	}
	return time.Unix(commit.AuthorTime, 0).Before(opts.MaxAge) || time.Unix(commit.AuthorTime, 0).Equal(opts.MaxAge)
}
