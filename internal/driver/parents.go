package driver

import (
	"github.com/jensroland/git-blamebot/internal/coretypes"
	"github.com/jensroland/git-blamebot/internal/origin"
)

// maxParents caps how many of a commit's parents assign_blame will walk,
// matching the spec's stated bound against pathological octopus merges.
const maxParents = 16

// ResolveParents maps target onto each of commit's parents (spec §4.5):
// same path present with an identical blob short-circuits the whole
// suspect by reassigning every entry straight to the parent's origin and
// reporting done=true; same path with a different blob yields an ordinary
// parent Origin for the Propagator to diff against; a missing path is
// chased through the Tree Differ's rename/copy detection, and a parent
// that neither has the path nor shows a rename is simply dropped (the
// file is novel on this branch as of target).
func ResolveParents(sb *Scoreboard, target *origin.Origin, parents []coretypes.Digest) (resolved []*origin.Origin, done bool, err error) {
	limit := len(parents)
	if limit > maxParents {
		limit = maxParents
	}

	for _, pd := range parents[:limit] {
		blob, _, ok, err := sb.ObjStore.TreeEntry(pd, target.Path)
		if err != nil {
			return nil, false, err
		}
		if ok {
			po := sb.Interner.Intern(pd, target.Path, blob)
			if blob == target.Blob {
				sb.Store.ReassignAll(target, po)
				sb.trace("same-blob short-circuit", map[string]any{"target": target.Path, "parent": pd})
				return nil, true, nil
			}
			resolved = append(resolved, po)
			continue
		}

		po, err := followRename(sb, target, pd)
		if err != nil {
			return nil, false, err
		}
		if po != nil {
			resolved = append(resolved, po)
		}
	}
	return resolved, false, nil
}

// followRename asks the Tree Differ for a rename/copy edit landing on
// target.Path between parentDigest's tree and target's own tree, and
// interns the matched source path in the parent if one is found (spec
// §4.5). Returns nil, nil when no TreeDiffer is configured or no matching
// edit exists — both mean "this parent contributes nothing for this
// path", not an error.
func followRename(sb *Scoreboard, target *origin.Origin, parentDigest coretypes.Digest) (*origin.Origin, error) {
	if sb.TreeDiffer == nil {
		return nil, nil
	}

	entries, err := sb.TreeDiffer.TreeDiff(parentDigest, target.Commit, coretypes.TreeDiffOptions{
		Recursive:    true,
		DetectRename: true,
	})
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if (e.Status == coretypes.StatusRename || e.Status == coretypes.StatusCopy) && e.PathTwo == target.Path {
			sb.trace("rename follow", map[string]any{"target": target.Path, "source": e.PathOne, "parent": parentDigest})
			return sb.Interner.Intern(parentDigest, e.PathOne, e.BlobOne), nil
		}
	}
	return nil, nil
}
