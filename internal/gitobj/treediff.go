package gitobj

import (
	"fmt"
	"strings"

	"github.com/jensroland/git-blamebot/internal/coretypes"
)

// TreeDiffer is a coretypes.TreeDiffer backed by "git diff-tree".
type TreeDiffer struct {
	repoRoot string
}

// NewTreeDiffer returns a TreeDiffer rooted at repoRoot.
func NewTreeDiffer(repoRoot string) *TreeDiffer {
	return &TreeDiffer{repoRoot: repoRoot}
}

// TreeDiff runs "git diff-tree" between a and b and parses its raw
// diff format into TreeDiffEntry values (spec §6).
func (d *TreeDiffer) TreeDiff(a, b coretypes.Digest, opts coretypes.TreeDiffOptions) ([]coretypes.TreeDiffEntry, error) {
	args := []string{"diff-tree", "--no-commit-id", "-r", "--raw"}
	if opts.DetectRename {
		args = append(args, "-M")
	}
	if opts.DetectCopy {
		args = append(args, "-C")
	}
	if opts.FindCopiesHarder {
		args = append(args, "--find-copies-harder")
	}
	args = append(args, string(a), string(b))

	s := &Store{repoRoot: d.repoRoot}
	out, err := s.run(args...)
	if err != nil {
		return nil, err
	}
	return parseRawDiff(out)
}

// parseRawDiff parses "git diff-tree --raw" lines of the form:
//
//	:old-mode new-mode old-blob new-blob status\told-path[\tnew-path]
func parseRawDiff(out []byte) ([]coretypes.TreeDiffEntry, error) {
	var entries []coretypes.TreeDiffEntry
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, ":") {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		meta := strings.Fields(strings.TrimPrefix(fields[0], ":"))
		if len(meta) != 5 {
			return nil, fmt.Errorf("gitobj: malformed diff-tree line %q", line)
		}
		status := meta[4]
		entry := coretypes.TreeDiffEntry{
			Status:  coretypes.TreeDiffStatus(status[0]),
			BlobOne: coretypes.Digest(meta[2]),
			BlobTwo: coretypes.Digest(meta[3]),
		}
		switch entry.Status {
		case coretypes.StatusRename, coretypes.StatusCopy:
			if len(fields) < 3 {
				continue
			}
			entry.PathOne = fields[1]
			entry.PathTwo = fields[2]
		case coretypes.StatusDelete:
			if len(fields) < 2 {
				continue
			}
			entry.PathOne = fields[1]
		default: // add, modify
			if len(fields) < 2 {
				continue
			}
			entry.PathTwo = fields[1]
			if entry.Status == coretypes.StatusModify {
				entry.PathOne = fields[1]
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
