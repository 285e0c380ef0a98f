// Package gitobj implements the ObjectStore, TreeDiffer, and
// RevisionWalker interfaces (coretypes) against a real on-disk git
// repository by shelling out to the git binary, the same way the
// teacher's internal/git package wraps "git blame"/"git rev-parse" with
// os/exec rather than reimplementing pack-file parsing.
package gitobj

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jensroland/git-blamebot/internal/coretypes"
)

// Store is a coretypes.ObjectStore backed by "git cat-file"/"git ls-tree"
// against repoRoot.
type Store struct {
	repoRoot string
}

// NewStore returns a Store rooted at repoRoot (a git working tree or
// bare repository path).
func NewStore(repoRoot string) *Store {
	return &Store{repoRoot: repoRoot}
}

func (s *Store) run(args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = s.repoRoot
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// TreeEntry looks up path within commit's tree via "git ls-tree".
func (s *Store) TreeEntry(commit coretypes.Digest, path string) (coretypes.Digest, string, bool, error) {
	out, err := s.run("ls-tree", string(commit), "--", path)
	if err != nil {
		return "", "", false, err
	}
	line := strings.TrimSpace(string(out))
	if line == "" {
		return "", "", false, nil
	}
	// "<mode> <type> <digest>\t<path>"
	tab := strings.IndexByte(line, '\t')
	if tab < 0 {
		return "", "", false, fmt.Errorf("gitobj: malformed ls-tree line %q", line)
	}
	fields := strings.Fields(line[:tab])
	if len(fields) != 3 {
		return "", "", false, fmt.Errorf("gitobj: malformed ls-tree line %q", line)
	}
	return coretypes.Digest(fields[2]), fields[0], true, nil
}

// ObjectKind reports a digest's object type via "git cat-file -t".
func (s *Store) ObjectKind(digest coretypes.Digest) (coretypes.Kind, error) {
	out, err := s.run("cat-file", "-t", string(digest))
	if err != nil {
		return coretypes.KindUnknown, err
	}
	switch strings.TrimSpace(string(out)) {
	case "blob":
		return coretypes.KindBlob, nil
	case "tree":
		return coretypes.KindTree, nil
	case "commit":
		return coretypes.KindCommit, nil
	case "tag":
		return coretypes.KindTag, nil
	default:
		return coretypes.KindUnknown, nil
	}
}

// ReadBlob returns a blob's raw content via "git cat-file blob".
func (s *Store) ReadBlob(digest coretypes.Digest) ([]byte, error) {
	return s.run("cat-file", "blob", string(digest))
}

// ReadCommitHeader returns a commit object's raw text via
// "git cat-file commit".
func (s *Store) ReadCommitHeader(digest coretypes.Digest) ([]byte, error) {
	return s.run("cat-file", "commit", string(digest))
}
