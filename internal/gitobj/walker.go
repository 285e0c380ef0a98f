package gitobj

import (
	"strings"
	"time"

	"github.com/jensroland/git-blamebot/internal/coretypes"
)

// Walker is a coretypes.RevisionWalker backed by "git rev-list", masking
// ancestors of any negative revision as uninteresting (spec §6) and
// honoring an optional --max-age cutoff.
type Walker struct {
	repoRoot      string
	uninteresting map[coretypes.Digest]bool
	maxAge        time.Time
	hasMaxAge     bool
}

// NewWalker returns a Walker with no masked revisions and no age cutoff.
func NewWalker(repoRoot string) *Walker {
	return &Walker{repoRoot: repoRoot, uninteresting: make(map[coretypes.Digest]bool)}
}

// SetMaxAge installs a --max-age cutoff (spec §6).
func (w *Walker) SetMaxAge(t time.Time) {
	w.maxAge = t
	w.hasMaxAge = true
}

// Walk runs "git rev-list <positive...> --not <negative...>" and masks
// every commit reachable from a negative revision as uninteresting,
// returning the commits reachable from positive but not negative.
func (w *Walker) Walk(positive, negative []coretypes.Digest) ([]coretypes.Digest, error) {
	s := &Store{repoRoot: w.repoRoot}

	if len(negative) > 0 {
		negArgs := []string{"rev-list"}
		for _, n := range negative {
			negArgs = append(negArgs, string(n))
		}
		out, err := s.run(negArgs...)
		if err != nil {
			return nil, err
		}
		for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
			if line != "" {
				w.uninteresting[coretypes.Digest(line)] = true
			}
		}
	}

	args := []string{"rev-list"}
	for _, p := range positive {
		args = append(args, string(p))
	}
	if len(negative) > 0 {
		args = append(args, "--not")
		for _, n := range negative {
			args = append(args, string(n))
		}
	}
	out, err := s.run(args...)
	if err != nil {
		return nil, err
	}

	var result []coretypes.Digest
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line != "" {
			result = append(result, coretypes.Digest(line))
		}
	}
	return result, nil
}

// Uninteresting reports whether commit was masked by a prior Walk call.
func (w *Walker) Uninteresting(commit coretypes.Digest) bool {
	return w.uninteresting[commit]
}

// MaxAge returns the configured --max-age cutoff, if any.
func (w *Walker) MaxAge() (time.Time, bool) {
	return w.maxAge, w.hasMaxAge
}
