// Package origin identifies one blob in one commit's tree and interns
// origins so equal (commit, path) pairs share a single instance.
package origin

import (
	"sync"

	"github.com/jensroland/git-blamebot/internal/coretypes"
)

// Origin is a (commit, path, blob) triple. Equality compares commit digest
// then path, per spec §3; the blob digest rides along so callers can
// short-circuit on unchanged content without a second store lookup.
type Origin struct {
	Commit coretypes.Digest
	Path   string
	Blob   coretypes.Digest
}

type key struct {
	commit coretypes.Digest
	path   string
}

// Interner deduplicates Origins for the same (commit, path). Ownership:
// origins are shared by any number of blame entries and outlive them, so
// the interner is the single place that decides identity.
type Interner struct {
	mu    sync.Mutex
	table map[key]*Origin
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{table: make(map[key]*Origin)}
}

// Intern returns the canonical *Origin for (commit, path, blob). If an
// Origin for the same (commit, path) was already interned, the existing
// instance is returned regardless of the blob argument — the first writer
// wins, which is always correct since a commit's tree maps a path to
// exactly one blob.
func (in *Interner) Intern(commit coretypes.Digest, path string, blob coretypes.Digest) *Origin {
	k := key{commit: commit, path: path}

	in.mu.Lock()
	defer in.mu.Unlock()

	if o, ok := in.table[k]; ok {
		return o
	}
	o := &Origin{Commit: commit, Path: path, Blob: blob}
	in.table[k] = o
	return o
}

// Equal reports whether two origins identify the same (commit, path).
func Equal(a, b *Origin) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Commit == b.Commit && a.Path == b.Path
}
