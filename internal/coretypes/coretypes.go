// Package coretypes defines the narrow interfaces the blame engine consumes
// from its external collaborators (object store, revision walker, tree
// differ, textual differ) and the handful of shared value types that cross
// package boundaries.
package coretypes

import "time"

// Digest is an opaque content address. The engine never interprets its
// bytes beyond equality comparison and use as a map key.
type Digest string

// Kind identifies the type of object a Digest resolves to.
type Kind int

const (
	KindUnknown Kind = iota
	KindBlob
	KindTree
	KindCommit
	KindTag
)

// ObjectStore resolves content-addressed blobs, trees, and commit headers.
// It is an external collaborator (spec §6); the core never parses repo
// formats beyond a commit header's author/committer/parent lines.
type ObjectStore interface {
	// TreeEntry looks up path within commit's tree, returning the blob
	// digest and file mode, or ok=false if the path does not exist.
	TreeEntry(commit Digest, path string) (blob Digest, mode string, ok bool, err error)
	ObjectKind(digest Digest) (Kind, error)
	ReadBlob(digest Digest) ([]byte, error)
	ReadCommitHeader(digest Digest) ([]byte, error)
}

// RevisionWalker enumerates the commit DAG and masks ancestors of negative
// revisions as uninteresting.
type RevisionWalker interface {
	Walk(positive, negative []Digest) ([]Digest, error)
	Uninteresting(commit Digest) bool
	MaxAge() (time.Time, bool)
}

// TreeDiffStatus mirrors a single tree-diff edit's classification.
type TreeDiffStatus byte

const (
	StatusAdd    TreeDiffStatus = 'A'
	StatusModify TreeDiffStatus = 'M'
	StatusDelete TreeDiffStatus = 'D'
	StatusRename TreeDiffStatus = 'R'
	StatusCopy   TreeDiffStatus = 'C'
)

// TreeDiffEntry is one edit produced by a TreeDiffer, from tree a (older,
// "before") to tree b (newer, "after").
type TreeDiffEntry struct {
	Status  TreeDiffStatus
	PathOne string // path in tree a; empty for a pure add
	PathTwo string // path in tree b; empty for a pure delete
	BlobOne Digest
	BlobTwo Digest
}

// TreeDiffOptions controls a TreeDiffer.TreeDiff call.
type TreeDiffOptions struct {
	Recursive        bool
	DetectRename     bool
	DetectCopy       bool
	FindCopiesHarder bool
}

// TreeDiffer computes path-level edits between two trees, with optional
// rename/copy detection.
type TreeDiffer interface {
	TreeDiff(a, b Digest, opts TreeDiffOptions) ([]TreeDiffEntry, error)
}

// TextDiffer runs a textual diff between two buffers at the given context
// width and returns unified-diff text. The Patch Adapter only ever parses
// this text; it never depends on how a TextDiffer produces it.
type TextDiffer interface {
	TextDiff(pre, post string, context int) (string, error)
}

// FatalError marks an error that should terminate the CLI with a nonzero
// exit code and a plain message, as opposed to an internal invariant
// violation (which panics).
type FatalError struct {
	Msg string
	Err error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *FatalError) Unwrap() error { return e.Err }

// Fatalf builds a FatalError.
func Fatalf(msg string, err error) error {
	return &FatalError{Msg: msg, Err: err}
}
