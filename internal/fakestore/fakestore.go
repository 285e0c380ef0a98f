// Package fakestore provides in-memory ObjectStore/TreeDiffer/
// RevisionWalker test doubles (spec §4.16), used by tests in place of a
// real git repository. Object identity follows the content-addressed
// model sketched in the object package's Hash/TreeEntry/CommitObj types
// (other_examples/odvcencio-got__types.go): a commit points at a tree, a
// tree is a sorted list of path-to-blob entries, and every digest is a
// SHA-256 hex hash of the object's canonical bytes, mirroring the
// teacher's record.ContentHash normalize-then-hash approach.
package fakestore

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"time"

	"github.com/jensroland/git-blamebot/internal/coretypes"
)

// Repo is an in-memory commit graph: blobs keyed by content digest, trees
// keyed by digest mapping path to blob digest, and commits keyed by
// digest with tree pointer and parent list.
type Repo struct {
	blobs   map[coretypes.Digest][]byte
	trees   map[coretypes.Digest]map[string]coretypes.Digest
	commits map[coretypes.Digest]*commitSpec
}

type commitSpec struct {
	tree    coretypes.Digest
	parents []coretypes.Digest
	author  string
	ts      int64
}

// NewRepo returns an empty in-memory repository.
func NewRepo() *Repo {
	return &Repo{
		blobs:   make(map[coretypes.Digest][]byte),
		trees:   make(map[coretypes.Digest]map[string]coretypes.Digest),
		commits: make(map[coretypes.Digest]*commitSpec),
	}
}

// hash digests arbitrary bytes the same way across blobs/trees/commits.
func hash(kind string, b []byte) coretypes.Digest {
	h := sha256.Sum256(append([]byte(kind+"\x00"), b...))
	return coretypes.Digest(fmt.Sprintf("%x", h))
}

// PutBlob stores content and returns its digest.
func (r *Repo) PutBlob(content string) coretypes.Digest {
	b := []byte(content)
	d := hash("blob", b)
	r.blobs[d] = b
	return d
}

// PutTree stores a path-to-blob mapping and returns its digest. The
// digest is derived from the sorted (path, blob) pairs so two trees with
// identical content always collide, matching a real content-addressed
// store.
func (r *Repo) PutTree(files map[string]coretypes.Digest) coretypes.Digest {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var canon []byte
	for _, p := range paths {
		canon = append(canon, []byte(p+"\x00"+string(files[p])+"\x01")...)
	}
	d := hash("tree", canon)

	stored := make(map[string]coretypes.Digest, len(files))
	for p, b := range files {
		stored[p] = b
	}
	r.trees[d] = stored
	return d
}

// PutCommit stores a commit and returns its digest.
func (r *Repo) PutCommit(tree coretypes.Digest, parents []coretypes.Digest, author string, ts int64) coretypes.Digest {
	var canon []byte
	canon = append(canon, []byte("tree "+string(tree)+"\n")...)
	for _, p := range parents {
		canon = append(canon, []byte("parent "+string(p)+"\n")...)
	}
	canon = append(canon, []byte(fmt.Sprintf("author %s\nts %d\n", author, ts))...)
	d := hash("commit", canon)
	r.commits[d] = &commitSpec{tree: tree, parents: parents, author: author, ts: ts}
	return d
}

// Store adapts Repo to coretypes.ObjectStore.
type Store struct{ repo *Repo }

// NewStore wraps repo as a coretypes.ObjectStore.
func NewStore(repo *Repo) *Store { return &Store{repo: repo} }

func (s *Store) TreeEntry(commit coretypes.Digest, path string) (coretypes.Digest, string, bool, error) {
	cm, ok := s.repo.commits[commit]
	if !ok {
		return "", "", false, fmt.Errorf("fakestore: no such commit %s", commit)
	}
	tree, ok := s.repo.trees[cm.tree]
	if !ok {
		return "", "", false, fmt.Errorf("fakestore: no such tree %s", cm.tree)
	}
	blob, ok := tree[path]
	if !ok {
		return "", "", false, nil
	}
	return blob, "100644", true, nil
}

func (s *Store) ObjectKind(digest coretypes.Digest) (coretypes.Kind, error) {
	if _, ok := s.repo.blobs[digest]; ok {
		return coretypes.KindBlob, nil
	}
	if _, ok := s.repo.trees[digest]; ok {
		return coretypes.KindTree, nil
	}
	if _, ok := s.repo.commits[digest]; ok {
		return coretypes.KindCommit, nil
	}
	return coretypes.KindUnknown, nil
}

func (s *Store) ReadBlob(digest coretypes.Digest) ([]byte, error) {
	b, ok := s.repo.blobs[digest]
	if !ok {
		return nil, fmt.Errorf("fakestore: no such blob %s", digest)
	}
	return b, nil
}

func (s *Store) ReadCommitHeader(digest coretypes.Digest) ([]byte, error) {
	cm, ok := s.repo.commits[digest]
	if !ok {
		return nil, fmt.Errorf("fakestore: no such commit %s", digest)
	}
	var out []byte
	out = append(out, []byte("tree "+string(cm.tree)+"\n")...)
	for _, p := range cm.parents {
		out = append(out, []byte("parent "+string(p)+"\n")...)
	}
	t := time.Unix(cm.ts, 0).UTC()
	out = append(out, []byte(fmt.Sprintf("author %s <%s@example.com> %d +0000\n", cm.author, cm.author, t.Unix()))...)
	out = append(out, []byte(fmt.Sprintf("committer %s <%s@example.com> %d +0000\n", cm.author, cm.author, t.Unix()))...)
	out = append(out, []byte("\n"+cm.author+"'s commit\n")...)
	return out, nil
}
