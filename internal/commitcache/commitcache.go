// Package commitcache demand-loads and caches parsed commit headers for
// the life of one Scoreboard (spec §4.12, §5, §9 design notes on the
// commit cache keyed by digest).
package commitcache

import (
	"strconv"
	"strings"

	"github.com/jensroland/git-blamebot/internal/coretypes"
	"github.com/jensroland/git-blamebot/internal/graft"
)

// Commit is the parsed form of a content-addressed commit object: tree
// pointer, parents, author/committer identity and timestamp, and the
// summary line.
type Commit struct {
	Digest             coretypes.Digest
	Tree               coretypes.Digest
	Parents            []coretypes.Digest
	Author             string
	AuthorMail         string
	AuthorTime         int64
	AuthorTZ           string
	Committer          string
	CommitterMail      string
	CommitterTime      int64
	CommitterTZ        string
	Summary            string
	Uninteresting      bool
}

// Cache demand-loads commits from an ObjectStore, applying any Graft Store
// override to the reported parent list, and remembers each parsed Commit
// for the lifetime of one blame invocation.
type Cache struct {
	store  coretypes.ObjectStore
	grafts *graft.Store
	walker coretypes.RevisionWalker
	table  map[coretypes.Digest]*Commit
}

// New builds a Cache. grafts and walker may be nil.
func New(store coretypes.ObjectStore, grafts *graft.Store, walker coretypes.RevisionWalker) *Cache {
	return &Cache{store: store, grafts: grafts, walker: walker, table: make(map[coretypes.Digest]*Commit)}
}

// Get returns the parsed Commit for digest, loading and caching it on
// first access.
func (c *Cache) Get(digest coretypes.Digest) (*Commit, error) {
	if cm, ok := c.table[digest]; ok {
		return cm, nil
	}
	raw, err := c.store.ReadCommitHeader(digest)
	if err != nil {
		return nil, err
	}
	cm := Parse(digest, raw)
	if c.grafts != nil {
		if parents, ok := c.grafts.Lookup(digest); ok {
			cm.Parents = parents
		}
	}
	if c.walker != nil {
		cm.Uninteresting = c.walker.Uninteresting(digest)
	}
	c.table[digest] = cm
	return cm, nil
}

// Parse decodes a raw commit header (spec §6's read_commit_header bytes)
// into a Commit. One "parent" line per parent; the first blank line ends
// the header block and the first non-empty line after it is the summary.
func Parse(digest coretypes.Digest, raw []byte) *Commit {
	cm := &Commit{Digest: digest}
	lines := strings.Split(string(raw), "\n")
	var msgLines []string
	inMsg := false
	for _, line := range lines {
		if inMsg {
			msgLines = append(msgLines, line)
			continue
		}
		switch {
		case line == "":
			inMsg = true
		case strings.HasPrefix(line, "tree "):
			cm.Tree = coretypes.Digest(strings.TrimPrefix(line, "tree "))
		case strings.HasPrefix(line, "parent "):
			cm.Parents = append(cm.Parents, coretypes.Digest(strings.TrimPrefix(line, "parent ")))
		case strings.HasPrefix(line, "author "):
			cm.Author, cm.AuthorMail, cm.AuthorTime, cm.AuthorTZ = parseIdentLine(strings.TrimPrefix(line, "author "))
		case strings.HasPrefix(line, "committer "):
			cm.Committer, cm.CommitterMail, cm.CommitterTime, cm.CommitterTZ = parseIdentLine(strings.TrimPrefix(line, "committer "))
		}
	}
	cm.Summary = firstNonEmpty(msgLines)
	return cm
}

// parseIdentLine parses "Name <mail> timestamp tz".
func parseIdentLine(s string) (name, mail string, ts int64, tz string) {
	lt := strings.Index(s, "<")
	gt := strings.Index(s, ">")
	if lt < 0 || gt < 0 || gt < lt {
		return s, "", 0, ""
	}
	name = strings.TrimSpace(s[:lt])
	mail = s[lt+1 : gt]
	rest := strings.Fields(strings.TrimSpace(s[gt+1:]))
	if len(rest) >= 1 {
		ts, _ = strconv.ParseInt(rest[0], 10, 64)
	}
	if len(rest) >= 2 {
		tz = rest[1]
	}
	return name, mail, ts, tz
}

func firstNonEmpty(lines []string) string {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return l
		}
	}
	return ""
}
