package output

import (
	"fmt"
	"io"

	"github.com/jensroland/git-blamebot/internal/commitcache"
	"github.com/jensroland/git-blamebot/internal/coretypes"
)

// Porcelain writes rows in machine-readable format (spec §4.10): a full
// header at the start of each entry's block, followed by commit metadata
// and a filename line the first time a commit is seen (the filename line
// is repeated only for a commit that appears under more than one path),
// a short repeated header for every line after the first within a block,
// and one tab-prefixed content line per row.
func Porcelain(w io.Writer, rows []Row) error {
	paths := pathsPerCommit(rows)
	seen := make(map[coretypes.Digest]bool)

	for _, r := range rows {
		if r.Index == 0 {
			if _, err := fmt.Fprintf(w, "%s %d %d %d\n", r.Sha, r.OrigLine(), r.FinalLine(), r.NumLines); err != nil {
				return err
			}
			firstTime := !seen[r.Sha]
			seen[r.Sha] = true
			if firstTime {
				if err := writeCommitMeta(w, r.Commit); err != nil {
					return err
				}
			}
			if firstTime || len(paths[r.Sha]) > 1 {
				if _, err := fmt.Fprintf(w, "filename %s\n", r.Path); err != nil {
					return err
				}
			}
		} else {
			if _, err := fmt.Fprintf(w, "%s %d %d\n", r.Sha, r.OrigLine(), r.FinalLine()); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "\t%s\n", r.Content); err != nil {
			return err
		}
	}
	return nil
}

func writeCommitMeta(w io.Writer, c *commitcache.Commit) error {
	if c == nil {
		return nil
	}
	_, err := fmt.Fprintf(w,
		"author %s\nauthor-mail <%s>\nauthor-time %d\nauthor-tz %s\n"+
			"committer %s\ncommitter-mail <%s>\ncommitter-time %d\ncommitter-tz %s\n"+
			"summary %s\n",
		c.Author, c.AuthorMail, c.AuthorTime, c.AuthorTZ,
		c.Committer, c.CommitterMail, c.CommitterTime, c.CommitterTZ,
		c.Summary)
	return err
}

func pathsPerCommit(rows []Row) map[coretypes.Digest]map[string]bool {
	out := make(map[coretypes.Digest]map[string]bool)
	for _, r := range rows {
		if out[r.Sha] == nil {
			out[r.Sha] = make(map[string]bool)
		}
		out[r.Sha][r.Path] = true
	}
	return out
}
