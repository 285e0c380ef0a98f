package output

import (
	"github.com/jensroland/git-blamebot/internal/commitcache"
	"github.com/jensroland/git-blamebot/internal/coretypes"
)

// Row is one final-buffer line ready to format: the blame entry it
// belongs to, that entry's position within its own block, and the
// suspect commit's metadata. BuildRows builds one Row per source line by
// walking the resolved partition sequence and expanding each entry's
// NumLines.
type Row struct {
	Sha      coretypes.Digest
	Path     string // suspect's path, for the rename-follow case
	SLno     int    // 0-based original line number at the start of this entry
	Lno      int    // 0-based final line number at the start of this entry
	NumLines int
	Index    int // 0-based offset of this line within its entry's block
	Score    int // alphanumeric-content score (0 if not computed)
	Content  string

	Commit *commitcache.Commit
}

// OrigLine returns the 1-based original line number for this row.
func (r Row) OrigLine() int { return r.SLno + r.Index + 1 }

// FinalLine returns the 1-based final line number for this row.
func (r Row) FinalLine() int { return r.Lno + r.Index + 1 }
