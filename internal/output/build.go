package output

import (
	"strings"

	"github.com/jensroland/git-blamebot/internal/commitcache"
	"github.com/jensroland/git-blamebot/internal/lineidx"
	"github.com/jensroland/git-blamebot/internal/partition"
)

// BuildRows walks a fully resolved partition sequence and expands each
// entry into one Row per final-buffer line, ready for Porcelain or Human.
// Every entry is expected to be guilty; assign_blame's termination
// guarantee (spec §4.9) is what makes that true.
func BuildRows(store *partition.Store, idx *lineidx.Index, finalBuf []byte, commits *commitcache.Cache) ([]Row, error) {
	var rows []Row
	for e := store.Head(); e != nil; e = e.Next() {
		commit, err := commits.Get(e.Suspect.Commit)
		if err != nil {
			return nil, err
		}
		score := store.Score(e)
		for i := 0; i < e.NumLines; i++ {
			rows = append(rows, Row{
				Sha:      e.Suspect.Commit,
				Path:     e.Suspect.Path,
				SLno:     e.SLno,
				Lno:      e.Lno,
				NumLines: e.NumLines,
				Index:    i,
				Score:    score,
				Content:  strings.TrimRight(string(idx.LineBytes(finalBuf, e.Lno+i)), "\n"),
				Commit:   commit,
			})
		}
	}
	return rows, nil
}
