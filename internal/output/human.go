package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// HumanOptions controls the Human formatter's column selection (spec §6's
// -l, -t, -f/--show-name, -n/--show-number, --score-debug flags).
type HumanOptions struct {
	FullSha       bool // -l
	RawTimestamp  bool // -t
	ShowName      bool // -f / --show-name
	ShowNumber    bool // -n / --show-number
	ShowScore     bool // --score-debug
	MultiplePaths bool // force filename column even without ShowName
	Compat        bool // -c: show committer time instead of author time
}

// Human writes rows in the annotated human-readable format (spec §4.10),
// using pre-computed alignment widths (spec §4.11) so every line's
// columns line up regardless of row order.
func Human(w io.Writer, rows []Row, widths Widths, opts HumanOptions) error {
	for _, r := range rows {
		sha := string(r.Sha)
		if !opts.FullSha && len(sha) > 8 {
			sha = sha[:8]
		}

		var b strings.Builder
		b.WriteString(cyan)
		b.WriteString(sha)
		b.WriteString(reset)

		if opts.ShowScore {
			fmt.Fprintf(&b, " %*s", widths.ScoreDigits, humanize.Comma(int64(r.Score)))
		}
		if opts.ShowName || opts.MultiplePaths {
			fmt.Fprintf(&b, " %-*s", widths.PathLen, r.Path)
		}
		if opts.ShowNumber {
			fmt.Fprintf(&b, " %*d", widths.SLnoDigits, r.OrigLine())
		}

		author := ""
		if r.Commit != nil {
			author = r.Commit.Author
		}
		ts := formatTime(r, opts.RawTimestamp, opts.Compat)

		fmt.Fprintf(&b, " (%s%-*s%s %s %*d) %s\n",
			dim, widths.AuthorLen, author, reset,
			ts, widths.LnoDigits, r.FinalLine(), r.Content)

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(r Row, raw, compat bool) string {
	if r.Commit == nil {
		return ""
	}
	ts, tz := r.Commit.AuthorTime, r.Commit.AuthorTZ
	if compat {
		ts, tz = r.Commit.CommitterTime, r.Commit.CommitterTZ
	}
	if raw {
		return fmt.Sprintf("%d %s", ts, tz)
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05") + " " + tz
}
