package cmd

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jensroland/git-blamebot/internal/coretypes"
	"github.com/jensroland/git-blamebot/internal/driver"
	"github.com/jensroland/git-blamebot/internal/gitobj"
	"github.com/jensroland/git-blamebot/internal/graft"
	"github.com/jensroland/git-blamebot/internal/lineidx"
	"github.com/jensroland/git-blamebot/internal/lineset"
	"github.com/jensroland/git-blamebot/internal/origin"
	"github.com/jensroland/git-blamebot/internal/output"
	"github.com/jensroland/git-blamebot/internal/patch"
	"github.com/jensroland/git-blamebot/internal/project"
)

// RunBlame is the blame CLI's entry point (spec §6). It parses flags and
// positionals, resolves the target commit/path, drives assign_blame, and
// writes Porcelain or Human output to stdout.
func RunBlame(args []string) {
	defer func() {
		// An invariant violation (spec §7) panics with the offending
		// partition sequence rendered as text; recover once here so it
		// prints like any other fatal error instead of a Go stack trace.
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "Error:", r)
			os.Exit(1)
		}
	}()
	runBlame(args)
}

func runBlame(args []string) {
	moveEnabled, moveScore, copyEnabled, copyScore, copyHarder, rest, err := extractMoveCopyFlags(args)
	if err != nil {
		fatal(err)
	}

	fs := flag.NewFlagSet("git-blamebot", flag.ExitOnError)
	compat := fs.Bool("c", false, "compatibility output (committer time)")
	fullSha := fs.Bool("l", false, "show full 40-char digest")
	rawTime := fs.Bool("t", false, "show raw timestamp")
	showName := fs.Bool("f", false, "force path column")
	fs.BoolVar(showName, "show-name", false, "force path column")
	showNumber := fs.Bool("n", false, "show original line-number column")
	fs.BoolVar(showNumber, "show-number", false, "show original line-number column")
	porcelain := fs.Bool("p", false, "machine-readable output")
	fs.BoolVar(porcelain, "porcelain", false, "machine-readable output")
	lineRange := fs.String("L", "", "restrict to 1-based inclusive line range n,m")
	graftsFile := fs.String("S", "", "grafts file overriding commit parents")
	scoreDebug := fs.Bool("score-debug", false, "include per-entry score in human output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `git-blamebot: line-level blame attribution.

Usage:
    git-blamebot [commit] [--] <path>

Flags:
    -c                      compatibility output (committer time)
    -l                      full 40-char digest
    -t                      raw timestamp
    -f, --show-name         force path column
    -n, --show-number       original line-number column
    -p, --porcelain         machine-readable output
    -L n,m                  restrict to 1-based inclusive line range
    -M[score]               enable move detection (default 20)
    -C[score]               enable copy detection (default 40); repeat for copy-harder
    -S <file>               grafts file
    --score-debug           include per-entry score in human output
`)
	}

	fs.Parse(reorderBlameArgs(rest))

	root, err := project.FindRoot()
	if err != nil {
		fatal(err)
	}

	commitArg, path, err := resolvePositionals(root, fs.Args())
	if err != nil {
		fatal(err)
	}

	rangeStart, rangeEnd := -1, -1
	if *lineRange != "" {
		rangeStart, rangeEnd, err = parseLineRange(*lineRange)
		if err != nil {
			fatal(err)
		}
	}

	var grafts *graft.Store
	if *graftsFile != "" {
		text, err := os.ReadFile(*graftsFile)
		if err != nil {
			fatal(fmt.Errorf("reading grafts file: %w", err))
		}
		grafts, err = graft.Load(string(text))
		if err != nil {
			fatal(err)
		}
		defer grafts.Close()
	}

	objStore := gitobj.NewStore(root)
	treeDiffer := gitobj.NewTreeDiffer(root)
	walker := gitobj.NewWalker(root)
	textDiffer := patch.DMPTextDiffer{}

	commitDigest, err := resolveCommit(root, commitArg)
	if err != nil {
		fatal(err)
	}

	blob, _, ok, err := objStore.TreeEntry(commitDigest, path)
	if err != nil {
		fatal(err)
	}
	if !ok {
		fatal(fmt.Errorf("%s: no such path in %s", path, commitDigest))
	}

	finalBlob, err := objStore.ReadBlob(blob)
	if err != nil {
		fatal(err)
	}

	idx := lineidx.Build(finalBlob)
	if rangeStart < 0 {
		rangeStart, rangeEnd = 0, idx.LineCount()
	} else if rangeEnd > idx.LineCount() {
		fatal(fmt.Errorf("-L range out of bounds: file has %d lines", idx.LineCount()))
	}

	initial := &origin.Origin{Commit: commitDigest, Path: path, Blob: blob}
	sb := driver.New(initial, finalBlob, rangeStart, rangeEnd, objStore, treeDiffer, textDiffer, grafts, walker)

	opts := driver.DefaultOptions()
	opts.MoveEnabled = moveEnabled
	if moveScore > 0 {
		opts.MoveThreshold = moveScore
	}
	opts.CopyEnabled = copyEnabled
	opts.CopyHarder = copyHarder
	if copyScore > 0 {
		opts.CopyThreshold = copyScore
	}

	if err := driver.AssignBlame(sb, opts); err != nil {
		fatal(err)
	}
	sb.Store.CheckInvariants(rangeStart, rangeEnd)

	rows, err := output.BuildRows(sb.Store, idx, finalBlob, sb.Commits)
	if err != nil {
		fatal(err)
	}

	w := os.Stdout
	if *porcelain {
		if err := output.Porcelain(w, rows); err != nil {
			fatal(err)
		}
		return
	}

	widths := output.Align(rows)
	humanOpts := output.HumanOptions{
		FullSha:       *fullSha,
		RawTimestamp:  *rawTime,
		ShowName:      *showName,
		ShowNumber:    *showNumber,
		ShowScore:     *scoreDebug,
		MultiplePaths: output.HasMultiplePaths(rows),
		Compat:        *compat,
	}
	if err := output.Human(w, rows, widths, humanOpts); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// extractMoveCopyFlags pulls "-M[score]" and one-or-more "-C[score]" out
// of args (flag.FlagSet cannot express an optional attached value on a
// short flag), returning the remaining args for normal flag parsing.
func extractMoveCopyFlags(args []string) (moveEnabled bool, moveScore int, copyEnabled bool, copyScore int, copyHarder bool, rest []string, err error) {
	copyCount := 0
	for _, a := range args {
		switch {
		case a == "-M" || strings.HasPrefix(a, "-M"):
			moveEnabled = true
			if n := strings.TrimPrefix(a, "-M"); n != "" {
				moveScore, err = strconv.Atoi(n)
				if err != nil {
					return false, 0, false, 0, false, nil, fmt.Errorf("invalid -M score %q", a)
				}
			}
		case a == "-C" || strings.HasPrefix(a, "-C"):
			copyEnabled = true
			copyCount++
			if n := strings.TrimPrefix(a, "-C"); n != "" {
				copyScore, err = strconv.Atoi(n)
				if err != nil {
					return false, 0, false, 0, false, nil, fmt.Errorf("invalid -C score %q", a)
				}
			}
		default:
			rest = append(rest, a)
		}
	}
	if copyCount >= 2 {
		copyHarder = true
		moveEnabled = true // -C implies -M (spec §6)
	}
	if copyEnabled {
		moveEnabled = true
	}
	return moveEnabled, moveScore, copyEnabled, copyScore, copyHarder, rest, nil
}

// reorderBlameArgs moves flags before positional args so flag.Parse works
// regardless of argument order.
func reorderBlameArgs(args []string) []string {
	var flags, positional []string
	i := 0
	for i < len(args) {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i:]...)
			break
		}
		if len(a) > 0 && a[0] == '-' {
			flags = append(flags, a)
			if i+1 < len(args) && (len(args[i+1]) == 0 || args[i+1][0] != '-') {
				switch a {
				case "-c", "-l", "-t", "-f", "--show-name", "-n", "--show-number",
					"-p", "--porcelain", "--score-debug":
					// no value
				default:
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			positional = append(positional, a)
		}
		i++
	}
	return append(flags, positional...)
}

// resolvePositionals splits fs.Args() into an optional commit and the
// required path, per spec §6's "ambiguity resolved by checking whether
// the path exists in the working tree".
func resolvePositionals(root string, args []string) (commit, path string, err error) {
	for i, a := range args {
		if a == "--" {
			args = append(append([]string{}, args[:i]...), args[i+1:]...)
			break
		}
	}
	switch len(args) {
	case 0:
		return "", "", fmt.Errorf("missing <path>")
	case 1:
		return "", args[0], nil
	default:
		candidate := args[0]
		if _, statErr := os.Stat(candidate); statErr == nil {
			return "", candidate, nil
		}
		return candidate, args[1], nil
	}
}

// resolveCommit resolves commitArg (empty meaning HEAD) to a full digest
// via "git rev-parse".
func resolveCommit(root, commitArg string) (coretypes.Digest, error) {
	rev := commitArg
	if rev == "" {
		rev = "HEAD"
	}
	cmd := exec.Command("git", "rev-parse", rev)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("unresolvable revision %q", rev)
	}
	return coretypes.Digest(strings.TrimSpace(string(out))), nil
}

// parseLineRange parses "-L n,m" (1-based inclusive) into a 0-based
// half-open [start, end) range, via lineset.FromRange.
func parseLineRange(spec string) (start, end int, err error) {
	parts := strings.SplitN(spec, ",", 2)
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("malformed -L range %q", spec)
	}
	m := n
	if len(parts) == 2 {
		m, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("malformed -L range %q", spec)
		}
	}
	ls := lineset.FromRange(n, m)
	if ls.IsEmpty() {
		return 0, 0, fmt.Errorf("-L range %q: n must be <= m", spec)
	}
	return ls.Min() - 1, ls.Max(), nil
}
