// Package driver owns the Scoreboard and the assign_blame control loop
// (spec §3 Scoreboard, §4.9), wiring the Partition Store, Propagator, and
// Mover/Copier together against an ObjectStore/TreeDiffer/RevisionWalker.
package driver

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jensroland/git-blamebot/internal/commitcache"
	"github.com/jensroland/git-blamebot/internal/coretypes"
	"github.com/jensroland/git-blamebot/internal/debug"
	"github.com/jensroland/git-blamebot/internal/graft"
	"github.com/jensroland/git-blamebot/internal/lineidx"
	"github.com/jensroland/git-blamebot/internal/origin"
	"github.com/jensroland/git-blamebot/internal/partition"
)

// Options tunes a blame run (spec §6 CLI surface).
type Options struct {
	MoveEnabled   bool
	MoveThreshold int // default 20

	CopyEnabled   bool
	CopyThreshold int // default 40
	CopyHarder    bool

	HasMaxAge bool
	MaxAge    time.Time
}

// DefaultOptions returns the spec's documented defaults.
func DefaultOptions() Options {
	return Options{MoveThreshold: 20, CopyThreshold: 40}
}

// Scoreboard owns the final commit, target path, final blob bytes, line
// index, and partition sequence head for one blame command (spec §3). Its
// lifetime spans exactly one invocation.
type Scoreboard struct {
	FinalCommit coretypes.Digest
	Path        string
	FinalBlob   []byte

	Idx   *lineidx.Index
	Store *partition.Store

	Interner *origin.Interner
	Commits  *commitcache.Cache

	ObjStore   coretypes.ObjectStore
	TreeDiffer coretypes.TreeDiffer
	Differ     coretypes.TextDiffer

	InvocationID uuid.UUID
	DebugDir     string // enables --score-debug trace logging when non-empty
}

// New builds a Scoreboard for blaming initial.Path at initial.Commit,
// restricted to the 0-based final-line range [rangeStart, rangeEnd).
// initial must already carry its resolved blob digest.
func New(
	initial *origin.Origin, finalBlob []byte, rangeStart, rangeEnd int,
	objStore coretypes.ObjectStore, treeDiffer coretypes.TreeDiffer, textDiffer coretypes.TextDiffer,
	grafts *graft.Store, walker coretypes.RevisionWalker,
) *Scoreboard {
	idx := lineidx.Build(finalBlob)
	interner := origin.NewInterner()
	interner.Intern(initial.Commit, initial.Path, initial.Blob)

	sb := &Scoreboard{
		FinalCommit:  initial.Commit,
		Path:         initial.Path,
		FinalBlob:    finalBlob,
		Idx:          idx,
		Interner:     interner,
		ObjStore:     objStore,
		TreeDiffer:   treeDiffer,
		Differ:       textDiffer,
		InvocationID: uuid.New(),
	}
	sb.Commits = commitcache.New(objStore, grafts, walker)
	sb.Store = partition.New(finalBlob, idx, rangeStart, rangeEnd, initial)
	return sb
}

// trace appends a --score-debug entry to DebugDir/logs/score-debug.log, scoped
// by this Scoreboard's invocation ID (spec §10). A no-op when DebugDir is
// empty, which is the default.
func (sb *Scoreboard) trace(message string, data interface{}) {
	if sb.DebugDir == "" {
		return
	}
	debug.Log(sb.DebugDir, "score-debug.log", fmt.Sprintf("[%s] %s", sb.InvocationID, message), data)
}
