package merge

import (
	"sync/atomic"
	"time"

	"discern/internal/identity"
)

// State is the lifecycle position of a plan.
type State string

const (
	StateBlocked   State = "blocked"
	StateReady     State = "ready"
	StateCommitted State = "committed"
)

// TrackSource is one binary referenced by the cue sheet, resolved to a path
// on disk. Paths only; file handles are acquired during execution, scoped to
// one track at a time.
type TrackSource struct {
	Sequence    int
	CueFileName string
	Path        string
	TrackNumber int
	TrackType   string
}

// Plan describes one merge: constructed by planning, never mutated, consumed
// at most once by execution.
type Plan struct {
	ID             string
	CuePath        string
	Tracks         []TrackSource
	DestinationBin string
	DestinationCue string
	Identity       *identity.Record
	Blocked        bool
	BlockReason    string
	AlreadyMerged  bool
	Notes          []string

	executed atomic.Bool
}

// State derives the plan's lifecycle position.
func (p *Plan) State() State {
	switch {
	case p.Blocked:
		return StateBlocked
	case p.executed.Load():
		return StateCommitted
	default:
		return StateReady
	}
}

// Options controls planning and execution behavior.
type Options struct {
	// Flatten names the destination from the resolved identity
	// ("Title (Region) (Disc N)") instead of the cue sheet base name.
	Flatten bool
	// DeleteSources removes each track immediately after it has been copied,
	// and the original cue sheet after the merged one is written.
	DeleteSources bool
	// KeepOriginals saves the pre-merge cue sheet as <name>.cue.orig when the
	// sheet is rewritten in place. Mutually exclusive with DeleteSources.
	KeepOriginals bool
	// DestinationDir overrides the output directory; empty keeps the merge
	// in the cue sheet's directory.
	DestinationDir string
	// ReplaceAttempts and ReplaceDelay bound the retry loop around replacing
	// an existing destination binary.
	ReplaceAttempts int
	ReplaceDelay    time.Duration
}

// Result reports what one execution did.
type Result struct {
	DestinationBin string
	DestinationCue string
	BytesWritten   int64
	TracksCopied   int
	DeletedSources []string
	Notes          []string
}
