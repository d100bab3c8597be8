package merge

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"discern/internal/cuesheet"
	"discern/internal/fileutil"
	"discern/internal/identity"
	"discern/internal/logging"
	"discern/internal/textutil"
)

var trackNumberToken = regexp.MustCompile(`(?i)\(Track (\d+)\)`)

// Planner builds merge plans from parsed cue sheets. Planning performs only
// read-only filesystem checks.
type Planner struct {
	logger *slog.Logger
}

// NewPlanner constructs a planner.
func NewPlanner(logger *slog.Logger) *Planner {
	return &Planner{logger: logging.NewComponentLogger(logger, "merge")}
}

// Plan builds a merge plan for one cue sheet. The second return is false when
// the sheet is not a supported merge layout: single-file sheets (unless the
// destination already exists, which yields an already-merged annotation) and
// sheets with more than one track in any file are skipped without a plan.
func (p *Planner) Plan(cuePath string, sheet cuesheet.Sheet, ident *identity.Record, opts Options) (*Plan, bool) {
	for _, file := range sheet.Files {
		if len(file.Tracks) != 1 {
			p.logger.Debug("cue sheet skipped: unsupported track layout",
				logging.String("cue", cuePath),
				logging.String("file", file.FileName),
				logging.Int("tracks", len(file.Tracks)))
			return nil, false
		}
	}
	if err := sheet.Validate(); err != nil {
		p.logger.Debug("cue sheet skipped: invalid track order",
			logging.String("cue", cuePath),
			logging.Error(err))
		return nil, false
	}

	plan := &Plan{
		ID:       uuid.NewString(),
		CuePath:  cuePath,
		Identity: ident,
	}

	destDir := opts.DestinationDir
	if destDir == "" {
		destDir = filepath.Dir(cuePath)
	}
	base := destinationBase(cuePath, ident, opts)
	plan.DestinationBin = filepath.Join(destDir, base+".bin")
	plan.DestinationCue = filepath.Join(destDir, base+".cue")

	if !sheet.IsMultiFile() {
		if fileutil.Exists(plan.DestinationBin) {
			plan.AlreadyMerged = true
			plan.Notes = append(plan.Notes, "already merged: destination binary exists and source has a single track")
			return plan, true
		}
		return nil, false
	}

	cueDir := filepath.Dir(cuePath)
	var missing []string
	for i, file := range sheet.Files {
		track := file.Tracks[0]
		source := TrackSource{
			Sequence:    i,
			CueFileName: file.FileName,
			TrackNumber: track.Number,
			TrackType:   track.Type,
		}
		resolved, ok := ResolveTrackPath(cueDir, file.FileName)
		if ok {
			source.Path = resolved
		} else {
			missing = append(missing, file.FileName)
		}
		plan.Tracks = append(plan.Tracks, source)
	}

	if len(missing) > 0 {
		plan.Blocked = true
		plan.BlockReason = fmt.Sprintf("missing track files: %s", strings.Join(missing, ", "))
		return plan, true
	}

	if fileutil.Exists(plan.DestinationBin) {
		plan.Notes = append(plan.Notes, "destination binary exists and will be replaced")
	}
	return plan, true
}

// ResolveTrackPath tries the literal filename referenced by the cue sheet,
// then retries with the track-number zero-padding toggled (Track 1 vs
// Track 01). Tolerates non-standard rips whose cue and binaries disagree.
func ResolveTrackPath(cueDir, fileName string) (string, bool) {
	literal := filepath.Join(cueDir, fileName)
	if fileutil.Exists(literal) {
		return literal, true
	}

	m := trackNumberToken.FindStringSubmatch(fileName)
	if m == nil {
		return "", false
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	var toggled string
	if strings.HasPrefix(m[1], "0") {
		toggled = trackNumberToken.ReplaceAllString(fileName, fmt.Sprintf("(Track %d)", number))
	} else {
		toggled = trackNumberToken.ReplaceAllString(fileName, fmt.Sprintf("(Track %02d)", number))
	}
	alternate := filepath.Join(cueDir, toggled)
	if fileutil.Exists(alternate) {
		return alternate, true
	}
	return "", false
}

// destinationBase picks the merged base name: the cue sheet's own base in
// in-place mode, or the canonical identity form in flatten mode.
func destinationBase(cuePath string, ident *identity.Record, opts Options) string {
	if opts.Flatten && ident != nil && ident.Title != "" {
		name := ident.Title
		if ident.Region != "" {
			name += " (" + ident.Region + ")"
		}
		if ident.DiscNumber > 0 {
			name += fmt.Sprintf(" (Disc %d)", ident.DiscNumber)
		}
		if sanitized := textutil.SanitizeFileName(name); sanitized != "" {
			return sanitized
		}
	}
	base := filepath.Base(cuePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
