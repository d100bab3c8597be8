package merge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"discern/internal/cuesheet"
	"discern/internal/fileutil"
	"discern/internal/logging"
	"discern/internal/services"
)

// Execute runs a ready plan to completion: appends every track to a temporary
// binary, atomically replaces the destination, and writes the corrected
// single-file cue sheet. A plan executes at most once.
//
// Cancellation between tracks aborts before the temporary file is promoted,
// so the destination is never left partial. With DeleteSources enabled,
// tracks already copied and deleted in earlier iterations of the same plan
// are not restored; that window is the documented cost of reclaiming disk
// space during large batches.
func Execute(ctx context.Context, plan *Plan, opts Options, logger *slog.Logger) (Result, error) {
	log := logging.NewComponentLogger(logger, "merge")
	var result Result

	if plan == nil {
		return result, services.Wrap(services.ErrValidation, "merge", "execute", "nil plan", nil)
	}
	if plan.Blocked {
		return result, services.Wrap(services.ErrValidation, "merge", "execute", plan.BlockReason, nil)
	}
	if !plan.executed.CompareAndSwap(false, true) {
		return result, services.Wrap(services.ErrValidation, "merge", "execute", "plan already executed", nil)
	}

	result.DestinationBin = plan.DestinationBin
	result.DestinationCue = plan.DestinationCue
	if plan.AlreadyMerged {
		result.Notes = append(result.Notes, plan.Notes...)
		return result, nil
	}

	lock := flock.New(plan.DestinationBin + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return result, services.Wrap(services.ErrTransient, "merge", "lock", plan.DestinationBin, err)
	}
	if !locked {
		return result, services.Wrap(services.ErrTransient, "merge", "lock",
			fmt.Sprintf("destination %s is locked by another merge", plan.DestinationBin), nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	log.Debug("merge starting",
		logging.String("cue", plan.CuePath),
		logging.Int("tracks", len(plan.Tracks)),
		logging.Bool("delete_sources", opts.DeleteSources),
		logging.Bool("keep_originals", opts.KeepOriginals),
		logging.Duration("replace_delay", opts.ReplaceDelay))

	// Byte lengths are captured before any deletion: the cue timings must be
	// computed from the original track sizes even after sources are gone.
	sizes := make([]int64, len(plan.Tracks))
	for i, track := range plan.Tracks {
		info, err := os.Stat(track.Path)
		if err != nil {
			return result, services.Wrap(services.ErrNotFound, "merge", "stat track", track.Path, err)
		}
		sizes[i] = info.Size()
	}

	tmpPath := plan.DestinationBin + ".partial"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return result, services.Wrap(services.ErrTransient, "merge", "create temp output", tmpPath, err)
	}
	cleanupTemp := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	destDir := filepath.Dir(plan.DestinationBin)
	for i, track := range plan.Tracks {
		if ctxErr := ctx.Err(); ctxErr != nil {
			cleanupTemp()
			return result, ctxErr
		}
		written, err := fileutil.AppendTo(tmp, track.Path)
		if err != nil {
			cleanupTemp()
			return result, services.Wrap(services.ErrTransient, "merge", "copy track", track.Path, err)
		}
		if written != sizes[i] {
			cleanupTemp()
			return result, services.Wrap(services.ErrTransient, "merge", "copy track",
				fmt.Sprintf("%s: copied %d bytes, expected %d", track.Path, written, sizes[i]), nil)
		}
		result.BytesWritten += written
		result.TracksCopied++

		if opts.DeleteSources && track.Path != plan.DestinationBin {
			if err := os.Remove(track.Path); err != nil {
				log.Warn("failed to delete merged source track",
					logging.String("path", track.Path),
					logging.Error(err))
			} else {
				result.DeletedSources = append(result.DeletedSources, track.Path)
				_ = fileutil.PruneEmptyDirs(filepath.Dir(track.Path), destDir)
			}
		}
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return result, services.Wrap(services.ErrTransient, "merge", "flush temp output", tmpPath, err)
	}

	replace := func() error { return fileutil.ReplaceFile(tmpPath, plan.DestinationBin) }
	attempts := opts.ReplaceAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := opts.ReplaceDelay
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	if err := services.Retry(ctx, attempts, delay, replace); err != nil {
		_ = os.Remove(tmpPath)
		return result, services.Wrap(services.ErrTransient, "merge", "replace destination", plan.DestinationBin, err)
	}

	if opts.KeepOriginals && plan.CuePath == plan.DestinationCue {
		backup := plan.CuePath + ".orig"
		if err := fileutil.CopyFile(plan.CuePath, backup); err != nil {
			return result, services.Wrap(services.ErrTransient, "merge", "back up cue sheet", backup, err)
		}
		result.Notes = append(result.Notes, "original cue saved to "+filepath.Base(backup))
	}

	if err := writeMergedCue(plan, sizes); err != nil {
		return result, services.Wrap(services.ErrTransient, "merge", "write cue sheet", plan.DestinationCue, err)
	}

	if opts.DeleteSources && plan.CuePath != plan.DestinationCue {
		if err := os.Remove(plan.CuePath); err != nil {
			log.Warn("failed to delete original cue sheet",
				logging.String("path", plan.CuePath),
				logging.Error(err))
		} else {
			result.DeletedSources = append(result.DeletedSources, plan.CuePath)
			_ = fileutil.PruneEmptyDirs(filepath.Dir(plan.CuePath), destDir)
		}
	}

	log.Info("merge committed",
		logging.String("destination", plan.DestinationBin),
		logging.Int("tracks", result.TracksCopied),
		logging.Int64("bytes", result.BytesWritten))
	return result, nil
}

// writeMergedCue emits the corrected single-file cue sheet: original tracks
// in original order, INDEX 01 timestamps recomputed from the captured byte
// lengths.
func writeMergedCue(plan *Plan, sizes []int64) error {
	entry := cuesheet.FileEntry{
		FileName: filepath.Base(plan.DestinationBin),
		FileType: "BINARY",
	}
	var cumulativeFrames int64
	for i, track := range plan.Tracks {
		entry.Tracks = append(entry.Tracks, cuesheet.Track{
			Number: track.TrackNumber,
			Type:   track.TrackType,
			Indexes: []cuesheet.Index{{
				Number:    1,
				Timestamp: cuesheet.FramesToTimestamp(cumulativeFrames),
			}},
		})
		cumulativeFrames += cuesheet.BytesToFrames(sizes[i], cuesheet.FrameSizeForTrackType(track.TrackType))
	}

	sheet := cuesheet.Sheet{Files: []cuesheet.FileEntry{entry}}
	out, err := os.Create(plan.DestinationCue)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := sheet.Write(out); err != nil {
		return err
	}
	return out.Close()
}
