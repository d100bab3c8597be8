// Package cuesheet models CD cue sheets and the frame arithmetic behind them.
//
// The parser handles the FILE/TRACK/INDEX subset this tool reads and writes,
// ignoring REM and unrecognized lines rather than rejecting a sheet outright.
// The writer emits one FILE entry per source binary with a single INDEX 01
// per track; pregap INDEX 00 entries are never produced. Timing helpers
// convert byte lengths to frames (75 frames per second, frame size derived
// from the track mode) and format cumulative offsets as MM:SS:FF timestamps.
package cuesheet
