package cuesheet

import (
	"fmt"
	"strings"
)

// CD timing constants: 75 frames per second, 60 seconds per minute.
const (
	FramesPerSecond = 75
	FramesPerMinute = FramesPerSecond * 60
)

// Frame sizes in bytes for the track modes this tool distinguishes.
const (
	FrameSizeRaw    = 2352 // raw sector, the default
	FrameSizeMode2  = 2336
	FrameSizeCooked = 2048 // Mode1/cooked
)

// FrameSizeForTrackType returns the bytes-per-frame for a cue TRACK type
// string. Anything containing "2048" or "2336" selects the cooked sizes;
// everything else (MODE2/2352, AUDIO, unknown) is raw.
func FrameSizeForTrackType(trackType string) int64 {
	switch {
	case strings.Contains(trackType, "2048"):
		return FrameSizeCooked
	case strings.Contains(trackType, "2336"):
		return FrameSizeMode2
	default:
		return FrameSizeRaw
	}
}

// BytesToFrames converts a byte length to a frame count using integer
// division. Byte lengths are expected to be exact multiples of the frame size
// for the track type in use; a remainder is silently discarded, so callers
// must validate source files were produced at the correct sector size.
func BytesToFrames(byteLength, bytesPerFrame int64) int64 {
	if bytesPerFrame <= 0 {
		bytesPerFrame = FrameSizeRaw
	}
	return byteLength / bytesPerFrame
}

// FramesToTimestamp formats an absolute frame count as a cue MM:SS:FF
// timestamp.
func FramesToTimestamp(frames int64) string {
	minutes := frames / FramesPerMinute
	remainder := frames % FramesPerMinute
	seconds := remainder / FramesPerSecond
	subFrames := remainder % FramesPerSecond
	return fmt.Sprintf("%02d:%02d:%02d", minutes, seconds, subFrames)
}
