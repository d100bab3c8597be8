package cuesheet_test

import (
	"testing"

	"discern/internal/cuesheet"
)

func TestFrameSizeForTrackType(t *testing.T) {
	tests := []struct {
		trackType string
		want      int64
	}{
		{"MODE2/2352", 2352},
		{"MODE1/2048", 2048},
		{"MODE2/2336", 2336},
		{"AUDIO", 2352},
		{"CDG", 2352},
		{"", 2352},
	}
	for _, tc := range tests {
		if got := cuesheet.FrameSizeForTrackType(tc.trackType); got != tc.want {
			t.Errorf("FrameSizeForTrackType(%q) = %d, want %d", tc.trackType, got, tc.want)
		}
	}
}

func TestFramesToTimestamp(t *testing.T) {
	tests := []struct {
		frames int64
		want   string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{74, "00:00:74"},
		{75, "00:01:00"},
		{1000, "00:13:25"},
		{4500, "01:00:00"},
		{4501, "01:00:01"},
		{4500*74 + 75*59 + 74, "74:59:74"},
	}
	for _, tc := range tests {
		if got := cuesheet.FramesToTimestamp(tc.frames); got != tc.want {
			t.Errorf("FramesToTimestamp(%d) = %q, want %q", tc.frames, got, tc.want)
		}
	}
}

func TestBytesToFrames(t *testing.T) {
	tests := []struct {
		bytes    int64
		perFrame int64
		want     int64
	}{
		{2352000, 2352, 1000},
		{2048, 2048, 1},
		{2336 * 3, 2336, 3},
		// Integer division: remainder is discarded, not an error.
		{2353, 2352, 1},
		{0, 2352, 0},
	}
	for _, tc := range tests {
		if got := cuesheet.BytesToFrames(tc.bytes, tc.perFrame); got != tc.want {
			t.Errorf("BytesToFrames(%d, %d) = %d, want %d", tc.bytes, tc.perFrame, got, tc.want)
		}
	}
}

// Cumulative timing for the standard two-track scenario: a 2,352,000 byte
// MODE2/2352 data track followed by audio puts the audio INDEX 01 at
// 1000 frames, i.e. 00:13:25.
func TestCumulativeTrackOffset(t *testing.T) {
	dataBytes := int64(2352000)
	frames := cuesheet.BytesToFrames(dataBytes, cuesheet.FrameSizeForTrackType("MODE2/2352"))
	if frames != 1000 {
		t.Fatalf("expected 1000 frames, got %d", frames)
	}
	if got := cuesheet.FramesToTimestamp(frames); got != "00:13:25" {
		t.Fatalf("expected 00:13:25, got %q", got)
	}
}
