package cuesheet

import "fmt"

// Index is a single INDEX line within a track.
type Index struct {
	Number    int
	Timestamp string // MM:SS:FF
}

// Track is a single TRACK block within a FILE entry.
type Track struct {
	Number  int
	Type    string // e.g. MODE2/2352, AUDIO
	Indexes []Index
}

// FileEntry is one FILE line and the tracks attached to it.
type FileEntry struct {
	FileName string
	FileType string // almost always BINARY
	Tracks   []Track
}

// Sheet is an ordered cue sheet: files in declaration order, tracks in
// declaration order within each file.
type Sheet struct {
	Files []FileEntry
}

// IsMultiFile reports whether the sheet references more than one binary,
// i.e. a multi-track layout stored as one file per track.
func (s Sheet) IsMultiFile() bool {
	return len(s.Files) > 1
}

// TrackCount returns the total number of tracks across all files.
func (s Sheet) TrackCount() int {
	count := 0
	for _, file := range s.Files {
		count += len(file.Tracks)
	}
	return count
}

// Validate checks the structural invariants this tool relies on: track
// numbers 1-based and strictly increasing across the sheet in file order.
func (s Sheet) Validate() error {
	previous := 0
	for _, file := range s.Files {
		for _, track := range file.Tracks {
			if track.Number <= previous {
				return fmt.Errorf("track %02d out of order after track %02d", track.Number, previous)
			}
			previous = track.Number
		}
	}
	return nil
}
