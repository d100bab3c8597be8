package cuesheet

import (
	"fmt"
	"io"
	"strings"
)

// Write serializes the sheet: one FILE line per entry, each track followed by
// its INDEX lines. Output round-trips through Parse.
func (s Sheet) Write(w io.Writer) error {
	for _, file := range s.Files {
		fileType := file.FileType
		if fileType == "" {
			fileType = "BINARY"
		}
		if _, err := fmt.Fprintf(w, "FILE %q %s\n", file.FileName, fileType); err != nil {
			return err
		}
		for _, track := range file.Tracks {
			if _, err := fmt.Fprintf(w, "  TRACK %02d %s\n", track.Number, track.Type); err != nil {
				return err
			}
			for _, index := range track.Indexes {
				if _, err := fmt.Fprintf(w, "    INDEX %02d %s\n", index.Number, index.Timestamp); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// String renders the sheet as cue text.
func (s Sheet) String() string {
	var b strings.Builder
	_ = s.Write(&b)
	return b.String()
}
