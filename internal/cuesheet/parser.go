package cuesheet

import (
	"bufio"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	fileLinePattern  = regexp.MustCompile(`(?i)^\s*FILE\s+(?:"([^"]*)"|(\S+))\s+(\S+)\s*$`)
	trackLinePattern = regexp.MustCompile(`(?i)^\s*TRACK\s+(\d+)\s+(\S+)\s*$`)
	indexLinePattern = regexp.MustCompile(`(?i)^\s*INDEX\s+(\d+)\s+(\d+:\d{2}:\d{2})\s*$`)
	remLinePattern   = regexp.MustCompile(`(?i)^\s*REM\b`)
)

// ErrNoFileEntries is returned when a parsed sheet references no binaries.
var ErrNoFileEntries = errors.New("cue sheet contains no FILE entries")

// Parse reads cue sheet text into a Sheet. The grammar subset handled is
// FILE/TRACK/INDEX; REM, blank, and unrecognized lines are ignored. Tracks
// and indexes attach to the most recently opened file and track; a TRACK line
// before any FILE line is dropped.
func Parse(text string) (Sheet, error) {
	var sheet Sheet

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || remLinePattern.MatchString(line) {
			continue
		}

		if m := fileLinePattern.FindStringSubmatch(line); m != nil {
			name := m[1]
			if name == "" {
				name = m[2]
			}
			sheet.Files = append(sheet.Files, FileEntry{FileName: name, FileType: m[3]})
			continue
		}

		if m := trackLinePattern.FindStringSubmatch(line); m != nil {
			if len(sheet.Files) == 0 {
				continue
			}
			number, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			file := &sheet.Files[len(sheet.Files)-1]
			file.Tracks = append(file.Tracks, Track{Number: number, Type: strings.ToUpper(m[2])})
			continue
		}

		if m := indexLinePattern.FindStringSubmatch(line); m != nil {
			if len(sheet.Files) == 0 {
				continue
			}
			file := &sheet.Files[len(sheet.Files)-1]
			if len(file.Tracks) == 0 {
				continue
			}
			number, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			track := &file.Tracks[len(file.Tracks)-1]
			track.Indexes = append(track.Indexes, Index{Number: number, Timestamp: m[2]})
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return Sheet{}, err
	}

	if len(sheet.Files) == 0 {
		return Sheet{}, ErrNoFileEntries
	}
	return sheet, nil
}
