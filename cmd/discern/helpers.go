package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"discern/internal/cuesheet"
	"discern/internal/identity"
	"discern/internal/services"
)

// readSheet parses a cue sheet from disk. Non-cue paths report an error so
// callers can treat them as plain images.
func readSheet(path string) (cuesheet.Sheet, error) {
	if strings.ToLower(filepath.Ext(path)) != ".cue" {
		return cuesheet.Sheet{}, services.Wrap(services.ErrUnsupported, "merge", "read sheet",
			fmt.Sprintf("%s is not a cue sheet", path), nil)
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return cuesheet.Sheet{}, err
	}
	return cuesheet.Parse(string(text))
}

func formatDisc(record identity.Record) string {
	switch {
	case record.DiscNumber > 0 && record.DiscCount > 0:
		return fmt.Sprintf("%d/%d", record.DiscNumber, record.DiscCount)
	case record.DiscNumber > 0:
		return fmt.Sprintf("%d", record.DiscNumber)
	default:
		return ""
	}
}

func formatContent(class identity.ContentClass) string {
	if class == "" || class == identity.ContentMainline {
		return ""
	}
	return string(class)
}

func recordRow(record identity.Record) []string {
	return []string{
		filepath.Base(record.Path),
		record.Title,
		record.Region,
		record.Serial,
		formatDisc(record),
		formatContent(record.Content),
		record.Warning,
	}
}

var recordHeaders = []string{"File", "Title", "Region", "Serial", "Disc", "Class", "Warning"}

func candidateRows(candidates []identity.Candidate) [][]string {
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		count := ""
		if c.DiscCount > 0 {
			count = fmt.Sprintf("%d", c.DiscCount)
		}
		rows = append(rows, []string{c.Title, c.Region, c.Serial, count})
	}
	return rows
}

var candidateHeaders = []string{"Title", "Region", "Serial", "Discs"}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func trimArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimSpace(args[0])
}
