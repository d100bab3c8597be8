package identity

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"discern/internal/serial"
)

// Filename grammar: Title (Region) [SERIAL] (Disc N[ of M])? (Track NN)?.ext
// The disc token is also accepted before the serial tag. Only the two serial
// shapes count as a SERIAL tag; other bracketed content (dump flags like [!]
// or [b], translation tags) is noise and is stripped before matching.
var (
	structuredPattern = regexp.MustCompile(`(?i)^(.+?)\s+\(([^()]+)\)(?:\s+\(Disc\s+(\d+)(?:\s+of\s+(\d+))?\))?\s+\[([A-Z]{4}-\d{5}|LSP-\d{5,6})\](?:\s+\(Disc\s+(\d+)(?:\s+of\s+(\d+))?\))?\s*$`)
	loosePattern      = regexp.MustCompile(`(?i)^(.+?)\s+\(([^()]+)\)`)
	discTokenPattern  = regexp.MustCompile(`(?i)\(Disc\s+(\d+)(?:\s+of\s+(\d+))?\)`)
	trackTokenPattern = regexp.MustCompile(`(?i)\(Track\s+(\d+)\)`)
	versionPattern    = regexp.MustCompile(`(?i)\((?:Rev\s*(\d+[\w.]*)|v(\d+(?:\.\d+)+))\)`)
	bracketPattern    = regexp.MustCompile(`\[[^\]]*\]`)
)

// ParsedName is the typed result of matching a filename against the grammar.
type ParsedName struct {
	Title       string
	Region      string
	Serial      string
	DiscNumber  int
	DiscCount   int
	TrackNumber int
	Version     string
	Structured  bool
}

// ParseFilename matches the file stem against the canonical grammar, then
// falls back to the looser Title (Region) form with an independent disc token
// search. Returns false when not even a title could be derived.
func ParseFilename(name string) (ParsedName, bool) {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	var parsed ParsedName
	if m := trackTokenPattern.FindStringSubmatch(stem); m != nil {
		parsed.TrackNumber, _ = strconv.Atoi(m[1])
		stem = strings.TrimSpace(trackTokenPattern.ReplaceAllString(stem, " "))
	}
	if m := versionPattern.FindStringSubmatch(stem); m != nil {
		if m[1] != "" {
			parsed.Version = "Rev " + m[1]
		} else {
			parsed.Version = "v" + m[2]
		}
		stem = strings.TrimSpace(versionPattern.ReplaceAllString(stem, " "))
	}
	stem = collapseSpaces(stripNoiseTags(stem))

	if m := structuredPattern.FindStringSubmatch(stem); m != nil {
		parsed.Title = strings.TrimSpace(m[1])
		parsed.Region = strings.TrimSpace(m[2])
		parsed.Serial = strings.ToUpper(strings.TrimSpace(m[5]))
		// The disc token may sit on either side of the serial tag.
		number, count := m[3], m[4]
		if number == "" {
			number, count = m[6], m[7]
		}
		if number != "" {
			parsed.DiscNumber, _ = strconv.Atoi(number)
		}
		if count != "" {
			parsed.DiscCount, _ = strconv.Atoi(count)
		}
		parsed.Structured = true
		return parsed, true
	}

	if m := loosePattern.FindStringSubmatch(stem); m != nil {
		parsed.Title = strings.TrimSpace(m[1])
		region := strings.TrimSpace(m[2])
		// A leading (Disc N) is a disc token, not a region.
		if !strings.HasPrefix(strings.ToUpper(region), "DISC ") {
			parsed.Region = region
		}
		if d := discTokenPattern.FindStringSubmatch(stem); d != nil {
			parsed.DiscNumber, _ = strconv.Atoi(d[1])
			if d[2] != "" {
				parsed.DiscCount, _ = strconv.Atoi(d[2])
			}
		}
		return parsed, true
	}

	// Fallback: strip any bracketed token, then derive a display title from
	// what remains.
	stem = strings.TrimSpace(bracketPattern.ReplaceAllString(stem, " "))
	if title := deriveTitle(stem); title != "" {
		parsed.Title = title
		return parsed, true
	}
	return parsed, false
}

// stripNoiseTags removes bracketed tags that carry no serial token. Left in
// place they would be mistaken for a serial tag, and a bogus serial masks the
// disc-header probe and the missing-serial warning downstream.
func stripNoiseTags(stem string) string {
	return bracketPattern.ReplaceAllStringFunc(stem, func(tag string) string {
		if _, ok := serial.FromFilename(tag); ok {
			return tag
		}
		return " "
	})
}

// FindDiscToken searches anywhere in a name for a (Disc N[ of M]) token.
func FindDiscToken(name string) (number, count int, ok bool) {
	m := discTokenPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	number, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		count, _ = strconv.Atoi(m[2])
	}
	return number, count, true
}

// deriveTitle produces a display title from an unstructured file stem.
func deriveTitle(stem string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range stem {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return ""
	}
	return cases.Title(language.Und).String(title)
}

func collapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
