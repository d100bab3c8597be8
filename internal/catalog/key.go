package catalog

import (
	"regexp"
	"strings"

	"discern/internal/textutil"
)

var discSuffixPattern = regexp.MustCompile(`(?i)\s*\(Disc\s+\d+(?:\s+of\s+\d+)?\)`)

// NormalizeTitle strips disc-suffix tokens, collapses whitespace, and
// uppercases so catalog variants of one title share a key.
func NormalizeTitle(title string) string {
	title = discSuffixPattern.ReplaceAllString(title, " ")
	return strings.ToUpper(textutil.CollapseWhitespace(title))
}

// BuildKey produces the index key for a title and optional region.
func BuildKey(title, region string) string {
	normalized := NormalizeTitle(title)
	region = strings.ToUpper(textutil.CollapseWhitespace(region))
	if region == "" {
		return normalized
	}
	return normalized + " (" + region + ")"
}

// SplitDescription separates a catalog description into title and region
// using the trailing parenthetical: "Foo Bar (USA)" yields title "Foo Bar"
// and region "USA". Without a trailing parenthetical the whole string is the
// title and the region is empty.
func SplitDescription(description string) (title, region string) {
	description = strings.TrimSpace(description)
	if !strings.HasSuffix(description, ")") {
		return description, ""
	}
	open := strings.LastIndex(description, "(")
	if open <= 0 {
		return description, ""
	}
	title = strings.TrimSpace(description[:open])
	region = strings.TrimSpace(description[open+1 : len(description)-1])
	if title == "" || region == "" {
		return description, ""
	}
	return title, region
}
