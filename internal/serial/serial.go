package serial

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	bracketTokenPattern = regexp.MustCompile(`(?i)\[([A-Z]{4}-\d{5})\]`)
	lightspanPattern    = regexp.MustCompile(`(?i)\bLSP-\d{5,6}\b`)
)

// LightspanPrefix identifies Lightspan educational discs.
const LightspanPrefix = "LSP-"

// FromFilename extracts a serial token from a file name: either the bracketed
// four-letter-prefix form ([SLUS-01234]) or a Lightspan LSP-NNNNN(N) token,
// case-insensitive, normalized to uppercase. Returns false when no token is
// present.
func FromFilename(name string) (string, bool) {
	if m := bracketTokenPattern.FindStringSubmatch(name); m != nil {
		return strings.ToUpper(m[1]), true
	}
	if m := lightspanPattern.FindString(name); m != "" {
		return strings.ToUpper(m), true
	}
	return "", false
}

// IsLightspan reports whether a serial carries the Lightspan prefix.
func IsLightspan(serialNumber string) bool {
	return strings.HasPrefix(strings.ToUpper(serialNumber), LightspanPrefix)
}

// Normalize uppercases a serial and converts the on-disc underscore/dot
// layout (SLUS_012.34) to the canonical dashed form (SLUS-01234).
func Normalize(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if m := headerPattern.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf("%s-%s%s", m[1], m[2], m[3])
	}
	return raw
}
