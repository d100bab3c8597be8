package identity

import (
	"strings"

	"discern/internal/serial"
)

var cheatKeywords = []string{
	"gameshark",
	"game shark",
	"codebreaker",
	"code breaker",
	"action replay",
	"xploder",
	"cheat",
}

var demoKeywords = []string{
	"demo",
	"sampler",
	"preview",
}

var educationalKeywords = []string{
	"lightspan",
}

// Classify derives the content class from filename keywords and the serial
// prefix. Any LSP serial forces educational regardless of keywords.
func Classify(name, serialNumber string) ContentClass {
	if serial.IsLightspan(serialNumber) {
		return ContentEducational
	}
	lower := strings.ToLower(name)
	for _, keyword := range educationalKeywords {
		if strings.Contains(lower, keyword) {
			return ContentEducational
		}
	}
	for _, keyword := range cheatKeywords {
		if strings.Contains(lower, keyword) {
			return ContentCheat
		}
	}
	for _, keyword := range demoKeywords {
		if strings.Contains(lower, keyword) {
			return ContentDemo
		}
	}
	return ContentMainline
}

// missingSerialWarning wording varies by class: cheat and educational discs
// routinely ship without a catalog serial, so absence there is expected.
func missingSerialWarning(class ContentClass) string {
	switch class {
	case ContentCheat:
		return "Serial number not found (cheat discs typically have none)"
	case ContentEducational:
		return "Serial number not found (educational discs typically have none)"
	default:
		return "Serial number not found"
	}
}
