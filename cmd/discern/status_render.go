package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// status classifies a detail line for labeling and coloring.
type status struct {
	tag   string
	color string
}

var (
	statusInfo  = status{tag: "INFO", color: "\x1b[34m"}
	statusOK    = status{tag: "OK", color: "\x1b[32m"}
	statusWarn  = status{tag: "WARN", color: "\x1b[33m"}
	statusError = status{tag: "ERROR", color: "\x1b[31m"}
)

const ansiReset = "\x1b[0m"

const (
	statusLabelWidth = 14
	statusIndent     = "  "
)

func renderStatusLine(label string, kind status, message string, colorize bool) string {
	detail := "[" + kind.tag + "]"
	if message != "" {
		detail += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", detail)
	if colorize && kind.color != "" {
		return kind.color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = statusInfo.color + line + ansiReset
		rule = statusInfo.color + rule + ansiReset
	}
	return line + "\n" + rule
}

// shouldColorize enables ANSI output only for terminal writers, honoring the
// NO_COLOR convention.
func shouldColorize(writer io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
