// Package services defines shared error classification and retry helpers used
// by the resolution and merge pipelines.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks missing inputs (track files, catalog directories).
	// Blocks an individual plan, never the batch.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks inputs rejected before any side effect ran.
	ErrValidation = errors.New("validation error")
	// ErrUnsupported marks layouts this tool deliberately does not process.
	ErrUnsupported = errors.New("unsupported layout")
	// ErrTransient marks failures worth retrying (file locks, sharing
	// violations during replace).
	ErrTransient = errors.New("transient failure")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
