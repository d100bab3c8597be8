// Package scan drives the resolution pipeline over a directory tree.
//
// A scan walks the tree, parses cue sheets, resolves one identity record per
// disc image, assigns disc numbers across multi-disc sets, and builds merge
// plans for multi-track layouts. Files belonging to a multi-track cue sheet
// are addressed only through the sheet and never resolved or grouped
// individually. Processing is sequential and checks for cancellation between
// files; per-file failures are collected in the report and never abort the
// batch.
package scan
