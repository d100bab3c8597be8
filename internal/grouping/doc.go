// Package grouping clusters resolved disc records into multi-disc sets.
//
// Records group on a normalized (title, region, extension) key. A group of
// more than one member, or any member already carrying an explicit disc
// number, is treated as a multi-disc title: members are ordered by source
// path and numbered 1..N, never overwriting disc numbers that were already
// resolved. Members of a multi-track single disc are excluded up front; those
// files are only ever addressed through their cue sheet.
package grouping
