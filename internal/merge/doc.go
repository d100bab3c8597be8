// Package merge plans and executes multi-track BIN merges.
//
// Planning is pure: given a parsed cue sheet that references one binary per
// track, it resolves every track path (tolerating toggled zero-padding in
// track numbers), picks a destination, and yields a Plan that is either Ready
// or Blocked with a reason naming every missing file. Sheets with more than
// one track in any file are skipped, not failed.
//
// Execution is side-effecting and at-most-once per plan: track payloads are
// appended to a temporary binary in sequence order and the destination is
// only ever replaced atomically, so cancellation never leaves a partial
// destination in place. When source deletion is requested each track is
// removed immediately after it has been copied to bound peak disk usage;
// tracks deleted before a cancellation are not restored. That trade-off is
// deliberate and surfaced in the result notes.
package merge
