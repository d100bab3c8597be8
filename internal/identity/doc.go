// Package identity resolves one disc image file into a best-effort identity
// record.
//
// Resolution is staged and terminal on first success: cached identity,
// structured filename grammar, loose filename grammar with independent disc
// token search, serial extraction from the name, header probe, and finally
// catalog lookup with ambiguity surfaced as a candidate list instead of a
// guess. Resolution never fails; every input yields a Record, possibly with a
// warning attached. Records are immutable values: corrections derive a copy,
// the original is never mutated.
package identity
