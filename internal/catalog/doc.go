// Package catalog loads external DAT-style metadata catalogs and answers
// identity lookups against them.
//
// Catalogs are line-oriented: a description line opens a logical entry and
// rom lines that follow are folded into it. Multiple catalog lines commonly
// map to one logical title (regional variants, per-track rom listings), so
// entries merge monotonically: serials accumulate as a set and the disc count
// only ever grows. Lookups are exact by normalized title+region key, fuzzy by
// Levenshtein distance over all keys, or reverse by serial.
package catalog
