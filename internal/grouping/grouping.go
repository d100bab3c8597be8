package grouping

import (
	"sort"
	"strings"

	"discern/internal/catalog"
	"discern/internal/identity"
)

// key builds the case-insensitive group key for a record.
func key(record identity.Record) string {
	return catalog.NormalizeTitle(record.Title) + "|" +
		strings.ToUpper(strings.TrimSpace(record.Region)) + "|" +
		strings.ToLower(record.Extension)
}

// AssignDiscNumbers clusters records into multi-disc sets and returns a new
// slice of derived records with disc number and count filled in. Input
// records are never mutated; records that already carry explicit disc fields
// keep them. The result is independent of input order: members are numbered
// by ascending source path, compared case-insensitively.
func AssignDiscNumbers(records []identity.Record) []identity.Record {
	groups := make(map[string][]int, len(records))
	order := make([]string, 0, len(records))

	result := make([]identity.Record, len(records))
	copy(result, records)

	for i, record := range result {
		// Multi-track members are addressed through their cue sheet, never
		// numbered as discs.
		if record.IsTrackMember() || record.Title == "" {
			continue
		}
		k := key(record)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		members := groups[k]
		if !qualifies(result, members) {
			continue
		}
		sort.SliceStable(members, func(a, b int) bool {
			return strings.ToLower(result[members[a]].Path) < strings.ToLower(result[members[b]].Path)
		})
		size := len(members)
		for position, idx := range members {
			record := result[idx]
			number := record.DiscNumber
			if number == 0 {
				number = position + 1
			}
			count := record.DiscCount
			if count == 0 {
				count = size
			}
			result[idx] = record.WithDisc(number, count)
		}
	}

	return result
}

// qualifies reports whether a group is a genuine multi-disc set: more than
// one member, or any member with an explicit disc number already resolved.
func qualifies(records []identity.Record, members []int) bool {
	if len(members) > 1 {
		return true
	}
	for _, idx := range members {
		if records[idx].DiscNumber > 0 {
			return true
		}
	}
	return false
}
