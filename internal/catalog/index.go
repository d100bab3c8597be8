package catalog

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/antzucaro/matchr"

	"discern/internal/logging"
)

var (
	descriptionPattern = regexp.MustCompile(`(?i)description\s+"([^"]*)"`)
	romNamePattern     = regexp.MustCompile(`(?i)rom\s+\(\s*name\s+"([^"]*)"`)
	serialPattern      = regexp.MustCompile(`(?i)\b([A-Z]{4}-\d{5}|LSP-\d{5,6})\b`)
	discTokenPattern   = regexp.MustCompile(`(?i)\(Disc\s+(\d+)(?:\s+of\s+(\d+))?\)`)
)

// Entry is one logical catalog title: the union of every catalog line that
// normalizes to the same key.
type Entry struct {
	Title     string
	Region    string
	Key       string
	Serials   []string
	DiscCount int

	serialSet map[string]struct{}
}

// HasSerial reports whether the entry accumulated the given serial.
func (e *Entry) HasSerial(serialNumber string) bool {
	_, ok := e.serialSet[strings.ToUpper(serialNumber)]
	return ok
}

// registerSerial folds a serial into the entry. Idempotent.
func (e *Entry) registerSerial(serialNumber string) {
	serialNumber = strings.ToUpper(serialNumber)
	if _, ok := e.serialSet[serialNumber]; ok {
		return
	}
	e.serialSet[serialNumber] = struct{}{}
	e.Serials = append(e.Serials, serialNumber)
	sort.Strings(e.Serials)
}

// registerDiscCount raises the entry's disc count. Monotonic, never lowered.
func (e *Entry) registerDiscCount(count int) {
	if count > e.DiscCount {
		e.DiscCount = count
	}
}

// Index is the in-memory catalog lookup structure. Read-only once built and
// safe for concurrent lookups.
type Index struct {
	entries  map[string]*Entry
	bySerial map[string]*Entry
	keys     []string
}

// Len returns the number of logical entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Load streams the given catalog files into a new Index. A description line
// starts a logical entry; rom lines are folded into the current entry. Any
// other content is ignored. Files that cannot be opened fail the load; a
// missing catalog is a configuration problem, not a per-file soft miss.
func Load(paths []string, logger *slog.Logger) (*Index, error) {
	log := logging.NewComponentLogger(logger, "catalog")
	idx := &Index{
		entries:  make(map[string]*Entry),
		bySerial: make(map[string]*Entry),
	}

	for _, path := range paths {
		if err := idx.loadFile(path); err != nil {
			return nil, fmt.Errorf("load catalog %q: %w", path, err)
		}
	}

	idx.keys = make([]string, 0, len(idx.entries))
	for key := range idx.entries {
		idx.keys = append(idx.keys, key)
	}
	sort.Strings(idx.keys)

	log.Info("catalog index built",
		logging.Int("files", len(paths)),
		logging.Int("entries", len(idx.entries)),
		logging.Int("serials", len(idx.bySerial)))
	return idx, nil
}

func (idx *Index) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var current *Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if m := descriptionPattern.FindStringSubmatch(line); m != nil {
			current = idx.openEntry(m[1])
			continue
		}
		if current == nil {
			continue
		}
		if m := romNamePattern.FindStringSubmatch(line); m != nil {
			idx.foldFragment(current, m[1])
		}
	}
	return scanner.Err()
}

// openEntry parses a description into title/region/disc fields and returns
// the entry for its key, creating it on first sight.
func (idx *Index) openEntry(description string) *Entry {
	title, region := SplitDescription(discTokenPattern.ReplaceAllString(description, " "))
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	key := BuildKey(title, region)
	entry, ok := idx.entries[key]
	if !ok {
		entry = &Entry{
			Title:     title,
			Region:    region,
			Key:       key,
			serialSet: make(map[string]struct{}),
		}
		idx.entries[key] = entry
	}
	idx.foldFragment(entry, description)
	return entry
}

// foldFragment scans a description or rom-name fragment for disc-count and
// serial tokens and folds them into the entry.
func (idx *Index) foldFragment(entry *Entry, fragment string) {
	if entry == nil {
		return
	}
	if m := discTokenPattern.FindStringSubmatch(fragment); m != nil {
		if m[2] != "" {
			if count, err := strconv.Atoi(m[2]); err == nil {
				entry.registerDiscCount(count)
			}
		} else if number, err := strconv.Atoi(m[1]); err == nil {
			entry.registerDiscCount(number)
		}
	}
	for _, m := range serialPattern.FindAllStringSubmatch(fragment, -1) {
		found := strings.ToUpper(m[1])
		entry.registerSerial(found)
		if _, ok := idx.bySerial[found]; !ok {
			idx.bySerial[found] = entry
		}
	}
}

// Lookup returns the entry whose normalized key matches title and region.
func (idx *Index) Lookup(title, region string) (*Entry, bool) {
	if idx == nil {
		return nil, false
	}
	entry, ok := idx.entries[BuildKey(title, region)]
	return entry, ok
}

// ReverseLookupBySerial returns the entry that accumulated the given serial.
func (idx *Index) ReverseLookupBySerial(serialNumber string) (*Entry, bool) {
	if idx == nil {
		return nil, false
	}
	entry, ok := idx.bySerial[strings.ToUpper(strings.TrimSpace(serialNumber))]
	return entry, ok
}

// FindSimilar ranks every entry by Levenshtein distance between the
// normalized query and the entry key, ascending by distance then by title,
// truncated to maxResults. Linear over the catalog; catalogs are bounded to
// tens of thousands of entries and this runs once per ambiguous title.
func (idx *Index) FindSimilar(title string, maxResults int) []*Entry {
	if idx == nil || maxResults <= 0 {
		return nil
	}
	query := NormalizeTitle(title)

	type ranked struct {
		entry    *Entry
		distance int
	}
	candidates := make([]ranked, 0, len(idx.keys))
	for _, key := range idx.keys {
		candidates = append(candidates, ranked{
			entry:    idx.entries[key],
			distance: matchr.Levenshtein(query, key),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].entry.Title < candidates[j].entry.Title
	})

	if maxResults > len(candidates) {
		maxResults = len(candidates)
	}
	results := make([]*Entry, 0, maxResults)
	for _, candidate := range candidates[:maxResults] {
		results = append(results, candidate.entry)
	}
	return results
}
