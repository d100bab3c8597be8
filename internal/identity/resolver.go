package identity

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"discern/internal/catalog"
	"discern/internal/logging"
	"discern/internal/serial"
)

// Cache is the external identity cache collaborator, keyed by file path.
// A miss is (zero, false, nil); errors are treated as misses by the resolver.
type Cache interface {
	Get(ctx context.Context, path string) (CachedIdentity, bool, error)
}

// Resolver combines filename parsing, serial probing, and catalog lookups
// into one resolved record per file.
type Resolver struct {
	index         *catalog.Index
	cache         Cache
	maxCandidates int
	logger        *slog.Logger
}

// NewResolver constructs a resolver. index and cache may be nil; resolution
// then runs on filename and header evidence alone.
func NewResolver(index *catalog.Index, cache Cache, maxCandidates int, logger *slog.Logger) *Resolver {
	if maxCandidates <= 0 {
		maxCandidates = 5
	}
	return &Resolver{
		index:         index,
		cache:         cache,
		maxCandidates: maxCandidates,
		logger:        logging.NewComponentLogger(logger, "identity"),
	}
}

// Resolve derives the identity record for one file. It never fails: every
// outcome is a Record with best-effort fields and an optional warning.
func (r *Resolver) Resolve(ctx context.Context, path string) Record {
	record := Record{
		Path:      path,
		Extension: strings.ToLower(filepath.Ext(path)),
		Content:   ContentMainline,
	}
	base := filepath.Base(path)

	if cached, ok := r.fromCache(ctx, path); ok {
		record = r.applyCached(record, cached, base)
		record.Content = Classify(base, record.Serial)
		return record
	}

	parsed, ok := ParseFilename(base)
	if ok {
		record.Title = parsed.Title
		record.Region = parsed.Region
		record.Serial = parsed.Serial
		record.DiscNumber = parsed.DiscNumber
		record.DiscCount = parsed.DiscCount
		record.TrackNumber = parsed.TrackNumber
		record.Version = parsed.Version
		if parsed.TrackNumber > 1 {
			record.IsAudioTrack = true
		}
	}

	if record.Serial == "" {
		if found, ok := serial.FromFilename(base); ok {
			record.Serial = found
		}
	}
	if record.Serial == "" {
		if found, ok := serial.FromDiscHeader(path); ok {
			record.Serial = found
			r.logger.Debug("serial resolved from disc header",
				logging.String("path", path),
				logging.String("serial", found))
		}
	}
	if record.Serial == "" {
		record = r.fromCatalog(record)
	}

	record.Content = Classify(base, record.Serial)
	if record.Content != ContentMainline {
		r.logger.Debug("non-mainline content classified",
			logging.String("path", path),
			logging.Any("class", record.Content))
	}

	if record.Serial == "" {
		record.Warning = missingSerialWarning(record.Content)
		record.SerialCandidates = r.candidates(record)
	}
	return record
}

func (r *Resolver) fromCache(ctx context.Context, path string) (CachedIdentity, bool) {
	if r.cache == nil {
		return CachedIdentity{}, false
	}
	cached, ok, err := r.cache.Get(ctx, path)
	if err != nil {
		r.logger.Warn("identity cache lookup failed, re-deriving",
			logging.String("path", path),
			logging.Error(err))
		return CachedIdentity{}, false
	}
	return cached, ok && cached.Title != ""
}

// applyCached prefers every cached field over re-parsing. When the cache has
// a title but no disc fields, the filename is scanned for a disc token as a
// supplement.
func (r *Resolver) applyCached(record Record, cached CachedIdentity, base string) Record {
	record.Title = cached.Title
	record.Region = cached.Region
	record.Serial = serial.Normalize(cached.Serial)
	record.Version = cached.Version
	record.DiscNumber = cached.DiscNumber
	record.DiscCount = cached.DiscCount
	if record.DiscNumber == 0 && record.DiscCount == 0 {
		if number, count, ok := FindDiscToken(base); ok {
			record.DiscNumber = number
			record.DiscCount = count
		}
	}
	// Track membership is never cached; it always comes from the name.
	if parsed, ok := ParseFilename(base); ok && parsed.TrackNumber > 0 {
		record.TrackNumber = parsed.TrackNumber
		record.IsAudioTrack = parsed.TrackNumber > 1
	}
	return record
}

// fromCatalog consults the exact-lookup entry as the last serial source. A
// single accumulated serial is adopted; multiple serials stay ambiguous and
// flow into the candidate list instead of being guessed.
func (r *Resolver) fromCatalog(record Record) Record {
	if r.index == nil || record.Title == "" {
		return record
	}
	entry, ok := r.index.Lookup(record.Title, record.Region)
	if !ok {
		return record
	}
	if record.DiscCount == 0 && entry.DiscCount > 1 {
		record.DiscCount = entry.DiscCount
	}
	if len(entry.Serials) == 1 {
		record.Serial = entry.Serials[0]
	}
	return record
}

// candidates assembles the operator-assisted disambiguation list from fuzzy
// catalog matches. Never applied automatically.
func (r *Resolver) candidates(record Record) []Candidate {
	if r.index == nil || record.Title == "" {
		return nil
	}
	query := record.Title
	if record.Region != "" {
		query += " (" + record.Region + ")"
	}
	entries := r.index.FindSimilar(query, r.maxCandidates)
	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		candidate := Candidate{
			Title:     entry.Title,
			Region:    entry.Region,
			DiscCount: entry.DiscCount,
		}
		if len(entry.Serials) == 1 {
			candidate.Serial = entry.Serials[0]
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}
