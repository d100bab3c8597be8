package identity_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"discern/internal/catalog"
	"discern/internal/identity"
)

type fakeCache struct {
	entries map[string]identity.CachedIdentity
	err     error
}

func (f *fakeCache) Get(_ context.Context, path string) (identity.CachedIdentity, bool, error) {
	if f.err != nil {
		return identity.CachedIdentity{}, false, f.err
	}
	cached, ok := f.entries[path]
	return cached, ok, nil
}

func buildIndex(t *testing.T, lines ...string) *catalog.Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.dat")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}
	idx, err := catalog.Load([]string{path}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestResolveStructuredFilename(t *testing.T) {
	resolver := identity.NewResolver(nil, nil, 5, nil)

	record := resolver.Resolve(context.Background(), "/roms/Gran Turismo (USA) [SCUS-94194].cue")
	if record.Title != "Gran Turismo" || record.Region != "USA" {
		t.Fatalf("unexpected title/region: %q/%q", record.Title, record.Region)
	}
	if record.Serial != "SCUS-94194" {
		t.Fatalf("unexpected serial: %q", record.Serial)
	}
	if record.Warning != "" {
		t.Fatalf("unexpected warning: %q", record.Warning)
	}
	if record.Extension != ".cue" {
		t.Fatalf("unexpected extension: %q", record.Extension)
	}
	if record.Content != identity.ContentMainline {
		t.Fatalf("unexpected content class: %q", record.Content)
	}
}

func TestResolveFilenameSerialWinsOverCatalog(t *testing.T) {
	idx := buildIndex(t,
		`	description "Game (USA)"`,
		`	rom ( name "Game (USA) [SLUS-99999].bin" )`,
	)
	resolver := identity.NewResolver(idx, nil, 5, nil)

	record := resolver.Resolve(context.Background(), "/roms/Game (USA) [SLUS-00001].bin")
	if record.Serial != "SLUS-00001" {
		t.Fatalf("filename serial must win over catalog, got %q", record.Serial)
	}
}

func TestResolveHeaderProbeBeatsCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Game (USA).bin")
	payload := make([]byte, 2048)
	copy(payload, []byte("BOOT = cdrom:\\SCUS_941.94;1"))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}
	idx := buildIndex(t,
		`	description "Game (USA)"`,
		`	rom ( name "Game (USA) [SLUS-99999].bin" )`,
	)
	resolver := identity.NewResolver(idx, nil, 5, nil)

	record := resolver.Resolve(context.Background(), path)
	if record.Serial != "SCUS-94194" {
		t.Fatalf("expected header serial, got %q", record.Serial)
	}
}

func TestResolveCatalogIsLastResort(t *testing.T) {
	idx := buildIndex(t,
		`	description "Quiet Game (USA)"`,
		`	rom ( name "Quiet Game (USA) [SLUS-11111].bin" )`,
	)
	resolver := identity.NewResolver(idx, nil, 5, nil)

	record := resolver.Resolve(context.Background(), "/roms/Quiet Game (USA).bin")
	if record.Serial != "SLUS-11111" {
		t.Fatalf("expected catalog serial adopted, got %q", record.Serial)
	}
	if record.Warning != "" {
		t.Fatalf("unexpected warning: %q", record.Warning)
	}
}

func TestResolveAmbiguousCatalogSerialsStayCandidates(t *testing.T) {
	idx := buildIndex(t,
		`	description "Multi Game (USA)"`,
		`	rom ( name "Multi Game (USA) (Disc 1) [SLUS-11111].bin" )`,
		`	rom ( name "Multi Game (USA) (Disc 2) [SLUS-22222].bin" )`,
	)
	resolver := identity.NewResolver(idx, nil, 5, nil)

	record := resolver.Resolve(context.Background(), "/roms/Multi Game (USA).bin")
	if record.Serial != "" {
		t.Fatalf("ambiguous serials must not be guessed, got %q", record.Serial)
	}
	if record.Warning == "" {
		t.Fatal("expected missing-serial warning")
	}
	if len(record.SerialCandidates) == 0 {
		t.Fatal("expected candidates for operator disambiguation")
	}
	if record.SerialCandidates[0].Title != "Multi Game" {
		t.Fatalf("unexpected top candidate: %+v", record.SerialCandidates[0])
	}
}

func TestResolveMissingSerialWarnings(t *testing.T) {
	resolver := identity.NewResolver(nil, nil, 5, nil)

	tests := []struct {
		path string
		want string
	}{
		{"/roms/Plain Game (USA).bin", "Serial number not found"},
		{"/roms/GameShark (USA).bin", "Serial number not found (cheat discs typically have none)"},
		{"/roms/Lightspan Reading (USA).bin", "Serial number not found (educational discs typically have none)"},
	}
	for _, tc := range tests {
		record := resolver.Resolve(context.Background(), tc.path)
		if record.Warning != tc.want {
			t.Errorf("Resolve(%q) warning = %q, want %q", tc.path, record.Warning, tc.want)
		}
	}
}

func TestResolveLightspanSerialClassifiesEducational(t *testing.T) {
	resolver := identity.NewResolver(nil, nil, 5, nil)

	record := resolver.Resolve(context.Background(), "/roms/Googol Math Games (USA) LSP-12345.bin")
	if record.Content != identity.ContentEducational {
		t.Fatalf("unexpected content class: %q", record.Content)
	}
	if record.Serial != "LSP-12345" {
		t.Fatalf("unexpected serial: %q", record.Serial)
	}
	if record.Warning != "" {
		t.Fatalf("unexpected warning: %q", record.Warning)
	}
}

func TestResolvePrefersCache(t *testing.T) {
	cache := &fakeCache{entries: map[string]identity.CachedIdentity{
		"/roms/mislabeled.bin": {
			Title:      "True Title",
			Region:     "Japan",
			Serial:     "SLPS-01234",
			DiscNumber: 2,
			DiscCount:  3,
		},
	}}
	resolver := identity.NewResolver(nil, cache, 5, nil)

	record := resolver.Resolve(context.Background(), "/roms/mislabeled.bin")
	if record.Title != "True Title" || record.Region != "Japan" {
		t.Fatalf("expected cached fields, got %+v", record)
	}
	if record.DiscNumber != 2 || record.DiscCount != 3 {
		t.Fatalf("expected cached disc fields, got %+v", record)
	}
}

func TestResolveCacheWithoutDiscFieldsSupplementsFromName(t *testing.T) {
	path := "/roms/Cached Game (USA) (Disc 2 of 2).bin"
	cache := &fakeCache{entries: map[string]identity.CachedIdentity{
		path: {Title: "Cached Game", Region: "USA", Serial: "SLUS-33333"},
	}}
	resolver := identity.NewResolver(nil, cache, 5, nil)

	record := resolver.Resolve(context.Background(), path)
	if record.DiscNumber != 2 || record.DiscCount != 2 {
		t.Fatalf("expected disc fields from filename supplement, got %+v", record)
	}
}

func TestResolveCacheErrorFallsBackToParsing(t *testing.T) {
	cache := &fakeCache{err: errors.New("database locked")}
	resolver := identity.NewResolver(nil, cache, 5, nil)

	record := resolver.Resolve(context.Background(), "/roms/Fallback (USA) [SLUS-44444].bin")
	if record.Serial != "SLUS-44444" {
		t.Fatalf("expected filename-derived record, got %+v", record)
	}
}

func TestRecordCorrectionsDeriveCopies(t *testing.T) {
	original := identity.Record{Path: "/roms/a.bin", Title: "A"}

	corrected := original.WithDisc(1, 2)
	if original.DiscNumber != 0 || original.DiscCount != 0 {
		t.Fatal("original record mutated")
	}
	if corrected.DiscNumber != 1 || corrected.DiscCount != 2 {
		t.Fatalf("unexpected corrected record: %+v", corrected)
	}

	accepted := corrected.WithCandidate(identity.Candidate{Title: "B", Region: "USA", Serial: "SLUS-55555", DiscCount: 3})
	if accepted.Title != "B" || accepted.Serial != "SLUS-55555" || accepted.DiscCount != 3 {
		t.Fatalf("unexpected accepted record: %+v", accepted)
	}
	if accepted.Warning != "" || accepted.SerialCandidates != nil {
		t.Fatal("acceptance must clear warning and candidates")
	}
	if corrected.Title != "A" {
		t.Fatal("corrected record mutated by acceptance")
	}
}
