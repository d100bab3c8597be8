package merge_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"discern/internal/cuesheet"
	"discern/internal/identity"
	"discern/internal/merge"
	"discern/internal/services"
)

func writeFile(t *testing.T, path string, payload []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}
}

func fill(size int, value byte) []byte {
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = value
	}
	return payload
}

func parseSheet(t *testing.T, text string) cuesheet.Sheet {
	t.Helper()
	sheet, err := cuesheet.Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	return sheet
}

func multiTrackSheet() string {
	return strings.Join([]string{
		`FILE "Game (Track 1).bin" BINARY`,
		`  TRACK 01 MODE2/2352`,
		`    INDEX 01 00:00:00`,
		`FILE "Game (Track 2).bin" BINARY`,
		`  TRACK 02 AUDIO`,
		`    INDEX 01 00:00:00`,
	}, "\n")
}

func TestStandardMultiTrackMerge(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "Game.cue")
	dataTrack := fill(2352000, 0xAA)
	audioTrack := fill(1000188, 0xBB)
	writeFile(t, filepath.Join(dir, "Game (Track 1).bin"), dataTrack)
	writeFile(t, filepath.Join(dir, "Game (Track 2).bin"), audioTrack)
	writeFile(t, cuePath, []byte(multiTrackSheet()))

	planner := merge.NewPlanner(nil)
	plan, ok := planner.Plan(cuePath, parseSheet(t, multiTrackSheet()), nil, merge.Options{})
	if !ok {
		t.Fatal("expected plan")
	}
	if plan.State() != merge.StateReady {
		t.Fatalf("unexpected state: %q", plan.State())
	}

	result, err := merge.Execute(context.Background(), plan, merge.Options{}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.BytesWritten != 3352188 {
		t.Fatalf("unexpected byte count: %d", result.BytesWritten)
	}
	if plan.State() != merge.StateCommitted {
		t.Fatalf("expected committed state, got %q", plan.State())
	}

	merged, err := os.ReadFile(filepath.Join(dir, "Game.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(merged) != 3352188 {
		t.Fatalf("unexpected merged length: %d", len(merged))
	}
	if !bytes.Equal(merged[:len(dataTrack)], dataTrack) {
		t.Fatal("data track content mismatch at offset 0")
	}
	if !bytes.Equal(merged[len(dataTrack):], audioTrack) {
		t.Fatal("audio track content mismatch at track offset")
	}

	cueText, err := os.ReadFile(filepath.Join(dir, "Game.cue"))
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		`FILE "Game.bin" BINARY`,
		`  TRACK 01 MODE2/2352`,
		`    INDEX 01 00:00:00`,
		`  TRACK 02 AUDIO`,
		`    INDEX 01 00:13:25`,
		``,
	}, "\n")
	if string(cueText) != want {
		t.Fatalf("unexpected cue output:\n%s\nwant:\n%s", cueText, want)
	}
}

func TestMergedCueRoundTripsAndStaysMonotonic(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "Game.cue")
	writeFile(t, filepath.Join(dir, "Game (Track 1).bin"), fill(2352*100, 1))
	writeFile(t, filepath.Join(dir, "Game (Track 2).bin"), fill(2352*50, 2))
	writeFile(t, cuePath, []byte(multiTrackSheet()))

	planner := merge.NewPlanner(nil)
	plan, ok := planner.Plan(cuePath, parseSheet(t, multiTrackSheet()), nil, merge.Options{})
	if !ok {
		t.Fatal("expected plan")
	}
	if _, err := merge.Execute(context.Background(), plan, merge.Options{}, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	out, err := os.ReadFile(plan.DestinationCue)
	if err != nil {
		t.Fatal(err)
	}
	sheet, err := cuesheet.Parse(string(out))
	if err != nil {
		t.Fatalf("re-parse merged cue: %v", err)
	}
	if len(sheet.Files) != 1 {
		t.Fatalf("expected single FILE entry, got %d", len(sheet.Files))
	}
	if err := sheet.Validate(); err != nil {
		t.Fatalf("merged sheet invalid: %v", err)
	}
	previous := ""
	for _, track := range sheet.Files[0].Tracks {
		ts := track.Indexes[0].Timestamp
		if ts < previous {
			t.Fatalf("timestamps not monotonic: %q after %q", ts, previous)
		}
		previous = ts
	}
}

func TestZeroPaddingTolerance(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "Game.cue")
	// Cue references "Track 1" but the rip on disk uses "Track 01".
	writeFile(t, filepath.Join(dir, "Game (Track 01).bin"), fill(2352, 1))
	writeFile(t, filepath.Join(dir, "Game (Track 02).bin"), fill(2352, 2))
	writeFile(t, cuePath, []byte(multiTrackSheet()))

	planner := merge.NewPlanner(nil)
	plan, ok := planner.Plan(cuePath, parseSheet(t, multiTrackSheet()), nil, merge.Options{})
	if !ok {
		t.Fatal("expected plan")
	}
	if plan.Blocked {
		t.Fatalf("expected padding-toggled resolution, blocked: %s", plan.BlockReason)
	}

	result, err := merge.Execute(context.Background(), plan, merge.Options{}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.BytesWritten != 2352*2 {
		t.Fatalf("unexpected byte count: %d", result.BytesWritten)
	}
}

func TestBlockedPlanNamesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "Game.cue")
	writeFile(t, filepath.Join(dir, "Game (Track 1).bin"), fill(2352, 1))
	writeFile(t, cuePath, []byte(multiTrackSheet()))

	planner := merge.NewPlanner(nil)
	plan, ok := planner.Plan(cuePath, parseSheet(t, multiTrackSheet()), nil, merge.Options{})
	if !ok {
		t.Fatal("expected plan")
	}
	if !plan.Blocked || plan.State() != merge.StateBlocked {
		t.Fatal("expected blocked plan")
	}
	if !strings.Contains(plan.BlockReason, "Game (Track 2).bin") {
		t.Fatalf("block reason must name the missing file: %q", plan.BlockReason)
	}

	_, err := merge.Execute(context.Background(), plan, merge.Options{}, nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "Game.bin")); !os.IsNotExist(statErr) {
		t.Fatal("blocked plan must not write output")
	}
}

func TestMultipleTracksPerFileSkipped(t *testing.T) {
	text := strings.Join([]string{
		`FILE "Game.bin" BINARY`,
		`  TRACK 01 MODE2/2352`,
		`    INDEX 01 00:00:00`,
		`  TRACK 02 AUDIO`,
		`    INDEX 01 00:13:25`,
		`FILE "Game2.bin" BINARY`,
		`  TRACK 03 AUDIO`,
		`    INDEX 01 00:00:00`,
	}, "\n")

	planner := merge.NewPlanner(nil)
	if _, ok := planner.Plan("/roms/Game.cue", parseSheet(t, text), nil, merge.Options{}); ok {
		t.Fatal("expected unsupported layout to be skipped without a plan")
	}
}

func TestOutOfOrderTrackNumbersSkipped(t *testing.T) {
	text := strings.Join([]string{
		`FILE "Game (Track 2).bin" BINARY`,
		`  TRACK 02 AUDIO`,
		`    INDEX 01 00:00:00`,
		`FILE "Game (Track 1).bin" BINARY`,
		`  TRACK 01 MODE2/2352`,
		`    INDEX 01 00:00:00`,
	}, "\n")

	planner := merge.NewPlanner(nil)
	if _, ok := planner.Plan("/roms/Game.cue", parseSheet(t, text), nil, merge.Options{}); ok {
		t.Fatal("expected out-of-order track numbering to be skipped without a plan")
	}
}

func TestKeepOriginalsBacksUpRewrittenCueSheet(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "Game.cue")
	writeFile(t, filepath.Join(dir, "Game (Track 1).bin"), fill(2352, 1))
	writeFile(t, filepath.Join(dir, "Game (Track 2).bin"), fill(2352, 2))
	writeFile(t, cuePath, []byte(multiTrackSheet()))

	opts := merge.Options{KeepOriginals: true}
	planner := merge.NewPlanner(nil)
	plan, ok := planner.Plan(cuePath, parseSheet(t, multiTrackSheet()), nil, opts)
	if !ok {
		t.Fatal("expected plan")
	}

	if _, err := merge.Execute(context.Background(), plan, opts, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	backup, err := os.ReadFile(cuePath + ".orig")
	if err != nil {
		t.Fatalf("expected cue backup: %v", err)
	}
	if string(backup) != multiTrackSheet() {
		t.Fatalf("backup does not match the original sheet:\n%s", backup)
	}
	rewritten, err := os.ReadFile(plan.DestinationCue)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(rewritten), `FILE "Game.bin" BINARY`) {
		t.Fatalf("expected rewritten single-file sheet, got:\n%s", rewritten)
	}
}

func TestDeleteSourcesRemovesTracksAndCue(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "Game.cue")
	writeFile(t, filepath.Join(dir, "Game (Track 1).bin"), fill(2352, 1))
	writeFile(t, filepath.Join(dir, "Game (Track 2).bin"), fill(2352, 2))
	writeFile(t, cuePath, []byte(multiTrackSheet()))

	opts := merge.Options{DeleteSources: true, Flatten: true}
	ident := &identity.Record{Title: "Game", Region: "USA"}
	planner := merge.NewPlanner(nil)
	plan, ok := planner.Plan(cuePath, parseSheet(t, multiTrackSheet()), ident, opts)
	if !ok {
		t.Fatal("expected plan")
	}
	if filepath.Base(plan.DestinationBin) != "Game (USA).bin" {
		t.Fatalf("unexpected flatten destination: %q", plan.DestinationBin)
	}

	result, err := merge.Execute(context.Background(), plan, opts, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.DeletedSources) != 3 {
		t.Fatalf("expected two tracks and the cue deleted, got %v", result.DeletedSources)
	}
	for _, name := range []string{"Game (Track 1).bin", "Game (Track 2).bin", "Game.cue"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("expected %s deleted", name)
		}
	}
	if _, err := os.Stat(plan.DestinationBin); err != nil {
		t.Fatalf("expected merged output present: %v", err)
	}
	if _, err := os.Stat(plan.DestinationCue); err != nil {
		t.Fatalf("expected merged cue present: %v", err)
	}
}

func TestCancellationLeavesNoDestination(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "Game.cue")
	writeFile(t, filepath.Join(dir, "Game (Track 1).bin"), fill(2352, 1))
	writeFile(t, filepath.Join(dir, "Game (Track 2).bin"), fill(2352, 2))
	writeFile(t, cuePath, []byte(multiTrackSheet()))

	planner := merge.NewPlanner(nil)
	plan, ok := planner.Plan(cuePath, parseSheet(t, multiTrackSheet()), nil, merge.Options{})
	if !ok {
		t.Fatal("expected plan")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := merge.Execute(ctx, plan, merge.Options{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "Game.bin")); !os.IsNotExist(statErr) {
		t.Fatal("cancelled merge must not promote a destination binary")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "Game.bin.partial")); !os.IsNotExist(statErr) {
		t.Fatal("cancelled merge must clean up its temporary file")
	}
	for _, name := range []string{"Game (Track 1).bin", "Game (Track 2).bin", "Game.cue"} {
		if _, statErr := os.Stat(filepath.Join(dir, name)); statErr != nil {
			t.Fatalf("expected %s untouched: %v", name, statErr)
		}
	}
}

func TestExecuteIsAtMostOnce(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "Game.cue")
	writeFile(t, filepath.Join(dir, "Game (Track 1).bin"), fill(2352, 1))
	writeFile(t, filepath.Join(dir, "Game (Track 2).bin"), fill(2352, 2))
	writeFile(t, cuePath, []byte(multiTrackSheet()))

	planner := merge.NewPlanner(nil)
	plan, ok := planner.Plan(cuePath, parseSheet(t, multiTrackSheet()), nil, merge.Options{})
	if !ok {
		t.Fatal("expected plan")
	}
	if _, err := merge.Execute(context.Background(), plan, merge.Options{}, nil); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	if _, err := merge.Execute(context.Background(), plan, merge.Options{}, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("second execute must fail, got %v", err)
	}
}

func TestExecuteReplacesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "Game.cue")
	writeFile(t, filepath.Join(dir, "Game (Track 1).bin"), fill(2352, 1))
	writeFile(t, filepath.Join(dir, "Game (Track 2).bin"), fill(2352, 2))
	writeFile(t, cuePath, []byte(multiTrackSheet()))
	writeFile(t, filepath.Join(dir, "Game.bin"), []byte("stale"))

	planner := merge.NewPlanner(nil)
	plan, ok := planner.Plan(cuePath, parseSheet(t, multiTrackSheet()), nil, merge.Options{})
	if !ok {
		t.Fatal("expected plan")
	}
	if len(plan.Notes) == 0 {
		t.Fatal("expected note about existing destination")
	}
	if _, err := merge.Execute(context.Background(), plan, merge.Options{}, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	merged, err := os.ReadFile(filepath.Join(dir, "Game.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(merged) != 2352*2 {
		t.Fatalf("stale destination not replaced: %d bytes", len(merged))
	}
}

func TestSingleTrackAlreadyMerged(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "Game.cue")
	text := strings.Join([]string{
		`FILE "Game.bin" BINARY`,
		`  TRACK 01 MODE2/2352`,
		`    INDEX 01 00:00:00`,
	}, "\n")
	writeFile(t, filepath.Join(dir, "Game.bin"), fill(2352, 1))
	writeFile(t, cuePath, []byte(text))

	planner := merge.NewPlanner(nil)
	plan, ok := planner.Plan(cuePath, parseSheet(t, text), nil, merge.Options{})
	if !ok {
		t.Fatal("expected already-merged plan")
	}
	if !plan.AlreadyMerged {
		t.Fatal("expected already-merged annotation")
	}

	result, err := merge.Execute(context.Background(), plan, merge.Options{}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.TracksCopied != 0 || result.BytesWritten != 0 {
		t.Fatalf("already-merged plan must be a no-op, got %+v", result)
	}
}

func TestSingleFileSheetWithoutDestinationSkipped(t *testing.T) {
	dir := t.TempDir()
	text := strings.Join([]string{
		`FILE "Solo.bin" BINARY`,
		`  TRACK 01 MODE2/2352`,
		`    INDEX 01 00:00:00`,
	}, "\n")

	planner := merge.NewPlanner(nil)
	if _, ok := planner.Plan(filepath.Join(dir, "Solo.cue"), parseSheet(t, text), nil, merge.Options{}); ok {
		t.Fatal("single-file sheet with no existing destination must be skipped")
	}
}
