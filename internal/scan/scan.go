package scan

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"discern/internal/config"
	"discern/internal/cuesheet"
	"discern/internal/grouping"
	"discern/internal/identity"
	"discern/internal/logging"
	"discern/internal/merge"
)

// Failure pairs a path with the error that kept it out of the results.
type Failure struct {
	Path string
	Err  error
}

// Report is the outcome of one scan: resolved records with disc numbers
// assigned, merge plans for multi-track layouts, and collected per-file
// failures.
type Report struct {
	Records       []identity.Record
	Plans         []*merge.Plan
	SkippedSheets []string
	Failures      []Failure
}

// RecordSink receives resolved records, typically the identity cache.
type RecordSink interface {
	Put(ctx context.Context, record identity.Record) error
}

// Pipeline wires the resolver, planner, and configuration into one scan.
type Pipeline struct {
	cfg      *config.Config
	resolver *identity.Resolver
	planner  *merge.Planner
	sink     RecordSink
	logger   *slog.Logger
}

// New constructs a pipeline. sink may be nil to skip cache writes.
func New(cfg *config.Config, resolver *identity.Resolver, planner *merge.Planner, sink RecordSink, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		resolver: resolver,
		planner:  planner,
		sink:     sink,
		logger:   logging.NewComponentLogger(logger, "scan"),
	}
}

// MergeOptions derives merge options from configuration.
func (p *Pipeline) MergeOptions() merge.Options {
	return merge.Options{
		Flatten:         p.cfg.Merge.Flatten,
		DeleteSources:   p.cfg.Merge.DeleteSources,
		KeepOriginals:   p.cfg.Merge.KeepOriginals,
		ReplaceAttempts: p.cfg.Merge.ReplaceRetry,
		ReplaceDelay:    time.Duration(p.cfg.Merge.ReplaceDelay) * time.Millisecond,
	}
}

// Scan processes every candidate file under root. Only cancellation and an
// unreadable root abort the scan; everything else is reported per file.
func (p *Pipeline) Scan(ctx context.Context, root string) (Report, error) {
	var report Report

	paths, err := p.collect(root)
	if err != nil {
		return report, err
	}

	// Cue sheets first: multi-track layouts claim their member binaries
	// before individual resolution runs.
	excluded := make(map[string]struct{})
	opts := p.MergeOptions()
	for _, path := range paths {
		if strings.ToLower(filepath.Ext(path)) != ".cue" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		sheet, err := p.parseSheet(path)
		if err != nil {
			report.Failures = append(report.Failures, Failure{Path: path, Err: err})
			continue
		}
		if !sheet.IsMultiFile() {
			continue
		}
		p.excludeMembers(path, sheet, excluded)

		ident := p.resolver.Resolve(ctx, path)
		plan, ok := p.planner.Plan(path, sheet, &ident, opts)
		if !ok {
			report.SkippedSheets = append(report.SkippedSheets, path)
			continue
		}
		report.Plans = append(report.Plans, plan)
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, ok := excluded[path]; ok {
			continue
		}
		record := p.resolver.Resolve(ctx, path)
		report.Records = append(report.Records, record)
	}

	report.Records = grouping.AssignDiscNumbers(report.Records)

	if p.sink != nil {
		for _, record := range report.Records {
			if record.Title == "" {
				continue
			}
			if err := p.sink.Put(ctx, record); err != nil {
				p.logger.Warn("identity cache write failed",
					logging.String("path", record.Path),
					logging.Error(err))
			}
		}
	}

	attrs := []logging.Attr{
		logging.String("root", root),
		logging.Int("records", len(report.Records)),
		logging.Int("plans", len(report.Plans)),
	}
	if len(report.Failures) > 0 {
		attrs = append(attrs, logging.Int("failures", len(report.Failures)))
	}
	p.logger.Info("scan complete", logging.Args(attrs...)...)
	return report, nil
}

// ExecutePlans runs every ready plan, collecting per-plan failures. Only
// cancellation stops the batch early.
func (p *Pipeline) ExecutePlans(ctx context.Context, plans []*merge.Plan) ([]merge.Result, []Failure) {
	opts := p.MergeOptions()
	var results []merge.Result
	var failures []Failure
	for _, plan := range plans {
		if ctx.Err() != nil {
			failures = append(failures, Failure{Path: plan.CuePath, Err: ctx.Err()})
			return results, failures
		}
		if plan.Blocked {
			failures = append(failures, Failure{Path: plan.CuePath, Err: errors.New(plan.BlockReason)})
			continue
		}
		result, err := merge.Execute(ctx, plan, opts, p.logger)
		if err != nil {
			failures = append(failures, Failure{Path: plan.CuePath, Err: err})
			if ctx.Err() != nil {
				return results, failures
			}
			continue
		}
		results = append(results, result)
	}
	return results, failures
}

func (p *Pipeline) collect(root string) ([]string, error) {
	allowed := make(map[string]struct{}, len(p.cfg.Scan.Extensions))
	for _, ext := range p.cfg.Scan.Extensions {
		allowed[ext] = struct{}{}
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(paths, func(i, j int) bool {
		return strings.ToLower(paths[i]) < strings.ToLower(paths[j])
	})
	return paths, nil
}

func (p *Pipeline) parseSheet(path string) (cuesheet.Sheet, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return cuesheet.Sheet{}, err
	}
	return cuesheet.Parse(string(text))
}

// excludeMembers claims every binary a multi-track sheet references so the
// per-file pass skips them.
func (p *Pipeline) excludeMembers(cuePath string, sheet cuesheet.Sheet, excluded map[string]struct{}) {
	cueDir := filepath.Dir(cuePath)
	for _, file := range sheet.Files {
		if resolved, ok := merge.ResolveTrackPath(cueDir, file.FileName); ok {
			excluded[resolved] = struct{}{}
			continue
		}
		excluded[filepath.Join(cueDir, file.FileName)] = struct{}{}
	}
}

