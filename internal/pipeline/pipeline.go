// Package pipeline turns a job document and a batch of resumes into profiles,
// collecting a per-item result for every resume, and ranks the candidates.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-matcher/internal/apperr"
	"github.com/spigell/resume-matcher/internal/dataset"
	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/filtering"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/metrics"
	"github.com/spigell/resume-matcher/internal/profile"
)

// Policy decides what a batch does when one resume fails.
type Policy string

const (
	// FailFast stops the batch at the first failure in input order.
	FailFast Policy = "fail-fast"
	// Skip logs failures and continues with the remaining resumes.
	Skip Policy = "skip"
)

// ParsePolicy converts a configuration value to a Policy. An empty value
// selects FailFast.
func ParsePolicy(value string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(value))); p {
	case "":
		return FailFast, nil
	case FailFast, Skip:
		return p, nil
	default:
		return "", apperr.Configuration("failure-policy", fmt.Sprintf("unknown policy %q (want %q or %q)", value, FailFast, Skip))
	}
}

// Pipeline loads profiles in batches. It is safe for concurrent use once
// built.
type Pipeline struct {
	builder     *profile.Builder
	ranker      *matching.Ranker
	policy      Policy
	concurrency int
	filters     []filtering.Filter
	filterCfg   *filtering.Config
	metrics     *metrics.Manager
	logger      *zap.Logger
	readText    func(path string) (string, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithPolicy(p Policy) Option {
	return func(pl *Pipeline) {
		if p != "" {
			pl.policy = p
		}
	}
}

// WithConcurrency bounds the number of resumes processed at once.
func WithConcurrency(n int) Option {
	return func(pl *Pipeline) {
		if n > 0 {
			pl.concurrency = n
		}
	}
}

// WithFilters replaces the default source filters used by LoadDirectory.
func WithFilters(cfg *filtering.Config, steps ...filtering.Filter) Option {
	return func(pl *Pipeline) {
		pl.filterCfg = cfg
		if steps != nil {
			pl.filters = steps
		}
	}
}

// WithRanker replaces the default ranker.
func WithRanker(r *matching.Ranker) Option {
	return func(pl *Pipeline) {
		if r != nil {
			pl.ranker = r
		}
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(pl *Pipeline) { pl.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(pl *Pipeline) {
		if l != nil {
			pl.logger = l
		}
	}
}

// WithTextReader replaces the document reader, which defaults to extract.Text.
func WithTextReader(fn func(path string) (string, error)) Option {
	return func(pl *Pipeline) {
		if fn != nil {
			pl.readText = fn
		}
	}
}

// New builds a Pipeline around a profile builder.
func New(builder *profile.Builder, opts ...Option) *Pipeline {
	p := &Pipeline{
		builder:     builder,
		ranker:      matching.NewRanker(matching.DefaultWeights()),
		policy:      FailFast,
		concurrency: 1,
		filters:     filtering.Default(),
		filterCfg:   &filtering.Config{},
		logger:      zap.NewNop(),
		readText:    extract.Text,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoadJob reads and profiles the job document at path.
func (p *Pipeline) LoadJob(ctx context.Context, path string) (*profile.JobProfile, error) {
	start := time.Now()

	text, err := p.readText(path)
	if err == nil {
		var job *profile.JobProfile
		if job, err = p.builder.BuildJob(ctx, path, text); err == nil {
			p.metrics.SourceProcessed(metrics.KindJob, time.Since(start))
			p.logger.Info("job profile built",
				zap.String(logger.FieldSource, path),
				zap.Int("required_skills", job.RequiredSkills.Len()),
				zap.Int("preferred_skills", job.PreferredSkills.Len()),
			)
			return job, nil
		}
	}

	p.metrics.SourceFailed(metrics.KindJob, apperr.Kind(err))
	return nil, fmt.Errorf("loading job: %w", err)
}

// LoadDirectory profiles every resume file directly inside dir. Files are
// filtered first and processed in name order; results keep that order.
func (p *Pipeline) LoadDirectory(ctx context.Context, dir string) (*Report, error) {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, apperr.Configuration(dir, "resume directory not found")
	case err != nil:
		return nil, fmt.Errorf("reading resume directory: %w", err)
	case !info.IsDir():
		return nil, apperr.Configuration(dir, "not a directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading resume directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	if len(paths) == 0 {
		return nil, apperr.Configuration(dir, "no resumes found")
	}

	p.logger.Debug("source filters", zap.Any("filters", filtering.Describe(p.filters)))

	sources, err := filtering.Run(ctx, p.filterCfg, filtering.Deps{Logger: p.logger}, p.filters, filtering.NewSources(paths...))
	if err != nil {
		return nil, fmt.Errorf("filtering resumes: %w", err)
	}
	if sources.Len() == 0 {
		return nil, apperr.Configuration(dir, "no resumes left after filtering")
	}

	items := make([]item, 0, sources.Len())
	for _, path := range sources.Items {
		items = append(items, item{source: path})
	}

	return p.process(ctx, metrics.KindFile, items, func(ctx context.Context, it item) (*profile.CandidateProfile, error) {
		text, err := p.readText(it.source)
		if err != nil {
			return nil, err
		}
		return p.builder.BuildCandidate(ctx, profile.CandidateInput{Source: it.source, Text: text})
	})
}

// LoadDataset profiles every row of a CSV or XLSX dataset. Rows with empty text
// are per-item extraction failures.
func (p *Pipeline) LoadDataset(ctx context.Context, path string, opts dataset.Options) (*Report, error) {
	records, err := dataset.Load(path, opts)
	if err != nil {
		p.metrics.SourceFailed(metrics.KindDataset, apperr.Kind(err))
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	items := make([]item, 0, len(records))
	for _, rec := range records {
		items = append(items, item{source: rec.Source(path), text: rec.Text, name: rec.Name, row: rec.Row})
	}

	return p.process(ctx, metrics.KindDataset, items, func(ctx context.Context, it item) (*profile.CandidateProfile, error) {
		return p.builder.BuildCandidate(ctx, profile.CandidateInput{
			Source: it.source,
			Text:   it.text,
			Name:   it.name,
			Row:    it.row,
		})
	})
}

// Rank orders the candidates of a report against the job.
func (p *Pipeline) Rank(job *profile.JobProfile, report *Report, topN int) []matching.Result {
	results := p.ranker.Rank(job, report.Candidates(), topN)

	scores := make([]float64, 0, len(results))
	for _, r := range results {
		scores = append(scores, r.FitScore)
	}
	p.metrics.Ranked(scores...)

	p.logger.Info("candidates ranked",
		zap.Int("candidates", len(report.Candidates())),
		zap.Int("returned", len(results)),
	)
	return results
}

type item struct {
	source string
	text   string
	name   string
	row    int
}

type buildFunc func(ctx context.Context, it item) (*profile.CandidateProfile, error)

// process builds every item with bounded concurrency. Under FailFast no item
// after the first failure is started, and items before it always finish, so
// the reported failure is the same as in a sequential run.
func (p *Pipeline) process(ctx context.Context, kind string, items []item, build buildFunc) (*Report, error) {
	results := make([]Result, len(items))
	var firstFailure atomic.Int64
	firstFailure.Store(int64(len(items)))

	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, it := range items {
		if p.policy == FailFast && int64(i) > firstFailure.Load() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			results[i] = p.buildOne(ctx, kind, it, build)
			if results[i].Err != nil && p.policy == FailFast {
				for {
					cur := firstFailure.Load()
					if int64(i) >= cur || firstFailure.CompareAndSwap(cur, int64(i)) {
						break
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Results: results}
	if p.policy == FailFast {
		if idx := firstFailure.Load(); idx < int64(len(items)) {
			report.Results = results[:idx+1]
			failed := results[idx]
			return report, fmt.Errorf("processing %s: %w", failed.Source, failed.Err)
		}
	}

	if n := len(report.Failures()); n > 0 {
		p.logger.Warn("some resumes were skipped",
			zap.Int("failed", n),
			zap.Int("succeeded", len(report.Candidates())),
		)
	}
	return report, nil
}

func (p *Pipeline) buildOne(ctx context.Context, kind string, it item, build buildFunc) Result {
	start := time.Now()

	cand, err := build(ctx, it)
	if err != nil {
		p.metrics.SourceFailed(kind, apperr.Kind(err))
		if p.policy == Skip {
			p.logger.Warn("skipping resume",
				zap.String(logger.FieldSource, it.source),
				zap.String("error_kind", apperr.Kind(err)),
				zap.Error(err),
			)
		}
		return Result{Source: it.source, Err: err}
	}

	p.metrics.SourceProcessed(kind, time.Since(start))
	return Result{Source: it.source, Candidate: cand}
}
