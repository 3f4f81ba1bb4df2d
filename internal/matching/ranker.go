package matching

import (
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/profile"
)

// Ranker scores, explains and orders candidates for one job.
type Ranker struct {
	scorer  *Scorer
	weights Weights
	workers int
	logger  *zap.Logger
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker)

// WithScorer replaces the default Scorer.
func WithScorer(s *Scorer) RankerOption {
	return func(r *Ranker) {
		if s != nil {
			r.scorer = s
		}
	}
}

// WithWorkers scores up to n candidates in parallel. Values below 2 keep
// scoring sequential. The output order does not depend on n.
func WithWorkers(n int) RankerOption {
	return func(r *Ranker) {
		r.workers = n
	}
}

// WithLogger attaches a logger for per-candidate debug output.
func WithLogger(l *zap.Logger) RankerOption {
	return func(r *Ranker) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRanker builds a Ranker with the given weights.
func NewRanker(weights Weights, opts ...RankerOption) *Ranker {
	r := &Ranker{
		scorer:  NewScorer(),
		weights: weights,
		workers: 1,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank orders candidates with the given weights using a sequential Ranker.
func Rank(job *profile.JobProfile, candidates []*profile.CandidateProfile, topN int, weights Weights) []Result {
	return NewRanker(weights).Rank(job, candidates, topN)
}

// Evaluate produces the Result of a single candidate.
func (r *Ranker) Evaluate(job *profile.JobProfile, cand *profile.CandidateProfile) Result {
	outcome := r.scorer.Score(job, cand)
	res := Result{
		CandidateID:             cand.ID,
		Name:                    cand.Name,
		FitScore:                round2(Aggregate(outcome.Components, r.weights)),
		Components:              outcome.Components,
		MatchedSkills:           outcome.Matched,
		MissingRequiredSkills:   outcome.MissingRequired,
		NiceToHaveMissingSkills: outcome.MissingPreferred,
		Rationale:               Explain(outcome),
	}

	r.logger.Debug("candidate scored",
		append(logger.CandidateFields(cand.ID, cand.Source),
			zap.Float64("fit_score", res.FitScore),
			zap.Float64("skill_match", outcome.Components.SkillMatch),
			zap.Float64("semantic_similarity", outcome.Components.SemanticSimilarity),
		)...,
	)
	return res
}

// Rank returns the topN best candidates, highest fit score first. Candidates
// with equal scores keep their input order. A non-positive topN yields an
// empty result; a topN above the candidate count returns every candidate.
func (r *Ranker) Rank(job *profile.JobProfile, candidates []*profile.CandidateProfile, topN int) []Result {
	if topN <= 0 || len(candidates) == 0 {
		return []Result{}
	}

	results := make([]Result, len(candidates))
	if r.workers < 2 {
		for i, cand := range candidates {
			results[i] = r.Evaluate(job, cand)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.workers)
		for i, cand := range candidates {
			g.Go(func() error {
				results[i] = r.Evaluate(job, cand)
				return nil
			})
		}
		_ = g.Wait()
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FitScore > results[j].FitScore
	})

	if topN < len(results) {
		results = results[:topN]
	}
	return results
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
