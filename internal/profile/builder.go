package profile

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/apperr"
	"github.com/spigell/resume-matcher/internal/logger"
)

// Builder assembles profiles from raw text using an injected Extractor.
type Builder struct {
	extractor Extractor
	maskPII   bool
	newID     func() string
	logger    *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithMaskPII controls whether candidate email and phone are dropped after
// contact extraction. Masking is on by default.
func WithMaskPII(mask bool) Option {
	return func(b *Builder) { b.maskPII = mask }
}

// WithIDGenerator replaces the random UUID candidate ids.
func WithIDGenerator(fn func() string) Option {
	return func(b *Builder) {
		if fn != nil {
			b.newID = fn
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.logger = logger.WithFields(l) }
}

// NewBuilder creates a Builder around extractor.
func NewBuilder(extractor Extractor, opts ...Option) *Builder {
	b := &Builder{
		extractor: extractor,
		maskPII:   true,
		newID:     uuid.NewString,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildJob builds a JobProfile from the text of a job description. source is
// used in error messages only.
func (b *Builder) BuildJob(ctx context.Context, source, text string) (*JobProfile, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Extraction(source, "no text extracted", nil)
	}

	feats, err := b.extract(ctx, source, text)
	if err != nil {
		return nil, err
	}

	required, preferred := b.splitSkills(text, feats.Skills)

	job := &JobProfile{
		RawText:                text,
		Title:                  extractTitle(text),
		RoleSummary:            extractRoleSummary(text),
		RequiredSkills:         required,
		PreferredSkills:        preferred,
		ExperienceExpectation:  extractExperienceExpectation(text),
		MinYearsExperience:     extractYears(text),
		EducationRequirements:  extractEducationRequirements(text),
		CertificationsRequired: copySet(feats.Certifications),
		Embedding:              feats.Embedding,
	}

	b.logger.Debug("job profile built",
		zap.String("source", source),
		zap.Int("required_skills", job.RequiredSkills.Len()),
		zap.Int("preferred_skills", job.PreferredSkills.Len()),
		zap.Bool("has_embedding", job.Embedding != nil),
	)

	return job, nil
}

// CandidateInput is one resume to build a profile from.
type CandidateInput struct {
	// Source is the file path or dataset row reference.
	Source string
	Text   string
	// Name overrides the name derived from Source when set.
	Name string
	// Row is the 1-based dataset row, or 0 for files. Rows never derive a
	// name from Source.
	Row int
}

// BuildCandidate builds a CandidateProfile from the text of a resume.
func (b *Builder) BuildCandidate(ctx context.Context, in CandidateInput) (*CandidateProfile, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, apperr.Extraction(in.Source, "no text extracted", nil)
	}

	feats, err := b.extract(ctx, in.Source, in.Text)
	if err != nil {
		return nil, err
	}

	email, phone := extractContact(in.Text)
	if b.maskPII {
		email, phone = nil, nil
	}

	var name *string
	if in.Row == 0 {
		name = nameFromSource(in.Source)
	}
	if n := strings.TrimSpace(in.Name); n != "" {
		name = &n
	}

	education := make([]Education, 0, len(feats.Degrees))
	for _, d := range feats.Degrees {
		education = append(education, Education{Degree: d})
	}

	cand := &CandidateProfile{
		ID:                   b.newID(),
		Source:               in.Source,
		Name:                 name,
		Email:                email,
		Phone:                phone,
		Skills:               copySet(feats.Skills),
		Certifications:       copySet(feats.Certifications),
		Education:            education,
		TotalYearsExperience: extractYears(in.Text),
		Embedding:            feats.Embedding,
		RawText:              in.Text,
	}

	b.logger.Debug("candidate profile built",
		append(logger.CandidateFields(cand.ID, in.Source),
			zap.Int("skills", cand.Skills.Len()),
			zap.Int("degrees", len(cand.Education)),
			zap.Bool("has_embedding", cand.Embedding != nil),
		)...,
	)

	return cand, nil
}

func (b *Builder) extract(ctx context.Context, source, text string) (Features, error) {
	feats, err := b.extractor.Extract(ctx, text)
	if err != nil {
		if apperr.IsExtraction(err) {
			return Features{}, err
		}
		return Features{}, apperr.Extraction(source, "extracting features", err)
	}
	return feats, nil
}

// splitSkills moves skills that only appear in nice-to-have lines into the
// preferred set. Without a skill detector every skill is required.
func (b *Builder) splitSkills(text string, all Set) (required, preferred Set) {
	required = copySet(all)
	preferred = make(Set)

	detector, ok := b.extractor.(skillDetector)
	if !ok {
		return required, preferred
	}

	main, pref := splitPreferred(text)
	if strings.TrimSpace(pref) == "" {
		return required, preferred
	}

	preferredOnly := detector.DetectSkills(pref).Minus(detector.DetectSkills(main))
	for skill := range preferredOnly {
		if !required.Has(skill) {
			continue
		}
		delete(required, skill)
		preferred[skill] = struct{}{}
	}
	return required, preferred
}

func copySet(s Set) Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
