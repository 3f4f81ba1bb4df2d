// Package features finds skills, degrees and certifications in raw text and
// attaches an embedding produced by a pluggable Embedder.
package features

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/utils"
)

// DefaultMaxEmbedChars bounds the text passed to the embedder.
const DefaultMaxEmbedChars = 8000

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Extractor is a dictionary based profile.Extractor.
type Extractor struct {
	dict          *Dictionary
	embedder      Embedder
	maxEmbedChars int
	logger        *zap.Logger
}

type Option func(*Extractor)

// WithEmbedder sets the embedder. Without one, features carry no embedding.
func WithEmbedder(e Embedder) Option {
	return func(x *Extractor) { x.embedder = e }
}

func WithMaxEmbedChars(n int) Option {
	return func(x *Extractor) {
		if n > 0 {
			x.maxEmbedChars = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(x *Extractor) { x.logger = logger.WithFields(l) }
}

// NewExtractor creates an Extractor over dict.
func NewExtractor(dict *Dictionary, opts ...Option) *Extractor {
	x := &Extractor{
		dict:          dict,
		maxEmbedChars: DefaultMaxEmbedChars,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract implements profile.Extractor.
func (x *Extractor) Extract(ctx context.Context, text string) (profile.Features, error) {
	feats := profile.Features{
		Skills:         x.dict.Skills(text),
		Degrees:        x.dict.Degrees(text),
		Certifications: x.dict.Certifications(text),
	}

	if x.embedder == nil {
		return feats, nil
	}

	input := truncateRunes(text, x.maxEmbedChars)
	vec, err := x.embedder.Embed(ctx, input)
	if err != nil {
		return profile.Features{}, fmt.Errorf("embedding text: %w", err)
	}
	if len(vec) > 0 {
		feats.Embedding = vec
	}

	x.logger.Debug("features extracted",
		zap.Int("skills", feats.Skills.Len()),
		zap.Int("degrees", len(feats.Degrees)),
		zap.Int("embedding_dims", len(feats.Embedding)),
		zap.String("text_preview", utils.TruncateForLog(text, 80)),
	)

	return feats, nil
}

// DetectSkills returns the dictionary skills found in a text fragment.
func (x *Extractor) DetectSkills(text string) profile.Set {
	return x.dict.Skills(text)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
