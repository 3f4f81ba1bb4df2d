// Package ai selects and builds the embedding provider used for semantic
// similarity.
package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai/gemini"
	"github.com/spigell/resume-matcher/internal/apperr"
	"github.com/spigell/resume-matcher/internal/features"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/secrets"
)

// Embedding providers.
const (
	ProviderNone    = "none"
	ProviderHashing = "hashing"
	ProviderGemini  = "gemini"
)

// GeminiAPIKeyEnv is consulted when no key or key file is configured.
const GeminiAPIKeyEnv = "GEMINI_API_KEY"

// GeminiConfig configures the Gemini embedding provider.
type GeminiConfig struct {
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
	MaxRetries int    `mapstructure:"max-retries"`
}

// Config selects an embedding provider.
type Config struct {
	Provider   string       `mapstructure:"provider"`
	Dimensions int          `mapstructure:"dimensions"`
	Gemini     GeminiConfig `mapstructure:"gemini"`
}

// NewEmbedder builds the configured provider. The none provider returns a nil
// Embedder, which leaves profiles without embeddings and semantic similarity
// at 0.
func NewEmbedder(ctx context.Context, cfg Config, log *zap.Logger) (features.Embedder, error) {
	if log == nil {
		log = zap.NewNop()
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "", ProviderHashing:
		e := features.NewHashingEmbedder(cfg.Dimensions)
		log.Debug("embedding provider ready",
			append(logger.ProviderFields(ProviderHashing, ""), zap.Int("dimensions", e.Dimensions()))...)
		return e, nil
	case ProviderNone:
		log.Debug("embeddings disabled")
		return nil, nil
	case ProviderGemini:
		key, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   GeminiAPIKeyEnv,
		})
		if err != nil {
			return nil, apperr.Configuration("embeddings.gemini.api-key", err.Error())
		}

		e, err := gemini.NewEmbedder(ctx, key,
			gemini.WithModel(cfg.Gemini.Model),
			gemini.WithDimensions(cfg.Dimensions),
			gemini.WithMaxRetries(cfg.Gemini.MaxRetries),
			gemini.WithLogger(log),
		)
		if err != nil {
			return nil, fmt.Errorf("creating gemini embedder: %w", err)
		}
		log.Debug("embedding provider ready", logger.ProviderFields(ProviderGemini, e.Model())...)
		return e, nil
	default:
		return nil, apperr.Configuration("embeddings.provider",
			fmt.Sprintf("unknown provider %q (want %s, %s or %s)", cfg.Provider, ProviderNone, ProviderHashing, ProviderGemini))
	}
}
