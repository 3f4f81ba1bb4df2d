package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/apperr"
	"github.com/spigell/resume-matcher/internal/features"
	"github.com/spigell/resume-matcher/internal/filtering"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/metrics"
	"github.com/spigell/resume-matcher/internal/pipeline"
	"github.com/spigell/resume-matcher/internal/profile"
)

var rankCmd = &cobra.Command{
	Use:   "rank --job JOB RESUMES_DIR",
	Short: "Rank the resumes in a directory against a job description",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, batch{
			excludable: true,
			load: func(ctx context.Context, p *pipeline.Pipeline, _ *Config) (*pipeline.Report, error) {
				return p.LoadDirectory(ctx, args[0])
			},
		})
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().String("job", "", "job description document (.pdf, .doc, .docx)")
	rankCmd.MarkFlagRequired("job")
}

// batch describes where the resumes of a command come from.
type batch struct {
	load func(ctx context.Context, p *pipeline.Pipeline, config *Config) (*pipeline.Report, error)
	// excludable is set when results map to files that can go to the exclude file.
	excludable bool
}

// run is shared by the rank and dataset commands.
func run(cmd *cobra.Command, b batch) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the resume-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if err := validateOutput(config.Output); err != nil {
		logger.Fatal("checking output", zap.Error(err))
	}

	p, m, err := newPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the pipeline", zap.Error(err))
	}

	jobPath, _ := cmd.Flags().GetString("job")
	job, err := p.LoadJob(ctx, jobPath)
	if err != nil {
		logger.Fatal("building the job profile", zap.Error(err), zap.String("error_kind", apperr.Kind(err)))
	}

	report, err := b.load(ctx, p, config)
	if err != nil {
		logger.Fatal("building candidate profiles", zap.Error(err), zap.String("error_kind", apperr.Kind(err)))
	}

	results := p.Rank(job, report, config.TopN)

	if config.MetricsFile != "" {
		if err := m.WriteTextfile(config.MetricsFile); err != nil {
			logger.Warn("writing metrics", zap.Error(err))
		} else {
			logger.Debug("metrics written", zap.String("filename", config.MetricsFile))
		}
	}

	s := &session{
		config:     config,
		job:        job,
		report:     report,
		results:    results,
		excludable: b.excludable,
		logger:     logger,
	}

	if !config.Interactive {
		if err := s.write(config.Output); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := menu(s).Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := s.handle(action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// newPipeline wires the extractor, embedder, builder, ranker and metrics from
// the configuration.
func newPipeline(ctx context.Context, config *Config, logger *zap.Logger) (*pipeline.Pipeline, *metrics.Manager, error) {
	dict, err := loadDictionary(config.Extractor.SkillsFile)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("skills dictionary loaded", zap.Int("skills", dict.Len()))

	embedder, err := ai.NewEmbedder(ctx, config.Embeddings, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("building embedder: %w", err)
	}

	extractor := features.NewExtractor(dict,
		features.WithEmbedder(embedder),
		features.WithMaxEmbedChars(config.Extractor.MaxEmbedChars),
		features.WithLogger(logger),
	)
	builder := profile.NewBuilder(extractor,
		profile.WithMaskPII(config.MaskPII),
		profile.WithLogger(logger),
	)

	weights, err := loadWeights(config.Weights, logger)
	if err != nil {
		return nil, nil, err
	}

	skillMatching, err := matching.ParseSkillMatching(config.SkillMatching)
	if err != nil {
		return nil, nil, err
	}

	policy, err := pipeline.ParsePolicy(config.FailurePolicy)
	if err != nil {
		return nil, nil, err
	}

	ranker := matching.NewRanker(weights,
		matching.WithScorer(matching.NewScorer(matching.WithSkillMatching(skillMatching))),
		matching.WithWorkers(config.Concurrency),
		matching.WithLogger(logger),
	)

	filters, err := newFilters(config.Filters.Disabled, logger)
	if err != nil {
		return nil, nil, err
	}

	m := metrics.NewManager()

	p := pipeline.New(builder,
		pipeline.WithPolicy(policy),
		pipeline.WithConcurrency(config.Concurrency),
		pipeline.WithFilters(&filtering.Config{ExcludeFile: config.ExcludeFile}, filters...),
		pipeline.WithRanker(ranker),
		pipeline.WithMetrics(m),
		pipeline.WithLogger(logger),
	)

	return p, m, nil
}

// newFilters returns the default source filters with the named ones disabled.
func newFilters(disabled []string, logger *zap.Logger) ([]filtering.Filter, error) {
	steps := filtering.Default()
	for _, name := range disabled {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !filtering.DisableByName(steps, name, "disabled in config") {
			return nil, apperr.Configuration("filters.disabled",
				fmt.Sprintf("unknown filter %q (known: %s)", name, strings.Join(filtering.Names(steps), ", ")))
		}
		logger.Debug("source filter disabled", zap.String("name", name))
	}
	return steps, nil
}

func loadDictionary(path string) (*features.Dictionary, error) {
	if strings.TrimSpace(path) == "" {
		return features.DefaultDictionary()
	}
	return features.LoadDictionary(path)
}

// loadWeights returns the default weights unless the config has a weights
// section, which must then name all five components.
func loadWeights(raw map[string]any, logger *zap.Logger) (matching.Weights, error) {
	if raw == nil {
		return matching.DefaultWeights(), nil
	}

	w, err := matching.WeightsFromMap(raw)
	if err != nil {
		return matching.Weights{}, err
	}

	if sum := w.Sum(); sum < 0.999 || sum > 1.001 {
		logger.Debug("weights do not sum to 1, fit scores are not on a 0-100 scale",
			zap.Float64("sum", sum),
		)
	}
	return w, nil
}
