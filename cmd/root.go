package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/dataset"
	"github.com/spigell/resume-matcher/internal/features"
)

const (
	app       = "resume-matcher"
	envPrefix = "RESUME_MATCHER"
)

type Config struct {
	TopN          int             `mapstructure:"top-n"`
	MaskPII       bool            `mapstructure:"mask-pii"`
	FailurePolicy string          `mapstructure:"failure-policy"`
	Concurrency   int             `mapstructure:"concurrency"`
	SkillMatching string          `mapstructure:"skill-matching"`
	ExcludeFile   string          `mapstructure:"exclude-file"`
	MetricsFile   string          `mapstructure:"metrics-file"`
	Interactive   bool            `mapstructure:"interactive"`
	Filters       FiltersConfig   `mapstructure:"filters"`
	Weights       map[string]any  `mapstructure:"weights"`
	Extractor     ExtractorConfig `mapstructure:"extractor"`
	Embeddings    ai.Config       `mapstructure:"embeddings"`
	Output        OutputConfig    `mapstructure:"output"`
	Dataset       dataset.Options `mapstructure:"dataset"`
}

type FiltersConfig struct {
	// Disabled names source filters to skip, e.g. duplicates.
	Disabled []string `mapstructure:"disabled"`
}

type ExtractorConfig struct {
	SkillsFile    string `mapstructure:"skills-file"`
	MaxEmbedChars int    `mapstructure:"max-embed-chars"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher ranks resumes against a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	viper.SetDefault("top-n", 10)
	viper.SetDefault("mask-pii", true)
	viper.SetDefault("failure-policy", "fail-fast")
	viper.SetDefault("concurrency", 4)
	viper.SetDefault("skill-matching", "substring")
	viper.SetDefault("filters.disabled", []string{})
	viper.SetDefault("extractor.skills-file", "")
	viper.SetDefault("extractor.max-embed-chars", features.DefaultMaxEmbedChars)
	viper.SetDefault("embeddings.provider", ai.ProviderHashing)
	viper.SetDefault("embeddings.dimensions", 256)
	viper.SetDefault("embeddings.gemini.api-key-file", "")
	viper.SetDefault("embeddings.gemini.model", "")
	viper.SetDefault("embeddings.gemini.max-retries", 0)
	viper.SetDefault("output.format", formatJSON)
	viper.SetDefault("output.path", "")
	viper.SetDefault("dataset.text-column", dataset.DefaultTextColumn)
	viper.SetDefault("dataset.name-column", "")
	viper.SetDefault("dataset.sheet", "")
	viper.SetDefault("dataset.max-rows", 0)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.BoolP("json", "j", false, "json format for logging")
	flags.IntP("top-n", "n", 10, "number of candidates to return")
	flags.Bool("mask-pii", true, "drop emails and phone numbers from candidate profiles")
	flags.String("failure-policy", "fail-fast", "what to do when a resume fails: fail-fast or skip")
	flags.Int("concurrency", 4, "number of resumes processed at once")
	flags.String("exclude-file", "", "json file with resumes to exclude. Default is unset.")
	flags.StringP("output", "o", "", "output file (stdout for json when unset)")
	flags.String("format", formatJSON, "output format: json or xlsx")
	flags.String("metrics-file", "", "write prometheus metrics in text format to this file")
	flags.BoolP("interactive", "i", false, "open a menu after ranking")

	for key, flag := range map[string]string{
		"debug":          "debug",
		"json":           "json",
		"top-n":          "top-n",
		"mask-pii":       "mask-pii",
		"failure-policy": "failure-policy",
		"concurrency":    "concurrency",
		"exclude-file":   "exclude-file",
		"output.path":    "output",
		"output.format":  "format",
		"metrics-file":   "metrics-file",
		"interactive":    "interactive",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatalf("binding %s flag: %v", flag, err)
		}
	}
}

func initConfig() {
	// The version command needs no configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Defaults apply without a config file unless one was asked for.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
