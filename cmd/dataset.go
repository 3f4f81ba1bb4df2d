package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-matcher/internal/pipeline"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset --job JOB FILE",
	Short: "Rank the resumes of a CSV or XLSX dataset against a job description",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, batch{
			load: func(ctx context.Context, p *pipeline.Pipeline, config *Config) (*pipeline.Report, error) {
				return p.LoadDataset(ctx, args[0], config.Dataset)
			},
		})
	},
}

func init() {
	rootCmd.AddCommand(datasetCmd)

	datasetCmd.Flags().String("job", "", "job description document (.pdf, .doc, .docx)")
	datasetCmd.MarkFlagRequired("job")
	datasetCmd.Flags().String("text-column", "", "column holding the resume text (default is Resume)")
	datasetCmd.Flags().String("name-column", "", "column holding the candidate name")
	datasetCmd.Flags().String("sheet", "", "xlsx sheet to read (default is the first one)")
	datasetCmd.Flags().Int("max-rows", 0, "read at most this many rows, 0 reads all")

	viper.BindPFlag("dataset.text-column", datasetCmd.Flags().Lookup("text-column"))
	viper.BindPFlag("dataset.name-column", datasetCmd.Flags().Lookup("name-column"))
	viper.BindPFlag("dataset.sheet", datasetCmd.Flags().Lookup("sheet"))
	viper.BindPFlag("dataset.max-rows", datasetCmd.Flags().Lookup("max-rows"))
}
