package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/apperr"
	"github.com/spigell/resume-matcher/internal/export"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/pipeline"
	"github.com/spigell/resume-matcher/internal/profile"
)

const (
	formatJSON = "json"
	formatXLSX = "xlsx"

	defaultXLSXPath = "ranking.xlsx"
)

// session holds the outcome of one ranking run.
type session struct {
	config     *Config
	job        *profile.JobProfile
	report     *pipeline.Report
	results    []matching.Result
	excludable bool
	logger     *zap.Logger
}

func validateOutput(out OutputConfig) error {
	switch strings.ToLower(strings.TrimSpace(out.Format)) {
	case "", formatJSON, formatXLSX:
		return nil
	default:
		return apperr.Configuration("output.format", fmt.Sprintf("unknown format %q (want %q or %q)", out.Format, formatJSON, formatXLSX))
	}
}

// write renders the results in the configured format.
func (s *session) write(out OutputConfig) error {
	if strings.EqualFold(strings.TrimSpace(out.Format), formatXLSX) {
		_, err := s.writeXLSX(out.Path)
		return err
	}
	return s.writeJSON(out.Path)
}

func (s *session) writeJSON(path string) error {
	if path == "" {
		return export.WriteJSON(os.Stdout, s.results)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}

	if err := export.WriteJSON(f, s.results); err != nil {
		f.Close()
		return fmt.Errorf("writing %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	s.logger.Info("results written", zap.String("filename", path), zap.Int("count", len(s.results)))
	return nil
}

func (s *session) writeXLSX(path string) (string, error) {
	if path == "" {
		path = defaultXLSXPath
	}

	failures := s.report.Failures()
	skipped := make([]export.Skipped, 0, len(failures))
	for _, f := range failures {
		skipped = append(skipped, export.Skipped{Source: f.Source, Error: f.Err.Error()})
	}

	written, err := export.WriteXLSX(path, export.Workbook{
		Job:       s.job,
		Results:   s.results,
		Skipped:   skipped,
		Generated: time.Now(),
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("results written", zap.String("filename", written), zap.Int("count", len(s.results)))
	return written, nil
}
