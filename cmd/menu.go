package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/export"
	"github.com/spigell/resume-matcher/internal/filtering"
	"github.com/spigell/resume-matcher/internal/matching"
)

const (
	PromptPrintJSON      = "Print results as JSON"
	PromptExportXLSX     = "Export results to XLSX"
	PromptShowRationale  = "Show candidate rationale"
	PromptAppendExcluded = "Append a candidate to exclude file"
	PromptExit           = "Exit"
	PromptBack           = "back"
)

var errExit = errors.New("exit requested")

func menu(s *session) *promptui.Select {
	items := []string{PromptPrintJSON, PromptExportXLSX, PromptShowRationale}
	if s.excludable && s.config.ExcludeFile != "" && len(s.results) > 0 {
		items = append(items, PromptAppendExcluded)
	}

	return &promptui.Select{
		Label: fmt.Sprintf("%d candidates ranked. What next?", len(s.results)),
		Items: append(items, PromptExit),
	}
}

func (s *session) handle(action string) error {
	switch action {
	case PromptPrintJSON:
		return export.WriteJSON(os.Stdout, s.results)
	case PromptExportXLSX:
		_, err := s.writeXLSX(s.config.Output.Path)
		return err
	case PromptShowRationale:
		idx, err := s.chooseCandidate("Choose a candidate and press ENTER")
		if err != nil || idx < 0 {
			return err
		}
		printRationale(s.results[idx], idx+1)
		return nil
	case PromptAppendExcluded:
		idx, err := s.chooseCandidate("Choose a candidate to exclude")
		if err != nil || idx < 0 {
			return err
		}
		return s.exclude(idx)
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// chooseCandidate returns the index of the selected result, or -1 for back.
func (s *session) chooseCandidate(label string) (int, error) {
	items := make([]string, 0, len(s.results)+1)
	for i, r := range s.results {
		items = append(items, fmt.Sprintf("%d. %s (%.2f)", i+1, displayName(r), r.FitScore))
	}

	candidatePrompt := promptui.Select{
		Label: label,
		Items: append(items, PromptBack),
	}

	idx, selected, err := candidatePrompt.Run()
	if err != nil {
		return -1, err
	}
	if selected == PromptBack {
		return -1, nil
	}
	return idx, nil
}

func (s *session) exclude(idx int) error {
	r := s.results[idx]
	cand, ok := s.report.Candidate(r.CandidateID)
	if !ok || cand.Source == "" {
		return fmt.Errorf("there is no source for candidate %s", r.CandidateID)
	}

	reason := fmt.Sprintf("excluded after ranking with fit score %.2f", r.FitScore)
	if err := filtering.AppendExcludedSource(s.config.ExcludeFile, cand.Source, reason); err != nil {
		return err
	}

	s.logger.Info("appended to exclude file",
		zap.String("filename", s.config.ExcludeFile),
		zap.String("source", cand.Source),
	)

	s.results = append(s.results[:idx:idx], s.results[idx+1:]...)
	return nil
}

func displayName(r matching.Result) string {
	if r.Name != nil && strings.TrimSpace(*r.Name) != "" {
		return *r.Name
	}
	return r.CandidateID
}

func printRationale(r matching.Result, rank int) {
	c := r.Components
	fmt.Printf("#%d %s: %.2f\n", rank, displayName(r), r.FitScore)
	fmt.Printf("  skills %.2f, experience %.2f, education %.2f, certifications %.2f, semantic %.2f\n",
		c.SkillMatch, c.ExperienceAlignment, c.EducationMatch, c.CertificationsMatch, c.SemanticSimilarity)
	fmt.Printf("  %s\n", r.Rationale)
}
