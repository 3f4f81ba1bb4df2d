package export

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/profile"
)

const (
	rankingSheet = "Ranking"
	jobSheet     = "Job"
	skippedSheet = "Skipped"
)

var rankingHeader = []any{
	"Rank", "Candidate ID", "Name", "Fit Score",
	"Skill Match", "Experience", "Education", "Certifications", "Semantic",
	"Matched Skills", "Missing Required", "Missing Preferred", "Rationale",
}

// Score bands, highest first, with their fill colours.
var scoreBands = []struct {
	min   float64
	color string
}{
	{75, "C6EFCE"},
	{50, "FFEB9C"},
	{25, "F8CBAD"},
	{0, "FFC7CE"},
}

// Skipped is a source that did not make it into the ranking.
type Skipped struct {
	Source string
	Error  string
}

// Workbook is the content of an XLSX report.
type Workbook struct {
	Job       *profile.JobProfile
	Results   []matching.Result
	Skipped   []Skipped
	Generated time.Time
}

// WriteXLSX saves the workbook to path, adding the .xlsx extension if missing.
// It returns the path written.
func WriteXLSX(path string, wb Workbook) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rankingSheet); err != nil {
		return "", err
	}
	if err := writeRanking(f, wb.Results); err != nil {
		return "", fmt.Errorf("writing %s sheet: %w", rankingSheet, err)
	}

	if _, err := f.NewSheet(jobSheet); err != nil {
		return "", err
	}
	if err := writeJob(f, wb.Job, wb.Generated); err != nil {
		return "", fmt.Errorf("writing %s sheet: %w", jobSheet, err)
	}

	if len(wb.Skipped) > 0 {
		if _, err := f.NewSheet(skippedSheet); err != nil {
			return "", err
		}
		if err := writeSkipped(f, wb.Skipped); err != nil {
			return "", fmt.Errorf("writing %s sheet: %w", skippedSheet, err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving %q: %w", path, err)
	}
	return path, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeRanking(f *excelize.File, results []matching.Result) error {
	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := writeRow(f, rankingSheet, 1, rankingHeader); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(rankingHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(rankingSheet, "A1", last, header); err != nil {
		return err
	}

	bandStyles := make([]int, len(scoreBands))
	for i, band := range scoreBands {
		if bandStyles[i], err = f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{band.color}, Pattern: 1},
			Font:      &excelize.Font{Bold: true},
			NumFmt:    2,
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}); err != nil {
			return err
		}
	}

	for i, r := range results {
		row := i + 2
		name := ""
		if r.Name != nil {
			name = *r.Name
		}
		c := r.Components
		values := []any{
			i + 1, r.CandidateID, name, r.FitScore,
			round3(c.SkillMatch), round3(c.ExperienceAlignment), round3(c.EducationMatch),
			round3(c.CertificationsMatch), round3(c.SemanticSimilarity),
			strings.Join(r.MatchedSkills, ", "),
			strings.Join(r.MissingRequiredSkills, ", "),
			strings.Join(r.NiceToHaveMissingSkills, ", "),
			r.Rationale,
		}
		if err := writeRow(f, rankingSheet, row, values); err != nil {
			return err
		}

		cell, err := excelize.CoordinatesToCellName(4, row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(rankingSheet, cell, cell, bandStyles[scoreBand(r.FitScore)]); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 6, "B": 38, "C": 24, "D": 10, "E": 11, "F": 11, "G": 11, "H": 13, "I": 10, "J": 40, "K": 30, "L": 30, "M": 90}
	for col, w := range widths {
		if err := f.SetColWidth(rankingSheet, col, col, w); err != nil {
			return err
		}
	}

	return f.SetPanes(rankingSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// scoreBand returns the index in scoreBands for a fit score.
func scoreBand(score float64) int {
	for i, band := range scoreBands {
		if score >= band.min {
			return i
		}
	}
	return len(scoreBands) - 1
}

func writeJob(f *excelize.File, job *profile.JobProfile, generated time.Time) error {
	label, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if generated.IsZero() {
		generated = time.Now()
	}

	rows := [][]any{{"Generated", generated.Format("2006-01-02 15:04:05")}}
	if job != nil {
		title := ""
		if job.Title != nil {
			title = *job.Title
		}
		minYears := "-"
		if job.MinYearsExperience != nil {
			minYears = fmt.Sprintf("%g", *job.MinYearsExperience)
		}
		degrees := make([]string, 0, len(job.EducationRequirements))
		for _, d := range job.EducationRequirements {
			degrees = append(degrees, string(d))
		}
		rows = append(rows,
			[]any{"Title", title},
			[]any{"Minimum Years", minYears},
			[]any{"Required Skills", strings.Join(job.RequiredSkills.Sorted(), ", ")},
			[]any{"Preferred Skills", strings.Join(job.PreferredSkills.Sorted(), ", ")},
			[]any{"Education", strings.Join(degrees, ", ")},
			[]any{"Certifications", strings.Join(job.CertificationsRequired.Sorted(), ", ")},
		)
	}

	for i, values := range rows {
		if err := writeRow(f, jobSheet, i+1, values); err != nil {
			return err
		}
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetCellStyle(jobSheet, cell, cell, label); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(jobSheet, "A", "A", 20); err != nil {
		return err
	}
	return f.SetColWidth(jobSheet, "B", "B", 80)
}

func writeSkipped(f *excelize.File, skipped []Skipped) error {
	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := writeRow(f, skippedSheet, 1, []any{"Source", "Error"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(skippedSheet, "A1", "B1", header); err != nil {
		return err
	}
	for i, s := range skipped {
		if err := writeRow(f, skippedSheet, i+2, []any{s.Source, s.Error}); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(skippedSheet, "A", "A", 40); err != nil {
		return err
	}
	return f.SetColWidth(skippedSheet, "B", "B", 80)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
