package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/profile"
)

func strPtr(s string) *string { return &s }

func sampleResults() []matching.Result {
	return []matching.Result{
		{
			CandidateID: "id-1",
			Name:        strPtr("Jane Doe"),
			FitScore:    82.5,
			Components: matching.ComponentScores{
				SkillMatch:          1,
				ExperienceAlignment: 1,
				EducationMatch:      1,
				CertificationsMatch: 1,
				SemanticSimilarity:  0.16666,
			},
			MatchedSkills:           []string{"docker", "go"},
			MissingRequiredSkills:   []string{},
			NiceToHaveMissingSkills: []string{"terraform"},
			Rationale:               "Strong skill overlap (100%) including docker, go.",
		},
		{
			CandidateID:             "id-2",
			FitScore:                12,
			MatchedSkills:           []string{},
			MissingRequiredSkills:   []string{"docker", "go"},
			NiceToHaveMissingSkills: []string{},
		},
	}
}

func TestWriteJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResults()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)

	first := decoded[0]
	for _, key := range []string{
		"candidate_id", "name", "fit_score_0_100", "components",
		"matched_skills", "missing_required_skills", "nice_to_have_missing_skills", "rationale",
	} {
		assert.Contains(t, first, key)
	}
	assert.Equal(t, 82.5, first["fit_score_0_100"])
	assert.Nil(t, decoded[1]["name"])

	components := first["components"].(map[string]any)
	assert.Len(t, components, 5)
	assert.Contains(t, components, "semantic_similarity")
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	job := &profile.JobProfile{
		Title:              strPtr("Senior Go Engineer"),
		RequiredSkills:     profile.NewSet("go", "docker"),
		PreferredSkills:    profile.NewSet("terraform"),
		MinYearsExperience: func() *float64 { v := 5.0; return &v }(),
	}

	path, err := WriteXLSX(filepath.Join(t.TempDir(), "ranking"), Workbook{
		Job:       job,
		Results:   sampleResults(),
		Skipped:   []Skipped{{Source: "broken.pdf", Error: "unreadable pdf document"}},
		Generated: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Ranking", "Job", "Skipped"}, f.GetSheetList())

	rows, err := f.GetRows("Ranking")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Fit Score", rows[0][3])
	assert.Equal(t, []string{"1", "id-1", "Jane Doe", "82.50"}, rows[1][:4])
	assert.Equal(t, "0.167", rows[1][8])
	assert.Equal(t, "docker, go", rows[1][9])
	assert.Equal(t, "terraform", rows[1][11])
	assert.Equal(t, "", rows[2][2])

	jobRows, err := f.GetRows("Job")
	require.NoError(t, err)
	assert.Equal(t, []string{"Generated", "2026-01-02 03:04:05"}, jobRows[0])
	assert.Equal(t, []string{"Title", "Senior Go Engineer"}, jobRows[1])
	assert.Equal(t, []string{"Minimum Years", "5"}, jobRows[2])
	assert.Equal(t, []string{"Required Skills", "docker, go"}, jobRows[3])

	skipped, err := f.GetRows("Skipped")
	require.NoError(t, err)
	assert.Equal(t, []string{"broken.pdf", "unreadable pdf document"}, skipped[1])
}

func TestWriteXLSXWithoutSkipped(t *testing.T) {
	path, err := WriteXLSX(filepath.Join(t.TempDir(), "out.XLSX"), Workbook{})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Ranking", "Job"}, f.GetSheetList())
}

func TestScoreBand(t *testing.T) {
	assert.Equal(t, 0, scoreBand(100))
	assert.Equal(t, 0, scoreBand(75))
	assert.Equal(t, 1, scoreBand(74.99))
	assert.Equal(t, 2, scoreBand(25))
	assert.Equal(t, 3, scoreBand(24.99))
	assert.Equal(t, 3, scoreBand(-0.5))
}
