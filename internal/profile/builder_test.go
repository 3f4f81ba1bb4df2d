package profile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/resume-matcher/internal/apperr"
)

type stubExtractor struct {
	features Features
	err      error
	calls    int
}

func (s *stubExtractor) Extract(_ context.Context, _ string) (Features, error) {
	s.calls++
	return s.features, s.err
}

// detectingExtractor also finds skills in fragments by keyword lookup.
type detectingExtractor struct {
	stubExtractor
	known []string
}

func (d *detectingExtractor) DetectSkills(text string) Set {
	lowered := strings.ToLower(text)
	out := make(Set)
	for _, k := range d.known {
		if strings.Contains(lowered, k) {
			out[k] = struct{}{}
		}
	}
	return out
}

func fixedID() string { return "cand-1" }

func TestBuildCandidateMasksContactsByDefault(t *testing.T) {
	stub := &stubExtractor{features: Features{
		Skills:         NewSet("go", "sql"),
		Degrees:        []Degree{DegreeMaster},
		Certifications: NewSet("cka"),
		Embedding:      []float32{1, 0},
	}}
	b := NewBuilder(stub, WithIDGenerator(fixedID))

	cand, err := b.BuildCandidate(context.Background(), CandidateInput{
		Source: "resumes/jane_doe_cv.pdf",
		Text:   "Jane Doe\njane@example.com +1 555 123 4567\n6 years of Go",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cand.ID != "cand-1" {
		t.Fatalf("unexpected id: %s", cand.ID)
	}
	if cand.Email != nil || cand.Phone != nil {
		t.Fatalf("expected contacts to be masked")
	}
	if cand.Name == nil || *cand.Name != "Jane Doe" {
		t.Fatalf("unexpected name: %v", cand.Name)
	}
	if cand.TotalYearsExperience == nil || *cand.TotalYearsExperience != 6 {
		t.Fatalf("unexpected years: %v", cand.TotalYearsExperience)
	}
	if _, ok := cand.Degrees()[DegreeMaster]; !ok || len(cand.Education) != 1 {
		t.Fatalf("unexpected education: %+v", cand.Education)
	}
	if !cand.Skills.Has("go") || !cand.Certifications.Has("cka") {
		t.Fatalf("features were not copied: %+v", cand)
	}
}

func TestBuildCandidateKeepsContactsWhenMaskingDisabled(t *testing.T) {
	b := NewBuilder(&stubExtractor{}, WithMaskPII(false), WithIDGenerator(fixedID))

	cand, err := b.BuildCandidate(context.Background(), CandidateInput{
		Source: "row 3",
		Text:   "jane@example.com",
		Name:   "  Jane  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cand.Email == nil || *cand.Email != "jane@example.com" {
		t.Fatalf("expected email to be kept, got %v", cand.Email)
	}
	if cand.Name == nil || *cand.Name != "Jane" {
		t.Fatalf("expected explicit name, got %v", cand.Name)
	}
}

func TestBuildCandidateDatasetRowHasNoDerivedName(t *testing.T) {
	b := NewBuilder(&stubExtractor{}, WithIDGenerator(fixedID))

	cand, err := b.BuildCandidate(context.Background(), CandidateInput{
		Source: "resumes.csv#row2",
		Text:   "Go developer",
		Row:    2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cand.Name != nil {
		t.Fatalf("expected no name, got %q", *cand.Name)
	}
	if cand.DisplayName() != "cand-1" {
		t.Fatalf("expected id as display name, got %q", cand.DisplayName())
	}
}

func TestBuildCandidateEmptyText(t *testing.T) {
	stub := &stubExtractor{}
	b := NewBuilder(stub)

	_, err := b.BuildCandidate(context.Background(), CandidateInput{Source: "empty.pdf", Text: "  \n "})
	if !apperr.IsExtraction(err) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("extractor must not be called for empty text")
	}
}

func TestBuildWrapsExtractorFailure(t *testing.T) {
	b := NewBuilder(&stubExtractor{err: errors.New("model unavailable")})

	_, err := b.BuildJob(context.Background(), "job.pdf", "Go Engineer")
	if !apperr.IsExtraction(err) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	if !strings.Contains(err.Error(), "job.pdf") {
		t.Fatalf("expected source in error, got %q", err.Error())
	}
}

func TestBuildJob(t *testing.T) {
	extractor := &detectingExtractor{
		stubExtractor: stubExtractor{features: Features{
			Skills:         NewSet("go", "sql", "kubernetes"),
			Certifications: NewSet("cka"),
			Embedding:      []float32{0.5, 0.5},
		}},
		known: []string{"go", "sql", "kubernetes"},
	}
	b := NewBuilder(extractor)

	text := "Senior Go Engineer\nWe need 5+ years of Go and SQL. Bachelor degree required.\nNice to have:\n- Kubernetes\n- Go generics\n"
	job, err := b.BuildJob(context.Background(), "job.pdf", text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if job.Title == nil || *job.Title != "Senior Go Engineer" {
		t.Fatalf("unexpected title: %v", job.Title)
	}
	if job.MinYearsExperience == nil || *job.MinYearsExperience != 5 {
		t.Fatalf("unexpected min years: %v", job.MinYearsExperience)
	}
	if got := job.RequiredSkills.Sorted(); strings.Join(got, ",") != "go,sql" {
		t.Fatalf("unexpected required skills: %v", got)
	}
	if got := job.PreferredSkills.Sorted(); strings.Join(got, ",") != "kubernetes" {
		t.Fatalf("unexpected preferred skills: %v", got)
	}
	if len(job.EducationRequirements) != 1 || job.EducationRequirements[0] != DegreeBachelor {
		t.Fatalf("unexpected education: %v", job.EducationRequirements)
	}
	if !job.CertificationsRequired.Has("cka") {
		t.Fatalf("expected certification requirement")
	}
}

func TestBuildJobWithoutDetectorKeepsAllSkillsRequired(t *testing.T) {
	b := NewBuilder(&stubExtractor{features: Features{Skills: NewSet("go", "kubernetes")}})

	job, err := b.BuildJob(context.Background(), "job.pdf", "Go\nNice to have: Kubernetes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.RequiredSkills.Len() != 2 || job.PreferredSkills.Len() != 0 {
		t.Fatalf("unexpected split: required=%v preferred=%v", job.RequiredSkills.Sorted(), job.PreferredSkills.Sorted())
	}
}
