// Package profile models job and candidate profiles and builds them from raw
// text through an injected feature extractor.
package profile

import "strings"

// Degree is a normalized education level.
type Degree string

const (
	DegreeBachelor Degree = "BACHELOR"
	DegreeMaster   Degree = "MASTER"
	DegreePhD      Degree = "PHD"
	DegreeOther    Degree = "OTHER"
)

// NormalizeDegree maps free text such as "MSc" or "Doctorate" to a Degree.
func NormalizeDegree(text string) Degree {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "phd") || strings.Contains(t, "doctor"):
		return DegreePhD
	case strings.Contains(t, "master") || strings.Contains(t, "msc") || strings.Contains(t, "m.tech"):
		return DegreeMaster
	case strings.Contains(t, "bachelor") || strings.Contains(t, "bsc") || strings.Contains(t, "b.tech"):
		return DegreeBachelor
	default:
		return DegreeOther
	}
}

// Education is one entry of a candidate's education history. Empty Degree and
// nil years mean the value is unknown.
type Education struct {
	Degree      Degree `json:"degree,omitempty"`
	Field       string `json:"field_of_study,omitempty"`
	Institution string `json:"institution,omitempty"`
	StartYear   *int   `json:"start_year,omitempty"`
	EndYear     *int   `json:"end_year,omitempty"`
}

// JobProfile describes what a job asks for. It is read-only once built.
type JobProfile struct {
	RawText                string    `json:"-"`
	Title                  *string   `json:"title"`
	RoleSummary            string    `json:"role_summary,omitempty"`
	RequiredSkills         Set       `json:"required_skills"`
	PreferredSkills        Set       `json:"preferred_skills"`
	ExperienceExpectation  *string   `json:"experience_expectations"`
	MinYearsExperience     *float64  `json:"min_years_experience"`
	EducationRequirements  []Degree  `json:"education_requirements"`
	CertificationsRequired Set       `json:"certifications_required"`
	Embedding              []float32 `json:"-"`
}

// RequiredDegrees returns the education requirements as a set keyed by degree.
func (j *JobProfile) RequiredDegrees() map[Degree]struct{} {
	out := make(map[Degree]struct{}, len(j.EducationRequirements))
	for _, d := range j.EducationRequirements {
		out[d] = struct{}{}
	}
	return out
}

// CandidateProfile describes a single resume. It is read-only once built.
type CandidateProfile struct {
	ID                   string      `json:"candidate_id"`
	Source               string      `json:"source,omitempty"`
	Name                 *string     `json:"name"`
	Email                *string     `json:"email"`
	Phone                *string     `json:"phone"`
	Skills               Set         `json:"skills"`
	Certifications       Set         `json:"certifications"`
	Education            []Education `json:"education"`
	TotalYearsExperience *float64    `json:"total_years_experience"`
	Embedding            []float32   `json:"-"`
	RawText              string      `json:"-"`
}

// Degrees returns the distinct known degrees of the candidate.
func (c *CandidateProfile) Degrees() map[Degree]struct{} {
	out := make(map[Degree]struct{}, len(c.Education))
	for _, e := range c.Education {
		if e.Degree == "" {
			continue
		}
		out[e.Degree] = struct{}{}
	}
	return out
}

// DisplayName returns the candidate name or the id when the name is unknown.
func (c *CandidateProfile) DisplayName() string {
	if c.Name != nil && strings.TrimSpace(*c.Name) != "" {
		return *c.Name
	}
	return c.ID
}
