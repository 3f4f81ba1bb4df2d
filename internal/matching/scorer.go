package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/resume-matcher/internal/apperr"
	"github.com/spigell/resume-matcher/internal/profile"
)

// SkillMatching selects how required skills are compared with candidate skills.
type SkillMatching string

const (
	// SkillMatchingSubstring also covers a required skill when it contains, or
	// is contained in, a candidate skill ("sql" is covered by "mysql").
	SkillMatchingSubstring SkillMatching = "substring"
	// SkillMatchingExact covers a required skill only on identical tokens.
	SkillMatchingExact SkillMatching = "exact"
)

// ParseSkillMatching converts a configuration value to a SkillMatching mode.
// An empty value selects the substring mode.
func ParseSkillMatching(value string) (SkillMatching, error) {
	switch m := SkillMatching(strings.ToLower(strings.TrimSpace(value))); m {
	case "":
		return SkillMatchingSubstring, nil
	case SkillMatchingSubstring, SkillMatchingExact:
		return m, nil
	default:
		return "", apperr.Configuration("skill-matching", fmt.Sprintf("unknown mode %q (want %q or %q)", value, SkillMatchingSubstring, SkillMatchingExact))
	}
}

// Scorer computes component scores. It holds no mutable state and is safe for
// concurrent use.
type Scorer struct {
	skillMatching SkillMatching
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithSkillMatching sets the required-skill comparison mode.
func WithSkillMatching(m SkillMatching) ScorerOption {
	return func(s *Scorer) {
		if m != "" {
			s.skillMatching = m
		}
	}
}

// NewScorer returns a Scorer using substring skill matching unless overridden.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{skillMatching: SkillMatchingSubstring}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score evaluates one candidate against the job with the default Scorer.
func Score(job *profile.JobProfile, cand *profile.CandidateProfile) Outcome {
	return NewScorer().Score(job, cand)
}

// Score evaluates one candidate against the job. Missing optional data never
// fails: each component falls back to its documented default.
func (s *Scorer) Score(job *profile.JobProfile, cand *profile.CandidateProfile) Outcome {
	skill, matched, missingReq, missingPref := s.skillMatch(job.RequiredSkills, job.PreferredSkills, cand.Skills)
	return Outcome{
		Components: ComponentScores{
			SkillMatch:          skill,
			ExperienceAlignment: experienceAlignment(job.MinYearsExperience, cand.TotalYearsExperience),
			EducationMatch:      educationMatch(job.RequiredDegrees(), cand.Degrees()),
			CertificationsMatch: certificationsMatch(job.CertificationsRequired, cand.Certifications),
			SemanticSimilarity:  CosineSimilarity(job.Embedding, cand.Embedding),
		},
		Matched:          matched,
		MissingRequired:  missingReq,
		MissingPreferred: missingPref,
	}
}

func (s *Scorer) skillMatch(required, preferred, skills profile.Set) (float64, []string, []string, []string) {
	covered := required.Intersect(skills)
	if s.skillMatching != SkillMatchingExact {
		for r := range required {
			if covered.Has(r) {
				continue
			}
			for c := range skills {
				if strings.Contains(c, r) || strings.Contains(r, c) {
					covered[r] = struct{}{}
					break
				}
			}
		}
	}

	missingPref := preferred.Minus(skills).Sorted()
	missingReq := required.Minus(covered).Sorted()
	if required.Len() == 0 {
		return 1.0, covered.Sorted(), missingReq, missingPref
	}
	return float64(covered.Len()) / float64(required.Len()), covered.Sorted(), missingReq, missingPref
}

// experienceAlignment gives neutral credit when either side is unknown and
// saturates at 1 once the requirement is met. A non-positive requirement is
// always met.
func experienceAlignment(minYears, candYears *float64) float64 {
	if minYears == nil || candYears == nil {
		return 0.5
	}
	if *minYears <= 0 {
		return 1.0
	}
	ratio := *candYears / *minYears
	if ratio >= 1 {
		return 1.0
	}
	return math.Max(0, ratio)
}

func educationMatch(required, degrees map[profile.Degree]struct{}) float64 {
	if len(required) == 0 {
		return 1.0
	}
	if len(degrees) == 0 {
		return 0.0
	}
	overlap := 0
	for d := range degrees {
		if _, ok := required[d]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(required))
}

func certificationsMatch(required, certs profile.Set) float64 {
	if required.Len() == 0 {
		return 1.0
	}
	return float64(required.Intersect(certs).Len()) / float64(required.Len())
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|). It returns 0 when either
// vector is empty, has zero magnitude or the lengths differ. The result is
// not clamped.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
