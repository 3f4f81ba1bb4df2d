// Package matching scores candidate profiles against a job profile, combines
// the component scores into a 0-100 fit score, explains the result and ranks
// candidates.
package matching

// ComponentScores holds the five independent sub-scores of one match. Each is
// in [0, 1]; SemanticSimilarity is a raw cosine and is not clamped.
type ComponentScores struct {
	SkillMatch          float64 `json:"skill_match"`
	ExperienceAlignment float64 `json:"experience_alignment"`
	EducationMatch      float64 `json:"education_match"`
	CertificationsMatch float64 `json:"certifications_match"`
	SemanticSimilarity  float64 `json:"semantic_similarity"`
}

// Outcome is everything the scorer derives from one (job, candidate) pair.
// All skill lists are sorted.
type Outcome struct {
	Components       ComponentScores
	Matched          []string
	MissingRequired  []string
	MissingPreferred []string
}

// Result is the ranked, explained match of one candidate. It is never modified
// after it is produced.
type Result struct {
	CandidateID             string          `json:"candidate_id"`
	Name                    *string         `json:"name"`
	FitScore                float64         `json:"fit_score_0_100"`
	Components              ComponentScores `json:"components"`
	MatchedSkills           []string        `json:"matched_skills"`
	MissingRequiredSkills   []string        `json:"missing_required_skills"`
	NiceToHaveMissingSkills []string        `json:"nice_to_have_missing_skills"`
	Rationale               string          `json:"rationale"`
}
