package matching

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/resume-matcher/internal/apperr"
)

// Weight keys as they appear in configuration.
const (
	KeySkillMatch          = "skill_match"
	KeyExperienceAlignment = "experience_alignment"
	KeyEducationMatch      = "education_match"
	KeyCertificationsMatch = "certifications_match"
	KeySemanticSimilarity  = "semantic_similarity"
)

// WeightKeys lists every required weight key in component order.
var WeightKeys = []string{
	KeySkillMatch,
	KeyExperienceAlignment,
	KeyEducationMatch,
	KeyCertificationsMatch,
	KeySemanticSimilarity,
}

// Weights scales each component in the aggregate. They are expected to sum to
// 1 so that the fit score stays within 0-100; this is not enforced.
type Weights struct {
	SkillMatch          float64 `mapstructure:"skill_match" json:"skill_match"`
	ExperienceAlignment float64 `mapstructure:"experience_alignment" json:"experience_alignment"`
	EducationMatch      float64 `mapstructure:"education_match" json:"education_match"`
	CertificationsMatch float64 `mapstructure:"certifications_match" json:"certifications_match"`
	SemanticSimilarity  float64 `mapstructure:"semantic_similarity" json:"semantic_similarity"`
}

// DefaultWeights returns 0.40 / 0.25 / 0.15 / 0.05 / 0.15.
func DefaultWeights() Weights {
	return Weights{
		SkillMatch:          0.40,
		ExperienceAlignment: 0.25,
		EducationMatch:      0.15,
		CertificationsMatch: 0.05,
		SemanticSimilarity:  0.15,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.SkillMatch + w.ExperienceAlignment + w.EducationMatch + w.CertificationsMatch + w.SemanticSimilarity
}

// WeightsFromMap decodes a configuration mapping into Weights. Every key in
// WeightKeys must be present; unknown keys are rejected. Numeric strings are
// accepted.
func WeightsFromMap(raw map[string]any) (Weights, error) {
	for _, key := range WeightKeys {
		if _, ok := raw[key]; !ok {
			return Weights{}, apperr.Configuration("weights."+key, "missing required weight")
		}
	}

	var w Weights
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &w,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Weights{}, fmt.Errorf("creating weights decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Weights{}, apperr.Configuration("weights", fmt.Sprintf("%v (known keys: %v)", err, sortedKeys()))
	}
	return w, nil
}

func sortedKeys() []string {
	keys := append([]string(nil), WeightKeys...)
	sort.Strings(keys)
	return keys
}

// Aggregate combines component scores into 100 * sum(component * weight).
func Aggregate(c ComponentScores, w Weights) float64 {
	total := c.SkillMatch*w.SkillMatch +
		c.ExperienceAlignment*w.ExperienceAlignment +
		c.EducationMatch*w.EducationMatch +
		c.CertificationsMatch*w.CertificationsMatch +
		c.SemanticSimilarity*w.SemanticSimilarity
	return total * 100
}
