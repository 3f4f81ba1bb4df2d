package matching

import (
	"fmt"
	"math"
	"strings"
)

const (
	maxMatchedInRationale = 5
	maxMissingInRationale = 3
)

// Explain renders a short, deterministic summary of an outcome: skill overlap,
// experience fit, then missing required and preferred skills.
func Explain(o Outcome) string {
	top := strings.Join(head(o.Matched, maxMatchedInRationale), ", ")
	if top == "" {
		top = "no key skills"
	}

	parts := []string{
		fmt.Sprintf("Strong skill overlap (%d%%) including %s.", int(math.Round(o.Components.SkillMatch*100)), top),
	}

	switch exp := o.Components.ExperienceAlignment; {
	case exp >= 0.9:
		parts = append(parts, "Candidate meets or exceeds the experience requirement.")
	case exp >= 0.6:
		parts = append(parts, "Experience is slightly below the requirement but still relevant.")
	default:
		parts = append(parts, "Experience appears below the required level.")
	}

	if len(o.MissingRequired) > 0 {
		parts = append(parts, fmt.Sprintf("Missing required skills: %s.", strings.Join(head(o.MissingRequired, maxMissingInRationale), ", ")))
	}
	if len(o.MissingPreferred) > 0 {
		parts = append(parts, fmt.Sprintf("Missing preferred skills: %s.", strings.Join(head(o.MissingPreferred, maxMissingInRationale), ", ")))
	}

	return strings.Join(parts, " ")
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
