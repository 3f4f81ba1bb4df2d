package features

import "strings"

// skillSynonyms maps known spellings to a canonical lowercase token.
var skillSynonyms = map[string]string{
	"js":       "javascript",
	"node.js":  "nodejs",
	"node":     "nodejs",
	"py":       "python",
	"golang":   "go",
	"k8s":      "kubernetes",
	"postgres": "postgresql",
	"ts":       "typescript",
}

// NormalizeSkill lowercases and trims a skill and maps it through the synonym
// table. Unknown skills pass through unchanged otherwise.
func NormalizeSkill(skill string) string {
	skill = strings.ToLower(strings.TrimSpace(skill))
	if canonical, ok := skillSynonyms[skill]; ok {
		return canonical
	}
	return skill
}
