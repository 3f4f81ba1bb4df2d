package features

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/spigell/resume-matcher/internal/profile"
)

//go:embed skills.json
var defaultSkillsJSON []byte

var (
	degreeKeywords = []string{"bachelor", "master", "phd", "doctorate", "b.tech", "m.tech", "bsc", "msc"}
	certKeywords   = []string{"aws certified", "pmp", "ccna", "ocp", "cissp", "cka", "ckad"}

	// Skills that are ordinary English words in lower case ("ready to go",
	// "the rest of the team") only count in these spellings.
	casedSkills = map[string][]string{
		"go":   {"Go", "GO"},
		"rest": {"REST", "RESTful"},
	}
)

// Dictionary finds known terms in text on token boundaries.
type Dictionary struct {
	skills  []term
	degrees []term
	certs   []term
}

type term struct {
	raw string
	re  *regexp.Regexp
	// cased terms are matched against the original text.
	cased bool
}

// DefaultDictionary returns the dictionary built from the embedded skill list.
func DefaultDictionary() (*Dictionary, error) {
	return parseDictionary(defaultSkillsJSON)
}

// LoadDictionary reads a JSON array of skills from path.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading skills dictionary %q: %w", path, err)
	}
	d, err := parseDictionary(data)
	if err != nil {
		return nil, fmt.Errorf("skills dictionary %q: %w", path, err)
	}
	return d, nil
}

func parseDictionary(data []byte) (*Dictionary, error) {
	var skills []string
	if err := json.Unmarshal(data, &skills); err != nil {
		return nil, fmt.Errorf("parse skills: %w", err)
	}
	return NewDictionary(skills), nil
}

// NewDictionary compiles the given skills together with the built-in degree
// and certification keywords.
func NewDictionary(skills []string) *Dictionary {
	return &Dictionary{
		skills:  compileTerms(skills, casedSkills),
		degrees: compileTerms(degreeKeywords, nil),
		certs:   compileTerms(certKeywords, nil),
	}
}

func compileTerms(words []string, cased map[string][]string) []term {
	seen := make(map[string]bool, len(words))
	out := make([]term, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		word := regexp.QuoteMeta(w)
		spellings, isCased := cased[w]
		if isCased {
			quoted := make([]string, 0, len(spellings))
			for _, sp := range spellings {
				quoted = append(quoted, regexp.QuoteMeta(sp))
			}
			word = "(?:" + strings.Join(quoted, "|") + ")"
		}
		// "+" and "#" are word characters so "c" never matches inside "c++" or "c#".
		pattern := `(?:^|[^\p{L}\p{N}+#])` + word + `(?:$|[^\p{L}\p{N}+#])`
		out = append(out, term{raw: w, re: regexp.MustCompile(pattern), cased: isCased})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].raw < out[j].raw })
	return out
}

// Skills returns the normalized skills mentioned in text.
func (d *Dictionary) Skills(text string) profile.Set {
	lowered := strings.ToLower(text)
	out := make(profile.Set)
	for _, t := range d.skills {
		target := lowered
		if t.cased {
			target = text
		}
		if t.re.MatchString(target) {
			out[NormalizeSkill(t.raw)] = struct{}{}
		}
	}
	return out
}

// Degrees returns the distinct degrees mentioned in text, sorted.
func (d *Dictionary) Degrees(text string) []profile.Degree {
	lowered := strings.ToLower(text)
	seen := make(map[profile.Degree]bool)
	var out []profile.Degree
	for _, t := range d.degrees {
		if !t.re.MatchString(lowered) {
			continue
		}
		degree := profile.NormalizeDegree(t.raw)
		if seen[degree] {
			continue
		}
		seen[degree] = true
		out = append(out, degree)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Certifications returns the certifications mentioned in text as upper-case
// tokens.
func (d *Dictionary) Certifications(text string) profile.Set {
	lowered := strings.ToLower(text)
	out := make(profile.Set)
	for _, t := range d.certs {
		if t.re.MatchString(lowered) {
			out[strings.ToUpper(t.raw)] = struct{}{}
		}
	}
	return out
}

// Len returns the number of dictionary skills.
func (d *Dictionary) Len() int { return len(d.skills) }
