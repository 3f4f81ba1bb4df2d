package profile

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const roleSummarySentences = 4

var (
	reYears           = regexp.MustCompile(`(?i)(\d+)\+?\s+years?`)
	reYearsSentence   = regexp.MustCompile(`(?i)([^.]*years[^.]*)\.`)
	reEmail           = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	rePhone           = regexp.MustCompile(`\+?\d[\d\-\s]{7,}\d`)
	reNameSeparators  = regexp.MustCompile(`[_\-\s.]+`)
	preferredMarkers  = []string{"preferred", "nice to have", "nice-to-have", "bonus", "a plus"}
	nameNoiseTokens   = map[string]bool{"cv": true, "resume": true, "curriculum": true, "vitae": true, "final": true, "updated": true}
	bachelorKeywords  = []string{"bachelor", "bsc", "b.tech"}
	masterKeywords    = []string{"master", "msc", "m.tech"}
	doctorateKeywords = []string{"phd", "doctorate"}
)

// extractTitle returns the first non-empty line.
func extractTitle(text string) *string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return &line
		}
	}
	return nil
}

// extractRoleSummary returns the first sentences of the text joined by a space.
func extractRoleSummary(text string) string {
	sentences := splitSentences(text)
	if len(sentences) > roleSummarySentences {
		sentences = sentences[:roleSummarySentences]
	}
	return strings.Join(sentences, " ")
}

func splitSentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// extractYears returns the largest "N years" figure mentioned in the text.
func extractYears(text string) *float64 {
	var (
		best  float64
		found bool
	)
	for _, m := range reYears.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if !found || float64(n) > best {
			best = float64(n)
			found = true
		}
	}
	if !found {
		return nil
	}
	return &best
}

func extractExperienceExpectation(text string) *string {
	m := reYearsSentence.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	sentence := strings.TrimSpace(m[1])
	if sentence == "" {
		return nil
	}
	return &sentence
}

// extractEducationRequirements lists required degrees in BACHELOR, MASTER, PHD order.
func extractEducationRequirements(text string) []Degree {
	lowered := strings.ToLower(text)
	var out []Degree
	if containsAny(lowered, bachelorKeywords) {
		out = append(out, DegreeBachelor)
	}
	if containsAny(lowered, masterKeywords) {
		out = append(out, DegreeMaster)
	}
	if containsAny(lowered, doctorateKeywords) {
		out = append(out, DegreePhD)
	}
	return out
}

func extractContact(text string) (email, phone *string) {
	if m := reEmail.FindString(text); m != "" {
		email = &m
	}
	if m := rePhone.FindString(text); m != "" {
		m = strings.TrimSpace(m)
		phone = &m
	}
	return email, phone
}

// splitPreferred separates the lines that describe nice-to-have requirements
// from the rest of a job text. A line mentioning a marker is preferred; a
// heading mentioning a marker makes the following lines preferred until the
// next heading.
func splitPreferred(text string) (main, preferred string) {
	var mainLines, prefLines []string
	inSection := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lowered := strings.ToLower(trimmed)
		marked := containsAny(lowered, preferredMarkers)

		if isHeading(trimmed) {
			inSection = marked
		}

		if marked || inSection {
			prefLines = append(prefLines, line)
			continue
		}
		mainLines = append(mainLines, line)
	}
	return strings.Join(mainLines, "\n"), strings.Join(prefLines, "\n")
}

func isHeading(line string) bool {
	return strings.HasSuffix(line, ":") || strings.HasPrefix(line, "#")
}

// nameFromSource derives a display name from a file name such as
// "jane_doe_cv.pdf". It returns nil when nothing name-like is left.
func nameFromSource(source string) *string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var parts []string
	for _, token := range reNameSeparators.Split(base, -1) {
		lowered := strings.ToLower(token)
		if lowered == "" || nameNoiseTokens[lowered] || !isAlpha(lowered) {
			continue
		}
		runes := []rune(lowered)
		runes[0] = unicode.ToUpper(runes[0])
		parts = append(parts, string(runes))
	}
	if len(parts) == 0 {
		return nil
	}
	name := strings.Join(parts, " ")
	return &name
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
