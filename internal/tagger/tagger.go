package tagger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Detection holds the platforms and technologies mentioned in a text.
// Both lists are deduplicated; callers must not rely on their order.
type Detection struct {
	Platforms []string `json:"detected_platforms"`
	Techs     []string `json:"detected_techs"`
}

// Tagger matches rule-table keywords against text as whole words.
type Tagger struct {
	rules *RuleTable
}

// New creates a tagger over rules.
func New(rules *RuleTable) *Tagger {
	return &Tagger{rules: rules}
}

// Rules returns the table the tagger matches against.
func (t *Tagger) Rules() *RuleTable {
	return t.rules
}

// Detect lowercases text and reports every keyword that occurs as a whole word, plus
// every platform owning one of those keywords. "java" does not match inside "javascript".
func (t *Tagger) Detect(text string) Detection {
	lower := strings.ToLower(text)
	techs := make([]string, 0)
	seenTech := make(map[string]bool)
	for _, rule := range t.rules.rules {
		for _, kw := range rule.Keywords {
			if seenTech[kw] || !containsWord(lower, kw) {
				continue
			}
			seenTech[kw] = true
			techs = append(techs, kw)
		}
	}
	return Detection{Platforms: t.platformsFor(techs), Techs: techs}
}

// DetectValue runs Detect when v is a string and returns an empty detection otherwise.
func (t *Tagger) DetectValue(v any) Detection {
	s, ok := v.(string)
	if !ok {
		return Detection{Platforms: []string{}, Techs: []string{}}
	}
	return t.Detect(s)
}

// PlatformsForTechs returns the platforms owning any technology in a comma-joined list
// such as "kotlin,firebase". Technologies are compared exactly after trimming and lowercasing.
func (t *Tagger) PlatformsForTechs(csv string) []string {
	var techs []string
	for _, tech := range strings.Split(csv, ",") {
		if tech = strings.ToLower(strings.TrimSpace(tech)); tech != "" {
			techs = append(techs, tech)
		}
	}
	return t.platformsFor(techs)
}

// platformsFor returns the owners of techs in rule declaration order.
func (t *Tagger) platformsFor(techs []string) []string {
	matched := make(map[string]bool)
	for _, tech := range techs {
		for _, p := range t.rules.owners[tech] {
			matched[p] = true
		}
	}
	platforms := make([]string, 0, len(matched))
	for _, rule := range t.rules.rules {
		if matched[rule.Platform] {
			platforms = append(platforms, rule.Platform)
		}
	}
	return platforms
}

// containsWord reports whether kw occurs in text with a non-alphanumeric rune or a string
// boundary on both sides.
func containsWord(text, kw string) bool {
	if kw == "" {
		return false
	}
	from := 0
	for from <= len(text)-len(kw) {
		i := strings.Index(text[from:], kw)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(kw)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
