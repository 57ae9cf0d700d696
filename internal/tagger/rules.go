// Package tagger detects platform and technology mentions in free text using a static keyword table.
package tagger

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule lists the keywords that identify one platform.
type Rule struct {
	Platform string   `yaml:"platform" json:"platform"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// RuleTable is an ordered platform → keywords mapping. It is read-only once built.
type RuleTable struct {
	rules []Rule
	// owners maps each keyword to every platform listing it, in declaration order.
	owners map[string][]string
}

// NewRuleTable builds a table from rules. Keywords are lowercased and trimmed;
// empty platforms or keywords are rejected.
func NewRuleTable(rules []Rule) (*RuleTable, error) {
	t := &RuleTable{
		rules:  make([]Rule, 0, len(rules)),
		owners: make(map[string][]string),
	}
	seenPlatform := make(map[string]bool, len(rules))
	for i, r := range rules {
		platform := strings.TrimSpace(r.Platform)
		if platform == "" {
			return nil, fmt.Errorf("rule %d: platform is empty", i)
		}
		if seenPlatform[platform] {
			return nil, fmt.Errorf("rule %d: duplicate platform %q", i, platform)
		}
		seenPlatform[platform] = true

		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return nil, fmt.Errorf("rule %q: empty keyword", platform)
			}
			keywords = append(keywords, kw)
			if !contains(t.owners[kw], platform) {
				t.owners[kw] = append(t.owners[kw], platform)
			}
		}
		t.rules = append(t.rules, Rule{Platform: platform, Keywords: keywords})
	}
	return t, nil
}

// ParseRules decodes a YAML list of {platform, keywords} entries.
func ParseRules(data []byte) (*RuleTable, error) {
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	return NewRuleTable(rules)
}

// LoadRules reads the rule table from path, or returns the built-in table when path is empty.
func LoadRules(path string) (*RuleTable, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	return ParseRules(data)
}

// DefaultRules returns the built-in six-platform table.
func DefaultRules() (*RuleTable, error) {
	return ParseRules(defaultRulesYAML)
}

// Rules returns a copy of the table in declaration order.
func (t *RuleTable) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = Rule{Platform: r.Platform, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Platforms returns the platform labels in declaration order.
func (t *RuleTable) Platforms() []string {
	out := make([]string, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Platform
	}
	return out
}

// Owners returns every platform whose keyword list contains keyword.
func (t *RuleTable) Owners(keyword string) []string {
	return append([]string(nil), t.owners[strings.ToLower(keyword)]...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
