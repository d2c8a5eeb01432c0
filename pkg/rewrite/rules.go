// Package rewrite implements the deterministic softening and tone-wrapping
// engine behind the /api/rewrite endpoint.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule declares a single vocabulary substitution. Pattern is a regular
// expression applied case-insensitively against whole words only; every
// match in the text is replaced.
type Rule struct {
	Name        string
	Pattern     string
	Replacement string
}

type compiledRule struct {
	name        string
	expr        *regexp.Regexp
	replacement string
}

// DefaultRules returns the canonical softening table. Order is significant:
// rules are applied top to bottom and later rules see the output of earlier
// ones. Replacement phrases are deliberately outside the matched vocabulary
// so a second pass over softened text is a no-op.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "harsh_judgement",
			Pattern:     `(?i)\b(?:stupid|dumb|idiotic|moronic)\b`,
			Replacement: "unclear",
		},
		{
			Name:        "strong_dislike",
			Pattern:     `(?i)\b(?:hate|despise|loathe)\b`,
			Replacement: "don't prefer",
		},
		{
			Name:        "quality_attack",
			Pattern:     `(?i)\b(?:terrible|awful|horrible|atrocious)\b`,
			Replacement: "not ideal",
		},
		{
			Name:        "absolutes",
			Pattern:     `(?i)\b(?:never|always)\b`,
			Replacement: "sometimes",
		},
		{
			Name:        "dismissal",
			Pattern:     `(?i)\b(?:useless|worthless)\b`,
			Replacement: "not quite working",
		},
		{
			Name:        "time_waste",
			Pattern:     `(?i)\bwaste of time\b`,
			Replacement: "could be optimized",
		},
		{
			Name:        "blame",
			Pattern:     `(?i)\b(?:wrong|incorrect)\b`,
			Replacement: "might need adjustment",
		},
		{
			Name:        "condescension",
			Pattern:     `(?i)\b(?:obviously|clearly)\b`,
			Replacement: "it seems",
		},
		{
			Name:        "failure",
			Pattern:     `(?i)\b(?:fail|failed|failure)\b`,
			Replacement: "didn't work out",
		},
		{
			Name:        "mockery",
			Pattern:     `(?i)\b(?:ridiculous|absurd)\b`,
			Replacement: "surprising",
		},
	}
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			return nil, fmt.Errorf("rewrite: rule name is required")
		}
		pattern := strings.TrimSpace(rule.Pattern)
		if pattern == "" {
			return nil, fmt.Errorf("rewrite: pattern is required for rule %s", name)
		}
		expr, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("rewrite: invalid pattern for rule %s: %w", name, err)
		}
		compiled = append(compiled, compiledRule{
			name:        name,
			expr:        expr,
			replacement: rule.Replacement,
		})
	}
	return compiled, nil
}
