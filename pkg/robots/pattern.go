package robots

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// Pattern is a heuristic User-Agent rule. Lower Priority values are evaluated first.
type Pattern struct {
	Source   string `json:"pattern" yaml:"pattern"`
	Priority int    `json:"priority" yaml:"priority"`
}

type compiledPattern struct {
	Pattern
	re *regexp.Regexp
}

// PatternTable holds compiled case-insensitive patterns sorted by priority.
type PatternTable struct {
	rules []compiledPattern
}

// NewPatternTable compiles every pattern. A single bad expression fails the
// whole table with ErrInvalidPattern. Equal priorities keep their input order.
func NewPatternTable(patterns []Pattern) (*PatternTable, error) {
	rules := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p.Source)
		if err != nil {
			return nil, errors.Join(ErrInvalidPattern, fmt.Errorf("pattern %q: %w", p.Source, err))
		}
		rules = append(rules, compiledPattern{Pattern: p, re: re})
	}
	slices.SortStableFunc(rules, func(a, b compiledPattern) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return &PatternTable{rules: rules}, nil
}

// Match reports whether any pattern matches s.
func (t *PatternTable) Match(s string) bool {
	_, ok := t.FirstMatch(s)
	return ok
}

// FirstMatch returns the lowest-priority pattern matching s.
func (t *PatternTable) FirstMatch(s string) (Pattern, bool) {
	if t == nil {
		return Pattern{}, false
	}
	for i := range t.rules {
		if t.rules[i].re.MatchString(s) {
			return t.rules[i].Pattern, true
		}
	}
	return Pattern{}, false
}

// Len returns the number of patterns.
func (t *PatternTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Patterns returns the patterns in evaluation order.
func (t *PatternTable) Patterns() []Pattern {
	if t == nil {
		return nil
	}
	out := make([]Pattern, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Pattern
	}
	return out
}
