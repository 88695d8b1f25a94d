package categorize

import (
	"regexp"
	"strings"
)

// Matcher tests transaction descriptions against a fixed set of patterns.
// A pattern matches only as a whole word: the occurrence must be bounded by
// non-alphanumeric characters or the string edges on both sides, so "PLUS"
// matches "PLUS SUPERMARKT" but not "SURPLUSVALUE B.V.". Matching is
// case-insensitive. Pattern order is priority: Match reports the first
// pattern that hits.
type Matcher struct {
	patterns []string
	exprs    []*regexp.Regexp
}

// NewMatcher compiles the patterns. Empty and whitespace-only patterns are
// dropped.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m.patterns = append(m.patterns, p)
		m.exprs = append(m.exprs, wholeWord(p))
	}
	return m
}

// wholeWord builds a case-insensitive regexp matching pattern bounded by
// non-alphanumeric characters or string edges.
func wholeWord(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|[^a-z0-9])` + regexp.QuoteMeta(pattern) + `([^a-z0-9]|$)`)
}

// Match returns the first pattern that matches text, in pattern order.
func (m *Matcher) Match(text string) (string, bool) {
	for i, expr := range m.exprs {
		if expr.MatchString(text) {
			return m.patterns[i], true
		}
	}
	return "", false
}

// Matches reports whether any pattern matches text.
func (m *Matcher) Matches(text string) bool {
	_, ok := m.Match(text)
	return ok
}

// Patterns returns the compiled pattern list in priority order.
func (m *Matcher) Patterns() []string {
	return m.patterns
}
