package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// shortTermLength is the longest term that needs word boundaries.
// "CCM" must not match inside "ACCMA".
const shortTermLength = 3

// termMatcher finds one vocabulary term in lowercased text and reports
// the canonical label it stands for.
type termMatcher struct {
	canonical string
	lower     string
	bounded   *regexp.Regexp
}

func newTermMatcher(term, canonical string) termMatcher {
	lower := strings.ToLower(strings.TrimSpace(term))
	m := termMatcher{canonical: canonical, lower: lower}
	if utf8.RuneCountInString(lower) <= shortTermLength {
		m.bounded = boundedTermRe(lower)
	}
	return m
}

// boundedTermRe matches term only where it is not glued to another letter
// or digit. Unlike \b the guards understand accented letters, so "josé"
// and "médico" work.
func boundedTermRe(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(` + regexp.QuoteMeta(term) + `)(?:$|[^\p{L}\p{N}_])`)
}

func (m termMatcher) matches(lowerText string) bool {
	if m.lower == "" {
		return false
	}
	if m.bounded != nil {
		return m.bounded.MatchString(lowerText)
	}
	return strings.Contains(lowerText, m.lower)
}

func compileTerms(terms []string) []termMatcher {
	matchers := make([]termMatcher, 0, len(terms))
	for _, term := range terms {
		matchers = append(matchers, newTermMatcher(term, term))
	}
	return matchers
}

// matchTerms returns the canonical labels found in lowerText, deduplicated,
// in matcher order.
func matchTerms(lowerText string, matchers []termMatcher) []string {
	found := []string{}
	seen := make(map[string]struct{}, len(matchers))
	for _, m := range matchers {
		if _, ok := seen[m.canonical]; ok {
			continue
		}
		if m.matches(lowerText) {
			seen[m.canonical] = struct{}{}
			found = append(found, m.canonical)
		}
	}
	return found
}

// matchCertifications runs the direct pass and then the alias pass. An alias
// only adds its canonical name when the direct pass did not already find it.
// The result follows certification vocabulary order.
func matchCertifications(lowerText string, direct, aliases []termMatcher) []string {
	seen := make(map[string]struct{})
	for _, c := range matchTerms(lowerText, direct) {
		seen[c] = struct{}{}
	}

	for _, m := range aliases {
		if _, ok := seen[m.canonical]; ok {
			continue
		}
		if m.matches(lowerText) {
			seen[m.canonical] = struct{}{}
		}
	}

	found := make([]string, 0, len(seen))
	for _, m := range direct {
		if _, ok := seen[m.canonical]; ok {
			found = append(found, m.canonical)
			delete(seen, m.canonical)
		}
	}

	return found
}
