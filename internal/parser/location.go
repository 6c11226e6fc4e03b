package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// locationHeaderLines is how many leading non-empty lines may carry a
// "City, CA" address.
const locationHeaderLines = 6

var (
	stateMarkerRe = regexp.MustCompile(`\bCA\b|(?i:\bcalifornia\b)`)
	cityStateRe   = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(\p{Lu}[\p{L}.'-]*(?:\s+\p{Lu}[\p{L}.'-]*){0,3}),\s*(?:CA|(?i:california))\b(?:\s+\d{5}(?:-\d{4})?)?`)
)

// cityMatcher finds one known city on word boundaries
type cityMatcher struct {
	city   string
	region string
	re     *regexp.Regexp
}

func compileCities(cityToRegion map[string]string) []cityMatcher {
	matchers := make([]cityMatcher, 0, len(cityToRegion))
	for city, region := range cityToRegion {
		matchers = append(matchers, cityMatcher{
			city:   city,
			region: region,
			re:     boundedTermRe(city),
		})
	}
	return matchers
}

// extractLocation infers city and region. Known cities win, then literal
// region names, then a "City, CA" address near the top of the document.
func (p *Parser) extractLocation(lowerText string, lines []string) (string, string) {
	if city, region, ok := p.matchKnownCity(lowerText); ok {
		return city, region
	}

	for _, m := range p.regions {
		if m.matches(lowerText) {
			return "", m.canonical
		}
	}

	header := leadingLines(lines, locationHeaderLines)
	for _, line := range header {
		if !stateMarkerRe.MatchString(line) {
			continue
		}
		if m := cityStateRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), p.vocab.FallbackRegion
		}
	}

	return "", ""
}

// matchKnownCity picks the city that appears earliest in the text.
// Ties go to the longer name.
func (p *Parser) matchKnownCity(lowerText string) (string, string, bool) {
	best := -1
	var found cityMatcher
	for _, m := range p.cities {
		match := m.re.FindStringSubmatchIndex(lowerText)
		if match == nil {
			continue
		}
		loc := match[2:4]
		if best == -1 || loc[0] < best || (loc[0] == best && len(m.city) > len(found.city)) ||
			(loc[0] == best && len(m.city) == len(found.city) && m.city < found.city) {
			best = loc[0]
			found = m
		}
	}

	if best == -1 {
		return "", "", false
	}

	return cases.Title(language.English).String(found.city), found.region, true
}

func leadingLines(lines []string, n int) []string {
	out := make([]string, 0, n)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}
