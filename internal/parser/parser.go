// Package parser turns raw resume text into structured, human-correctable
// hints: contact details, location, vocabulary matches, work history,
// education and a summary. It is rule based and never fails; fields it
// cannot find are left empty.
package parser

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"chwresume/internal/types"

	"golang.org/x/text/unicode/norm"
)

// Parser extracts a ParsedResume from text using a compiled Vocabulary.
// A Parser holds no per-call state and is safe for concurrent use.
type Parser struct {
	vocab Vocabulary

	ehrSystems     []termMatcher
	programs       []termMatcher
	languages      []termMatcher
	certifications []termMatcher
	aliases        []termMatcher
	regions        []termMatcher
	cities         []cityMatcher
}

// New validates the vocabulary and compiles its matchers
func New(v Vocabulary) (*Parser, error) {
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vocabulary: %w", err)
	}

	v = v.Clone()
	p := &Parser{
		vocab:          v,
		ehrSystems:     compileTerms(v.EHRSystems),
		programs:       compileTerms(v.Programs),
		languages:      compileTerms(v.Languages),
		certifications: compileTerms(v.Certifications),
		cities:         compileCities(v.CityToRegion),
	}

	for _, alias := range slices.Sorted(maps.Keys(v.CertificationAliases)) {
		p.aliases = append(p.aliases, newTermMatcher(alias, v.CertificationAliases[alias]))
	}

	for _, region := range v.Regions {
		if region == v.FallbackRegion {
			continue
		}
		p.regions = append(p.regions, newTermMatcher(region, region))
	}

	return p, nil
}

// Vocabulary returns a copy of the vocabulary the parser was built with
func (p *Parser) Vocabulary() Vocabulary {
	return p.vocab.Clone()
}

// Parse extracts every field it can from text. It never fails: an empty or
// unrecognizable document yields an empty ParsedResume.
func (p *Parser) Parse(text string) types.ParsedResume {
	result := types.NewParsedResume()

	text = normalizeText(text)
	if strings.TrimSpace(text) == "" {
		return result
	}

	lines := strings.Split(text, "\n")
	lower := strings.ToLower(text)

	result.Email = extractEmail(text)
	result.Phone = extractPhone(text)
	result.FirstName, result.LastName = extractName(lines)
	result.City, result.Region = p.extractLocation(lower, lines)
	result.Objective = extractObjective(lines)

	result.EHRSystems = matchTerms(lower, p.ehrSystems)
	result.Programs = matchTerms(lower, p.programs)
	result.Languages = matchTerms(lower, p.languages)
	result.Certifications = matchCertifications(lower, p.certifications, p.aliases)

	result.WorkHistory = extractWorkHistory(lines)
	result.Education = extractEducation(lines)

	return result
}

// normalizeText repairs invalid UTF-8, applies NFC, unifies line endings
// and trims trailing space
func normalizeText(text string) string {
	text = norm.NFC.String(strings.ToValidUTF8(text, "\uFFFD"))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\f\v")
	}
	return strings.Join(lines, "\n")
}

var defaultParser = sync.OnceValue(func() *Parser {
	p, err := New(DefaultVocabulary())
	if err != nil {
		panic(fmt.Sprintf("built-in vocabulary is invalid: %v", err))
	}
	return p
})

// Default returns the parser built from DefaultVocabulary
func Default() *Parser {
	return defaultParser()
}

// ParseResumeText parses text with the built-in vocabulary
func ParseResumeText(text string) types.ParsedResume {
	return Default().Parse(text)
}

// TruncateInput cuts text to at most limit runes. A non-positive limit
// leaves text unchanged.
func TruncateInput(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}
