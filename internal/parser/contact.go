package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	nameScanLines     = 5
	maxNameLineLength = 60
)

var (
	emailRe   = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe   = regexp.MustCompile(`(?:\+?1[\s.-]?)?(?:\(\d{3}\)|\b\d{3})[\s.-]?\d{3}[\s.-]?\d{4}\b`)
	urlRe     = regexp.MustCompile(`(?i)(?:https?://|www\.|linkedin|github|\.com\b|\.org\b|\.net\b|(?:^|\s)@\w+)`)
	addressRe = regexp.MustCompile(`(?i)^\s*\d+[a-z]?\s+.*\b(?:st|street|ave|avenue|rd|road|blvd|boulevard|dr|drive|ln|lane|way|ct|court|pl|place|hwy|highway|pkwy|parkway|cir|circle|calle|apt|suite|ste)\b\.?`)

	documentTitles = map[string]bool{
		"resume":           true,
		"résumé":           true,
		"resumé":           true,
		"curriculum vitae": true,
		"curriculum":       true,
		"cv":               true,
		"hoja de vida":     true,
	}

	honorifics = map[string]bool{
		"mr": true, "mrs": true, "ms": true, "miss": true, "mx": true,
		"dr": true, "prof": true, "sr": true, "sra": true, "srta": true,
	}
)

// extractEmail returns the first email address in the text
func extractEmail(text string) string {
	return emailRe.FindString(text)
}

// extractPhone returns the first North American phone number, as written
func extractPhone(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if m := phoneRe.FindString(line); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// extractName guesses first and last name from the top of the document.
// It prefers leaving the name blank over guessing from a doubtful line.
func extractName(lines []string) (string, string) {
	seen := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		seen++
		if seen > nameScanLines {
			break
		}

		if !isNameCandidate(trimmed) {
			continue
		}

		return splitName(trimmed)
	}

	return "", ""
}

func isNameCandidate(line string) bool {
	switch {
	case utf8.RuneCountInString(line) > maxNameLineLength:
		return false
	case emailRe.MatchString(line), phoneRe.MatchString(line), urlRe.MatchString(line):
		return false
	case addressRe.MatchString(line), strings.ContainsAny(line, "0123456789"):
		return false
	case documentTitles[strings.ToLower(strings.Trim(line, " :-|"))]:
		return false
	case isHeader(line), hasDateRange(line):
		return false
	}
	return true
}

func splitName(line string) (string, string) {
	if idx := strings.IndexAny(line, ",|"); idx >= 0 {
		line = line[:idx]
	}

	var tokens []string
	for _, tok := range strings.Fields(line) {
		if honorifics[strings.ToLower(strings.TrimSuffix(tok, "."))] {
			continue
		}
		tokens = append(tokens, tok)
	}

	switch {
	case len(tokens) >= 2:
		return tokens[0], tokens[len(tokens)-1]
	case len(tokens) == 1 && isAlphabetic(tokens[0]):
		return tokens[0], ""
	default:
		return "", ""
	}
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}
