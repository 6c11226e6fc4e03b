package parser

import (
	"strings"
	"unicode/utf8"
)

const (
	maxObjectiveLines  = 5
	maxObjectiveLength = 500
)

// extractObjective collects the lines under the first summary-type header
func extractObjective(lines []string) string {
	start := -1
	var collected []string

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if kind, ok := headerKind(trimmed); ok && kind == sectionSummary {
			start = i
			break
		}
		if kind, rest, ok := inlineHeader(trimmed); ok && kind == sectionSummary && rest != "" {
			start = i
			collected = append(collected, rest)
			break
		}
	}

	if start < 0 {
		return ""
	}

	for _, line := range lines[start+1:] {
		if len(collected) >= maxObjectiveLines {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isHeader(trimmed) {
			break
		}
		collected = append(collected, stripBullet(trimmed))
	}

	return truncateRunes(strings.Join(collected, " "), maxObjectiveLength)
}

func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}
