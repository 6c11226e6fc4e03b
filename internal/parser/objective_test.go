package parser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestExtractObjective(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "inline objective",
			text:     "Objective: Serve my community as a CHW.\nExperience\nOutreach Worker 2015 - 2018",
			expected: "Serve my community as a CHW.",
		},
		{
			name:     "bullets are stripped and joined",
			text:     "Summary\n• Bilingual outreach\n• Enrollment support\n\nSkills\nEpic",
			expected: "Bilingual outreach Enrollment support",
		},
		{
			name:     "at most five lines",
			text:     "Profile\nline 1\nline 2\nline 3\nline 4\nline 5\nline 6\nline 7",
			expected: "line 1 line 2 line 3 line 4 line 5",
		},
		{
			name:     "first summary header wins",
			text:     "Profile\nFirst text\nSummary\nSecond text",
			expected: "First text",
		},
		{
			name:     "spanish header",
			text:     "Perfil Profesional\nPromotora con experiencia.",
			expected: "Promotora con experiencia.",
		},
		{
			name:     "no summary header",
			text:     "Maria Garcia\nCare coordination and outreach.",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractObjective(strings.Split(tt.text, "\n")))
		})
	}
}

func TestExtractObjective_Truncates(t *testing.T) {
	got := extractObjective([]string{"Summary", strings.Repeat("a", 600)})
	assert.Equal(t, strings.Repeat("a", maxObjectiveLength), got)

	got = extractObjective([]string{"Summary", strings.Repeat("ñ", 600)})
	assert.Equal(t, maxObjectiveLength, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}
