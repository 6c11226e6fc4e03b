package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "maria.g+jobs@clinic.org", extractEmail("Contact\nmaria.g+jobs@clinic.org\nother@example.com"))
	assert.Empty(t, extractEmail("no address here @ all"))
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"(555) 123-4567", "(555) 123-4567"},
		{"Cell: 555.123.4567", "555.123.4567"},
		{"555-123-4567 (mobile)", "555-123-4567"},
		{"+1 555 123 4567", "+1 555 123 4567"},
		{"Employee ID 12345678901234", ""},
		{"Jan 2020 - Present", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractPhone(tt.text))
		})
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		first string
		last  string
	}{
		{
			name:  "plain two-token name",
			text:  "Maria Garcia\nmaria@example.com",
			first: "Maria",
			last:  "Garcia",
		},
		{
			name:  "honorific and middle name dropped",
			text:  "Dr. Maria Elena Garcia",
			first: "Maria",
			last:  "Garcia",
		},
		{
			name:  "document title skipped",
			text:  "RESUME\n\nMaria Garcia",
			first: "Maria",
			last:  "Garcia",
		},
		{
			name:  "credentials after comma dropped",
			text:  "Maria Garcia, CHW",
			first: "Maria",
			last:  "Garcia",
		},
		{
			name:  "single token becomes first name",
			text:  "Maria\n(555) 123-4567",
			first: "Maria",
		},
		{
			name: "contact lines only",
			text: "maria@example.com\n(555) 123-4567\nlinkedin.com/in/maria",
		},
		{
			name: "street address skipped",
			text: "123 Main Street\nmaria@example.com",
		},
		{
			name: "long prose line skipped",
			text: strings.Repeat("word ", 20),
		},
		{
			name: "name after the fifth non-empty line is ignored",
			text: "maria@example.com\n(555) 123-4567\nwww.example.com\n123 Main St\nCurriculum Vitae\nMaria Garcia",
		},
		{
			name: "section header is not a name",
			text: "Experience\nCare Coordinator  2019 - 2020",
		},
		{
			name:  "blank lines do not count",
			text:  "\n\n\n\n\n\nMaria Garcia",
			first: "Maria",
			last:  "Garcia",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := extractName(strings.Split(tt.text, "\n"))
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}
