package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchTerms(t *testing.T) {
	matchers := compileTerms([]string{"Epic", "NextGen", "Cerner", "eCW"})

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"vocabulary order", "used nextgen, then epic", []string{"Epic", "NextGen"}},
		{"short term on boundary", "charted in ecw.", []string{"eCW"}},
		{"short term inside a word", "necwx", []string{}},
		{"nothing found", "no systems here", []string{}},
		{"empty text", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, matchTerms(tt.text, matchers))
		})
	}
}

func TestMatchTerms_DeduplicatesCanonical(t *testing.T) {
	matchers := []termMatcher{
		newTermMatcher("ochin", "Epic"),
		newTermMatcher("epic", "Epic"),
	}

	assert.Equal(t, []string{"Epic"}, matchTerms("ochin epic", matchers))
}

func TestMatchTerms_AccentedShortTerm(t *testing.T) {
	matchers := compileTerms([]string{"Ewé"})

	assert.Equal(t, []string{"Ewé"}, matchTerms("habla ewé y español", matchers))
	assert.Equal(t, []string{"Ewé"}, matchTerms("ewé", matchers))
	assert.Equal(t, []string{}, matchTerms("ewéx", matchers))
	assert.Equal(t, []string{}, matchTerms("kewé", matchers))
}

func TestMatchCertifications(t *testing.T) {
	direct := compileTerms([]string{"CPR/BLS", "Mental Health First Aid", "Doula Certification"})
	aliases := []termMatcher{
		newTermMatcher("bls", "CPR/BLS"),
		newTermMatcher("cpr", "CPR/BLS"),
		newTermMatcher("mhfa", "Mental Health First Aid"),
	}

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"direct match", "current cpr/bls card", []string{"CPR/BLS"}},
		{"alias in vocabulary order", "mhfa trained, bls current", []string{"CPR/BLS", "Mental Health First Aid"}},
		{"direct and alias for the same term", "cpr/bls and cpr", []string{"CPR/BLS"}},
		{"alias on word boundary only", "blsx", []string{}},
		{"nothing", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, matchCertifications(tt.text, direct, aliases))
		})
	}
}
