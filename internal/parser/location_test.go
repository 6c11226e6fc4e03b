package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		city   string
		region string
	}{
		{
			name:   "known city",
			text:   "Maria Garcia\nVisalia, CA",
			city:   "Visalia",
			region: "Central Valley",
		},
		{
			name:   "multi-word city is title cased",
			text:   "Based in east los angeles",
			city:   "East Los Angeles",
			region: "Los Angeles",
		},
		{
			name:   "earliest city wins",
			text:   "Moved from Oakland to Fresno in 2019",
			city:   "Oakland",
			region: "Bay Area",
		},
		{
			name:   "city that is also a region",
			text:   "Sacramento, CA 95814",
			city:   "Sacramento",
			region: "Sacramento",
		},
		{
			name:   "literal region without a city",
			text:   "Serving the Inland Empire since 2015",
			region: "Inland Empire",
		},
		{
			name:   "unknown city with state marker",
			text:   "Maria Garcia\nLindsay, CA 93247",
			city:   "Lindsay",
			region: "Other California",
		},
		{
			name:   "state spelled out",
			text:   "Maria Garcia\nLindsay, California",
			city:   "Lindsay",
			region: "Other California",
		},
		{
			name:   "known city must be a whole word",
			text:   "Fresnoville, CA",
			city:   "Fresnoville",
			region: "Other California",
		},
		{
			name: "address below the header lines is ignored",
			text: "Maria Garcia\nline two\nline three\nline four\nline five\nline six\nLindsay, CA",
		},
		{
			name: "no location",
			text: "Maria Garcia\nmaria@example.com",
		},
	}

	p := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, region := p.extractLocation(strings.ToLower(tt.text), strings.Split(tt.text, "\n"))
			assert.Equal(t, tt.city, city)
			assert.Equal(t, tt.region, region)
		})
	}
}

func TestExtractLocation_AccentedCity(t *testing.T) {
	p, err := New(DefaultVocabulary().Merge(Vocabulary{
		CityToRegion: map[string]string{"san josé": "Bay Area", "ñipomo": "Central Coast"},
	}))
	require.NoError(t, err)

	tests := []struct {
		text   string
		city   string
		region string
	}{
		{"Ana Ruiz\nSan José, CA", "San José", "Bay Area"},
		{"Vivo en Ñipomo desde 2010", "Ñipomo", "Central Coast"},
		{"Ana Ruiz\nSan Josésito, CA", "San Josésito", "Other California"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			city, region := p.extractLocation(strings.ToLower(tt.text), strings.Split(tt.text, "\n"))
			assert.Equal(t, tt.city, city)
			assert.Equal(t, tt.region, region)
		})
	}
}
