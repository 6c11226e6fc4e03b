package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabulary_IsValid(t *testing.T) {
	v := DefaultVocabulary()

	require.NoError(t, v.Validate())
	assert.Contains(t, v.Regions, v.FallbackRegion)
	for city, region := range v.CityToRegion {
		assert.Contains(t, v.Regions, region, "city %q", city)
	}
}

func TestVocabulary_CloneIsIndependent(t *testing.T) {
	original := DefaultVocabulary()
	clone := original.Clone()

	clone.Regions[0] = "Changed"
	clone.CityToRegion["fresno"] = "Changed"
	clone.CertificationAliases["new alias"] = "Changed"

	assert.Equal(t, DefaultVocabulary(), original)
}

func TestVocabulary_Merge(t *testing.T) {
	base := DefaultVocabulary()
	extra := Vocabulary{
		Regions:              []string{"Far North"},
		EHRSystems:           []string{"epic", "Medimax"},
		CityToRegion:         map[string]string{" Lindsay ": "Central Valley", "yreka": "Far North"},
		CertificationAliases: map[string]string{"CHW Cert": "CHW Certification (CA)"},
	}

	merged := base.Merge(extra)

	require.NoError(t, merged.Validate())
	assert.Len(t, merged.EHRSystems, len(base.EHRSystems)+1)
	assert.Contains(t, merged.EHRSystems, "Medimax")
	assert.Contains(t, merged.Regions, "Far North")
	assert.Equal(t, "Central Valley", merged.CityToRegion["lindsay"])
	assert.Equal(t, "CHW Certification (CA)", merged.CertificationAliases["chw cert"])
	assert.Equal(t, base.FallbackRegion, merged.FallbackRegion)

	assert.NotContains(t, base.EHRSystems, "Medimax")
}

func TestVocabulary_MergeFallbackRegion(t *testing.T) {
	merged := DefaultVocabulary().Merge(Vocabulary{FallbackRegion: "Elsewhere"})

	assert.Equal(t, "Elsewhere", merged.FallbackRegion)
	assert.Contains(t, merged.Regions, "Elsewhere")
	assert.NoError(t, merged.Validate())
}

func TestVocabulary_MergeFallbackRegionUsesStoredSpelling(t *testing.T) {
	merged := DefaultVocabulary().Merge(Vocabulary{FallbackRegion: "  bay area "})

	assert.Equal(t, "Bay Area", merged.FallbackRegion)
	assert.Equal(t, len(DefaultVocabulary().Regions), len(merged.Regions))
	require.NoError(t, merged.Validate())

	p, err := New(merged)
	require.NoError(t, err)
	assert.Equal(t, "Bay Area", p.Parse("Ana Ruiz\nLindsay, CA").Region)
}

func TestVocabulary_Validate(t *testing.T) {
	tests := []struct {
		name  string
		vocab Vocabulary
		err   string
	}{
		{
			name:  "no regions",
			vocab: Vocabulary{},
			err:   "vocabulary has no regions",
		},
		{
			name:  "unknown fallback",
			vocab: Vocabulary{Regions: []string{"A"}, FallbackRegion: "B"},
			err:   `fallback region "B" is not a known region`,
		},
		{
			name:  "fallback differs only in case",
			vocab: Vocabulary{Regions: []string{"Bay Area"}, FallbackRegion: "bay area"},
			err:   `fallback region "bay area" is not a known region`,
		},
		{
			name:  "uppercase city",
			vocab: Vocabulary{Regions: []string{"A"}, CityToRegion: map[string]string{"Fresno": "A"}},
			err:   "must be lowercase",
		},
		{
			name:  "city with unknown region",
			vocab: Vocabulary{Regions: []string{"A"}, CityToRegion: map[string]string{"fresno": "B"}},
			err:   `city "fresno" maps to unknown region "B"`,
		},
		{
			name: "alias with unknown certification",
			vocab: Vocabulary{
				Regions:              []string{"A"},
				Certifications:       []string{"X"},
				CertificationAliases: map[string]string{"y": "Z"},
			},
			err: `alias "y" maps to unknown certification "Z"`,
		},
		{
			name:  "empty list entry",
			vocab: Vocabulary{Regions: []string{"A"}, Programs: []string{" "}},
			err:   "programs contains an empty entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, tt.vocab.Validate(), tt.err)
		})
	}
}

func TestVocabulary_Summary(t *testing.T) {
	v := DefaultVocabulary()
	summary := v.Summary()

	assert.Equal(t, len(v.Regions), summary["regions"])
	assert.Equal(t, len(v.Certifications), summary["certifications"])
	assert.Equal(t, len(v.CityToRegion), summary["cityToRegion"])
	assert.Len(t, summary, 7)
}

func TestNew_InvalidVocabulary(t *testing.T) {
	p, err := New(Vocabulary{})

	assert.Nil(t, p)
	assert.ErrorContains(t, err, "invalid vocabulary")
}

func TestNew_CustomVocabulary(t *testing.T) {
	p, err := New(Vocabulary{
		Regions:              []string{"North Valley", "Elsewhere"},
		FallbackRegion:       "Elsewhere",
		EHRSystems:           []string{"Medimax"},
		Programs:             []string{"HOPE"},
		Languages:            []string{"Tongan"},
		Certifications:       []string{"Navigator Badge"},
		CityToRegion:         map[string]string{"chico": "North Valley"},
		CertificationAliases: map[string]string{"navigator": "Navigator Badge"},
	})
	require.NoError(t, err)

	got := p.Parse("Chico, CA\nUses Medimax for HOPE clients. Speaks Tongan. Certified navigator.")

	assert.Equal(t, "Chico", got.City)
	assert.Equal(t, "North Valley", got.Region)
	assert.Equal(t, []string{"Medimax"}, got.EHRSystems)
	assert.Equal(t, []string{"HOPE"}, got.Programs)
	assert.Equal(t, []string{"Tongan"}, got.Languages)
	assert.Equal(t, []string{"Navigator Badge"}, got.Certifications)
}

func TestParser_VocabularyReturnsCopy(t *testing.T) {
	p := Default()
	v := p.Vocabulary()
	v.Languages[0] = "Changed"

	assert.Equal(t, DefaultVocabulary().Languages, p.Vocabulary().Languages)
}
