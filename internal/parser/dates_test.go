package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jan 2020", "2020-01"},
		{"January 2020", "2020-01"},
		{"September, 2019", "2019-09"},
		{"Sept. 2019", "2019-09"},
		{"sep 2019", "2019-09"},
		{"03/2018", "2018-03"},
		{"3/15/2018", "2018-03"},
		{"2017", "2017-01"},
		{"13/2020", "2020-01"},
		{"enero 2021", "2021-01"},
		{"Dic 2022", "2022-12"},
		{"Agosto 2015", "2015-08"},
		{"garbage", ""},
		{"", ""},
		{"1850", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeDate(tt.input))
		})
	}
}

func TestFindDateRange(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		found     bool
		start     string
		end       string
		current   bool
		matchText string
	}{
		{
			name:      "month year to present",
			line:      "Care Coordinator  Jan 2020 - Present",
			found:     true,
			start:     "2020-01",
			current:   true,
			matchText: "Jan 2020 - Present",
		},
		{
			name:      "bare years with en dash",
			line:      "2018 – 2020",
			found:     true,
			start:     "2018-01",
			end:       "2020-01",
			matchText: "2018 – 2020",
		},
		{
			name:      "to separator",
			line:      "May 2019 to Aug 2021",
			found:     true,
			start:     "2019-05",
			end:       "2021-08",
			matchText: "May 2019 to Aug 2021",
		},
		{
			name:      "spanish months and actual",
			line:      "Promotora, Enero 2020 - Actual",
			found:     true,
			start:     "2020-01",
			current:   true,
			matchText: "Enero 2020 - Actual",
		},
		{
			name:      "slash dates with em dash",
			line:      "01/2019 — 06/2020",
			found:     true,
			start:     "2019-01",
			end:       "2020-06",
			matchText: "01/2019 — 06/2020",
		},
		{
			name:      "current keyword",
			line:      "2021-Current",
			found:     true,
			start:     "2021-01",
			current:   true,
			matchText: "2021-Current",
		},
		{
			name:  "no range in prose",
			line:  "Worked 40 hours per week",
			found: false,
		},
		{
			name:  "phone number is not a range",
			line:  "(555) 123-4567",
			found: false,
		},
		{
			name:  "single year",
			line:  "Graduated 2019",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := findDateRange(tt.line)
			assert.Equal(t, tt.found, ok)
			if !tt.found {
				return
			}
			assert.Equal(t, tt.start, r.start)
			assert.Equal(t, tt.end, r.end)
			assert.Equal(t, tt.current, r.current)
			assert.Equal(t, tt.matchText, r.matched)
		})
	}
}

func TestAlternationPrefersLongerWords(t *testing.T) {
	assert.Equal(t, "september|sept|sep", alternation([]string{"sep", "september", "sept"}))
}
