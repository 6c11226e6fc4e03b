package parser

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Vocabulary holds the closed sets of known values the parser matches against.
// A Vocabulary is treated as read-only once handed to New.
type Vocabulary struct {
	Regions              []string          `json:"regions" yaml:"regions"`
	FallbackRegion       string            `json:"fallbackRegion" yaml:"fallbackRegion"`
	EHRSystems           []string          `json:"ehrSystems" yaml:"ehrSystems"`
	Programs             []string          `json:"programs" yaml:"programs"`
	Languages            []string          `json:"languages" yaml:"languages"`
	Certifications       []string          `json:"certifications" yaml:"certifications"`
	CityToRegion         map[string]string `json:"cityToRegion" yaml:"cityToRegion"`
	CertificationAliases map[string]string `json:"certificationAliases" yaml:"certificationAliases"`
}

var defaultRegions = []string{
	"Bay Area",
	"Central Coast",
	"Central Valley",
	"Imperial Valley",
	"Inland Empire",
	"Los Angeles",
	"North Coast",
	"Northern California",
	"Orange County",
	"Sacramento",
	"San Diego",
	"Other California",
}

const defaultFallbackRegion = "Other California"

var defaultEHRSystems = []string{
	"Epic",
	"OCHIN Epic",
	"eClinicalWorks",
	"eCW",
	"NextGen",
	"athenahealth",
	"Cerner",
	"Allscripts",
	"Practice Fusion",
	"Greenway",
	"Meditech",
	"Athena",
	"Azara",
	"i2i",
	"Unite Us",
	"Findhelp",
}

var defaultPrograms = []string{
	"ECM",
	"CCM",
	"TCM",
	"BH-ASO",
	"CalAIM",
	"Medi-Cal",
	"Enhanced Care Management",
	"Community Supports",
	"Complex Case Management",
	"Transitional Care",
	"Whole Person Care",
	"Health Homes",
	"Covered California",
	"CalFresh",
	"WIC",
	"Ryan White",
	"Street Medicine",
	"Promotores",
}

var defaultLanguages = []string{
	"English",
	"Spanish",
	"Hmong",
	"Punjabi",
	"Tagalog",
	"Vietnamese",
	"Mandarin",
	"Cantonese",
	"Korean",
	"Arabic",
	"Armenian",
	"Russian",
	"Farsi",
	"Khmer",
	"Lao",
	"Mixteco",
	"Triqui",
	"Zapoteco",
	"Portuguese",
	"American Sign Language",
}

var defaultCertifications = []string{
	"CHW Certification (CA)",
	"Certified Medical Assistant (CMA)",
	"Registered Medical Assistant (RMA)",
	"CPR/BLS",
	"Mental Health First Aid",
	"Promotor(a) Certificate",
	"Certified Peer Support Specialist",
	"HIPAA Certification",
	"Certified Enrollment Counselor",
	"Certified Application Counselor (CAC)",
	"Certified Alcohol and Drug Counselor (CADC)",
	"Motivational Interviewing",
	"Doula Certification",
	"Trauma-Informed Care",
	"Phlebotomy Technician (CPT)",
}

var defaultCityToRegion = map[string]string{
	"alameda":          "Bay Area",
	"berkeley":         "Bay Area",
	"concord":          "Bay Area",
	"east palo alto":   "Bay Area",
	"fremont":          "Bay Area",
	"hayward":          "Bay Area",
	"oakland":          "Bay Area",
	"richmond":         "Bay Area",
	"san francisco":    "Bay Area",
	"san jose":         "Bay Area",
	"san mateo":        "Bay Area",
	"santa rosa":       "Bay Area",
	"vallejo":          "Bay Area",
	"gilroy":           "Central Coast",
	"salinas":          "Central Coast",
	"san luis obispo":  "Central Coast",
	"santa barbara":    "Central Coast",
	"santa cruz":       "Central Coast",
	"santa maria":      "Central Coast",
	"watsonville":      "Central Coast",
	"bakersfield":      "Central Valley",
	"delano":           "Central Valley",
	"fresno":           "Central Valley",
	"hanford":          "Central Valley",
	"madera":           "Central Valley",
	"merced":           "Central Valley",
	"modesto":          "Central Valley",
	"stockton":         "Central Valley",
	"tulare":           "Central Valley",
	"turlock":          "Central Valley",
	"visalia":          "Central Valley",
	"brawley":          "Imperial Valley",
	"calexico":         "Imperial Valley",
	"el centro":        "Imperial Valley",
	"coachella":        "Inland Empire",
	"fontana":          "Inland Empire",
	"indio":            "Inland Empire",
	"moreno valley":    "Inland Empire",
	"ontario":          "Inland Empire",
	"palm springs":     "Inland Empire",
	"riverside":        "Inland Empire",
	"san bernardino":   "Inland Empire",
	"compton":          "Los Angeles",
	"east los angeles": "Los Angeles",
	"el monte":         "Los Angeles",
	"lancaster":        "Los Angeles",
	"long beach":       "Los Angeles",
	"los angeles":      "Los Angeles",
	"palmdale":         "Los Angeles",
	"pasadena":         "Los Angeles",
	"pomona":           "Los Angeles",
	"arcata":           "North Coast",
	"eureka":           "North Coast",
	"ukiah":            "North Coast",
	"chico":            "Northern California",
	"redding":          "Northern California",
	"yuba city":        "Northern California",
	"anaheim":          "Orange County",
	"garden grove":     "Orange County",
	"irvine":           "Orange County",
	"santa ana":        "Orange County",
	"elk grove":        "Sacramento",
	"roseville":        "Sacramento",
	"sacramento":       "Sacramento",
	"woodland":         "Sacramento",
	"chula vista":      "San Diego",
	"el cajon":         "San Diego",
	"escondido":        "San Diego",
	"national city":    "San Diego",
	"oceanside":        "San Diego",
	"san diego":        "San Diego",
	"san ysidro":       "San Diego",
}

var defaultCertificationAliases = map[string]string{
	"chw certified":                       "CHW Certification (CA)",
	"chw certification":                   "CHW Certification (CA)",
	"chw certificate":                     "CHW Certification (CA)",
	"certified community health worker":   "CHW Certification (CA)",
	"community health worker certificate": "CHW Certification (CA)",
	"cma":                                 "Certified Medical Assistant (CMA)",
	"certified medical assistant":         "Certified Medical Assistant (CMA)",
	"rma":                                 "Registered Medical Assistant (RMA)",
	"registered medical assistant":        "Registered Medical Assistant (RMA)",
	"cpr":                                 "CPR/BLS",
	"bls":                                 "CPR/BLS",
	"basic life support":                  "CPR/BLS",
	"mhfa":                                "Mental Health First Aid",
	"promotor":                            "Promotor(a) Certificate",
	"promotora":                           "Promotor(a) Certificate",
	"promotores de salud":                 "Promotor(a) Certificate",
	"peer support specialist":             "Certified Peer Support Specialist",
	"peer support certification":          "Certified Peer Support Specialist",
	"hipaa":                               "HIPAA Certification",
	"certified enrollment":                "Certified Enrollment Counselor",
	"cac":                                 "Certified Application Counselor (CAC)",
	"certified application counselor":     "Certified Application Counselor (CAC)",
	"cadc":                                "Certified Alcohol and Drug Counselor (CADC)",
	"motivational interview":              "Motivational Interviewing",
	"doula":                               "Doula Certification",
	"trauma informed":                     "Trauma-Informed Care",
	"phlebotomy":                          "Phlebotomy Technician (CPT)",
}

// DefaultVocabulary returns a fresh copy of the built-in vocabulary
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Regions:              slices.Clone(defaultRegions),
		FallbackRegion:       defaultFallbackRegion,
		EHRSystems:           slices.Clone(defaultEHRSystems),
		Programs:             slices.Clone(defaultPrograms),
		Languages:            slices.Clone(defaultLanguages),
		Certifications:       slices.Clone(defaultCertifications),
		CityToRegion:         maps.Clone(defaultCityToRegion),
		CertificationAliases: maps.Clone(defaultCertificationAliases),
	}
}

// Clone returns a deep copy of the vocabulary
func (v Vocabulary) Clone() Vocabulary {
	return Vocabulary{
		Regions:              slices.Clone(v.Regions),
		FallbackRegion:       v.FallbackRegion,
		EHRSystems:           slices.Clone(v.EHRSystems),
		Programs:             slices.Clone(v.Programs),
		Languages:            slices.Clone(v.Languages),
		Certifications:       slices.Clone(v.Certifications),
		CityToRegion:         maps.Clone(v.CityToRegion),
		CertificationAliases: maps.Clone(v.CertificationAliases),
	}
}

// Merge returns a new vocabulary with other's entries added on top of v.
// List entries are appended unless already present (case-insensitive).
// Map entries are added or replaced; keys are lowercased.
func (v Vocabulary) Merge(other Vocabulary) Vocabulary {
	merged := v.Clone()
	merged.Regions = appendUnique(merged.Regions, other.Regions)
	merged.EHRSystems = appendUnique(merged.EHRSystems, other.EHRSystems)
	merged.Programs = appendUnique(merged.Programs, other.Programs)
	merged.Languages = appendUnique(merged.Languages, other.Languages)
	merged.Certifications = appendUnique(merged.Certifications, other.Certifications)

	if fallback := strings.TrimSpace(other.FallbackRegion); fallback != "" {
		merged.Regions = appendUnique(merged.Regions, []string{fallback})
		// the fallback is emitted verbatim, so take the spelling stored in Regions
		merged.FallbackRegion = merged.Regions[slices.IndexFunc(merged.Regions, func(s string) bool {
			return strings.EqualFold(s, fallback)
		})]
	}

	if merged.CityToRegion == nil {
		merged.CityToRegion = make(map[string]string, len(other.CityToRegion))
	}
	for city, region := range other.CityToRegion {
		merged.CityToRegion[strings.ToLower(strings.TrimSpace(city))] = region
	}

	if merged.CertificationAliases == nil {
		merged.CertificationAliases = make(map[string]string, len(other.CertificationAliases))
	}
	for alias, canonical := range other.CertificationAliases {
		merged.CertificationAliases[strings.ToLower(strings.TrimSpace(alias))] = canonical
	}

	return merged
}

// Validate checks that every mapped value points into its closed set
func (v Vocabulary) Validate() error {
	if len(v.Regions) == 0 {
		return fmt.Errorf("vocabulary has no regions")
	}

	if v.FallbackRegion != "" && !slices.Contains(v.Regions, v.FallbackRegion) {
		return fmt.Errorf("fallback region %q is not a known region", v.FallbackRegion)
	}

	for _, city := range slices.Sorted(maps.Keys(v.CityToRegion)) {
		if strings.TrimSpace(city) == "" {
			return fmt.Errorf("city map contains an empty city name")
		}
		if city != strings.ToLower(city) {
			return fmt.Errorf("city %q must be lowercase", city)
		}
		if region := v.CityToRegion[city]; !slices.Contains(v.Regions, region) {
			return fmt.Errorf("city %q maps to unknown region %q", city, region)
		}
	}

	for _, alias := range slices.Sorted(maps.Keys(v.CertificationAliases)) {
		if strings.TrimSpace(alias) == "" {
			return fmt.Errorf("certification alias map contains an empty alias")
		}
		if canonical := v.CertificationAliases[alias]; !slices.Contains(v.Certifications, canonical) {
			return fmt.Errorf("alias %q maps to unknown certification %q", alias, canonical)
		}
	}

	for name, list := range map[string][]string{
		"regions":        v.Regions,
		"ehrSystems":     v.EHRSystems,
		"programs":       v.Programs,
		"languages":      v.Languages,
		"certifications": v.Certifications,
	} {
		for _, term := range list {
			if strings.TrimSpace(term) == "" {
				return fmt.Errorf("%s contains an empty entry", name)
			}
		}
	}

	return nil
}

// Summary returns the number of entries per table
func (v Vocabulary) Summary() map[string]int {
	return map[string]int{
		"regions":              len(v.Regions),
		"ehrSystems":           len(v.EHRSystems),
		"programs":             len(v.Programs),
		"languages":            len(v.Languages),
		"certifications":       len(v.Certifications),
		"cityToRegion":         len(v.CityToRegion),
		"certificationAliases": len(v.CertificationAliases),
	}
}

func appendUnique(base, extra []string) []string {
	for _, term := range extra {
		term = strings.TrimSpace(term)
		if term == "" || containsFold(base, term) {
			continue
		}
		base = append(base, term)
	}
	return base
}

func containsFold(list []string, term string) bool {
	return slices.ContainsFunc(list, func(s string) bool {
		return strings.EqualFold(s, term)
	})
}
