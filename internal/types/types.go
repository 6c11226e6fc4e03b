package types

// ParsedResume holds the structured hints extracted from raw resume text.
// Every field is a suggestion for a human to review; empty values are normal.
type ParsedResume struct {
	FirstName      string           `json:"firstName" yaml:"firstName"`
	LastName       string           `json:"lastName" yaml:"lastName"`
	Email          string           `json:"email" yaml:"email"`
	Phone          string           `json:"phone" yaml:"phone"`
	City           string           `json:"city" yaml:"city"`
	Region         string           `json:"region" yaml:"region"`
	Objective      string           `json:"objective" yaml:"objective"`
	EHRSystems     []string         `json:"ehrSystems" yaml:"ehrSystems"`
	Programs       []string         `json:"programs" yaml:"programs"`
	Certifications []string         `json:"certifications" yaml:"certifications"`
	Languages      []string         `json:"languages" yaml:"languages"`
	WorkHistory    []WorkEntry      `json:"workHistory" yaml:"workHistory"`
	Education      []EducationEntry `json:"education" yaml:"education"`
}

// WorkEntry is a single job found in the work history section.
// Dates are "YYYY-MM" or empty.
type WorkEntry struct {
	Employer  string `json:"employer" yaml:"employer"`
	Title     string `json:"title" yaml:"title"`
	StartDate string `json:"startDate" yaml:"startDate"`
	EndDate   string `json:"endDate" yaml:"endDate"`
	Current   bool   `json:"current" yaml:"current"`
}

// EducationEntry is a single degree/institution pair.
type EducationEntry struct {
	Institution string `json:"institution" yaml:"institution"`
	Degree      string `json:"degree" yaml:"degree"`
	Year        string `json:"year" yaml:"year"`
}

// NewParsedResume returns an empty resume whose collections are non-nil
func NewParsedResume() ParsedResume {
	return ParsedResume{
		EHRSystems:     []string{},
		Programs:       []string{},
		Certifications: []string{},
		Languages:      []string{},
		WorkHistory:    []WorkEntry{},
		Education:      []EducationEntry{},
	}
}

// FieldCount returns how many top-level fields carry a value
func (r ParsedResume) FieldCount() int {
	count := 0
	for _, s := range []string{r.FirstName, r.LastName, r.Email, r.Phone, r.City, r.Region, r.Objective} {
		if s != "" {
			count++
		}
	}
	for _, n := range []int{len(r.EHRSystems), len(r.Programs), len(r.Certifications), len(r.Languages), len(r.WorkHistory), len(r.Education)} {
		if n > 0 {
			count++
		}
	}
	return count
}

// ParseTextRequest is the body of a text parse request
type ParseTextRequest struct {
	Text string `json:"text"`
}

// ParseFileInput carries an uploaded or local file through extraction
type ParseFileInput struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}
