package formatters

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"chwresume/internal/parser"
	"chwresume/internal/types"

	"gopkg.in/yaml.v3"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("yaml", "any", &YAMLFormatter{})
	registry.RegisterFormatter("text", "ParsedResume", &ResumeTextFormatter{})
	registry.RegisterFormatter("markdown", "ParsedResume", &ResumeMarkdownFormatter{})
	registry.RegisterFormatter("text", "Vocabulary", &VocabularyTextFormatter{})
	registry.RegisterFormatter("markdown", "Vocabulary", &VocabularyMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	return slices.Sorted(maps.Keys(fr.formatters))
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ParsedResume, *types.ParsedResume:
		return "ParsedResume"
	case parser.Vocabulary, *parser.Vocabulary:
		return "Vocabulary"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// YAMLFormatter handles YAML formatting for any data type
type YAMLFormatter struct{}

func (yf *YAMLFormatter) Format(data any) (string, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (yf *YAMLFormatter) SupportedType() string {
	return "any"
}

func asResume(data any) (types.ParsedResume, error) {
	switch v := data.(type) {
	case types.ParsedResume:
		return v, nil
	case *types.ParsedResume:
		if v == nil {
			return types.ParsedResume{}, fmt.Errorf("nil ParsedResume")
		}
		return *v, nil
	default:
		return types.ParsedResume{}, fmt.Errorf("expected ParsedResume, got %T", data)
	}
}

func asVocabulary(data any) (parser.Vocabulary, error) {
	switch v := data.(type) {
	case parser.Vocabulary:
		return v, nil
	case *parser.Vocabulary:
		if v == nil {
			return parser.Vocabulary{}, fmt.Errorf("nil Vocabulary")
		}
		return *v, nil
	default:
		return parser.Vocabulary{}, fmt.Errorf("expected Vocabulary, got %T", data)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return "(none)"
	}
	return strings.Join(list, ", ")
}

func fullName(r types.ParsedResume) string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

func location(r types.ParsedResume) string {
	switch {
	case r.City != "" && r.Region != "":
		return fmt.Sprintf("%s (%s)", r.City, r.Region)
	case r.City != "":
		return r.City
	default:
		return r.Region
	}
}

func dateSpan(w types.WorkEntry) string {
	end := w.EndDate
	if w.Current {
		end = "Present"
	}
	switch {
	case w.StartDate == "" && end == "":
		return ""
	case end == "":
		return w.StartDate
	default:
		return w.StartDate + " - " + end
	}
}

func workLine(w types.WorkEntry) string {
	line := orNone(w.Title)
	if w.Employer != "" {
		line += " at " + w.Employer
	}
	if span := dateSpan(w); span != "" {
		line += " (" + span + ")"
	}
	return line
}

func educationLine(e types.EducationEntry) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{e.Degree, e.Institution} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	line := strings.Join(parts, ", ")
	if e.Year != "" {
		line += " (" + e.Year + ")"
	}
	return line
}

// ResumeTextFormatter handles text formatting for parsed resumes
type ResumeTextFormatter struct{}

func (rtf *ResumeTextFormatter) Format(data any) (string, error) {
	result, err := asResume(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== CANDIDATE ===\n")
	output.WriteString(fmt.Sprintf("Name: %s\n", orNone(fullName(result))))
	output.WriteString(fmt.Sprintf("Email: %s\n", orNone(result.Email)))
	output.WriteString(fmt.Sprintf("Phone: %s\n", orNone(result.Phone)))
	output.WriteString(fmt.Sprintf("Location: %s\n\n", orNone(location(result))))

	output.WriteString("=== SUMMARY ===\n")
	output.WriteString(orNone(result.Objective))
	output.WriteString("\n\n")

	output.WriteString("=== WORK HISTORY ===\n")
	if len(result.WorkHistory) == 0 {
		output.WriteString("(none)\n")
	}
	for i, w := range result.WorkHistory {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, workLine(w)))
	}
	output.WriteString("\n")

	output.WriteString("=== EDUCATION ===\n")
	if len(result.Education) == 0 {
		output.WriteString("(none)\n")
	}
	for i, e := range result.Education {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, educationLine(e)))
	}
	output.WriteString("\n")

	output.WriteString("=== KEYWORDS ===\n")
	output.WriteString(fmt.Sprintf("EHR Systems: %s\n", joinOrNone(result.EHRSystems)))
	output.WriteString(fmt.Sprintf("Programs: %s\n", joinOrNone(result.Programs)))
	output.WriteString(fmt.Sprintf("Languages: %s\n", joinOrNone(result.Languages)))
	output.WriteString(fmt.Sprintf("Certifications: %s\n", joinOrNone(result.Certifications)))

	return output.String(), nil
}

func (rtf *ResumeTextFormatter) SupportedType() string {
	return "ParsedResume"
}

// ResumeMarkdownFormatter handles markdown formatting for parsed resumes
type ResumeMarkdownFormatter struct{}

func (rmf *ResumeMarkdownFormatter) Format(data any) (string, error) {
	result, err := asResume(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Parsed Resume\n\n")
	if name := fullName(result); name != "" {
		output.WriteString(fmt.Sprintf("## %s\n\n", name))
	}
	output.WriteString(fmt.Sprintf("- **Email:** %s\n", orNone(result.Email)))
	output.WriteString(fmt.Sprintf("- **Phone:** %s\n", orNone(result.Phone)))
	output.WriteString(fmt.Sprintf("- **Location:** %s\n\n", orNone(location(result))))

	if result.Objective != "" {
		output.WriteString("## Summary\n\n")
		output.WriteString(result.Objective)
		output.WriteString("\n\n")
	}

	if len(result.WorkHistory) > 0 {
		output.WriteString("## Work History\n\n")
		output.WriteString("| Title | Employer | Dates |\n")
		output.WriteString("|-------|----------|-------|\n")
		for _, w := range result.WorkHistory {
			output.WriteString(fmt.Sprintf("| %s | %s | %s |\n", w.Title, w.Employer, dateSpan(w)))
		}
		output.WriteString("\n")
	}

	if len(result.Education) > 0 {
		output.WriteString("## Education\n\n")
		for _, e := range result.Education {
			output.WriteString(fmt.Sprintf("- %s\n", educationLine(e)))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Keywords\n\n")
	output.WriteString(fmt.Sprintf("- **EHR Systems:** %s\n", joinOrNone(result.EHRSystems)))
	output.WriteString(fmt.Sprintf("- **Programs:** %s\n", joinOrNone(result.Programs)))
	output.WriteString(fmt.Sprintf("- **Languages:** %s\n", joinOrNone(result.Languages)))
	output.WriteString(fmt.Sprintf("- **Certifications:** %s\n", joinOrNone(result.Certifications)))

	return output.String(), nil
}

func (rmf *ResumeMarkdownFormatter) SupportedType() string {
	return "ParsedResume"
}

// VocabularyTextFormatter handles text formatting for the vocabulary
type VocabularyTextFormatter struct{}

func (vtf *VocabularyTextFormatter) Format(data any) (string, error) {
	v, err := asVocabulary(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	writeList := func(title string, list []string) {
		output.WriteString(fmt.Sprintf("=== %s (%d) ===\n", title, len(list)))
		for _, item := range list {
			output.WriteString(item)
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	writeList("REGIONS", v.Regions)
	output.WriteString(fmt.Sprintf("Fallback region: %s\n\n", orNone(v.FallbackRegion)))
	writeList("EHR SYSTEMS", v.EHRSystems)
	writeList("PROGRAMS", v.Programs)
	writeList("LANGUAGES", v.Languages)
	writeList("CERTIFICATIONS", v.Certifications)

	output.WriteString(fmt.Sprintf("=== CITIES (%d) ===\n", len(v.CityToRegion)))
	for _, city := range slices.Sorted(maps.Keys(v.CityToRegion)) {
		output.WriteString(fmt.Sprintf("%s -> %s\n", city, v.CityToRegion[city]))
	}
	output.WriteString("\n")

	output.WriteString(fmt.Sprintf("=== CERTIFICATION ALIASES (%d) ===\n", len(v.CertificationAliases)))
	for _, alias := range slices.Sorted(maps.Keys(v.CertificationAliases)) {
		output.WriteString(fmt.Sprintf("%s -> %s\n", alias, v.CertificationAliases[alias]))
	}

	return output.String(), nil
}

func (vtf *VocabularyTextFormatter) SupportedType() string {
	return "Vocabulary"
}

// VocabularyMarkdownFormatter handles markdown formatting for the vocabulary
type VocabularyMarkdownFormatter struct{}

func (vmf *VocabularyMarkdownFormatter) Format(data any) (string, error) {
	v, err := asVocabulary(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Vocabulary\n\n")

	writeList := func(title string, list []string) {
		output.WriteString(fmt.Sprintf("## %s\n\n", title))
		for _, item := range list {
			output.WriteString(fmt.Sprintf("- %s\n", item))
		}
		output.WriteString("\n")
	}

	writeList("Regions", v.Regions)
	output.WriteString(fmt.Sprintf("**Fallback region:** %s\n\n", orNone(v.FallbackRegion)))
	writeList("EHR Systems", v.EHRSystems)
	writeList("Programs", v.Programs)
	writeList("Languages", v.Languages)
	writeList("Certifications", v.Certifications)

	output.WriteString("## Cities\n\n")
	output.WriteString("| City | Region |\n")
	output.WriteString("|------|--------|\n")
	for _, city := range slices.Sorted(maps.Keys(v.CityToRegion)) {
		output.WriteString(fmt.Sprintf("| %s | %s |\n", city, v.CityToRegion[city]))
	}
	output.WriteString("\n")

	output.WriteString("## Certification Aliases\n\n")
	output.WriteString("| Alias | Certification |\n")
	output.WriteString("|-------|---------------|\n")
	for _, alias := range slices.Sorted(maps.Keys(v.CertificationAliases)) {
		output.WriteString(fmt.Sprintf("| %s | %s |\n", alias, v.CertificationAliases[alias]))
	}

	return output.String(), nil
}

func (vmf *VocabularyMarkdownFormatter) SupportedType() string {
	return "Vocabulary"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
