package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// sectionKind identifies a resume section by its header
type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionWork
	sectionEducation
	sectionSkills
	sectionCertifications
	sectionReferences
	sectionAwards
	sectionVolunteer
	sectionTraining
	sectionSummary
	sectionLanguages
	sectionOther
)

// maxHeaderLength is the exclusive rune limit for a line to count as a header.
// Longer lines are prose that happens to start with a header word.
const maxHeaderLength = 60

var sectionPhrases = map[string]sectionKind{
	"experience":                sectionWork,
	"work experience":           sectionWork,
	"professional experience":   sectionWork,
	"relevant experience":       sectionWork,
	"related experience":        sectionWork,
	"employment":                sectionWork,
	"employment history":        sectionWork,
	"work history":              sectionWork,
	"career history":            sectionWork,
	"experiencia":               sectionWork,
	"experiencia laboral":       sectionWork,
	"experiencia profesional":   sectionWork,
	"historial laboral":         sectionWork,
	"education":                 sectionEducation,
	"academic":                  sectionEducation,
	"academics":                 sectionEducation,
	"academic background":       sectionEducation,
	"degrees":                   sectionEducation,
	"qualifications":            sectionEducation,
	"educación":                 sectionEducation,
	"educacion":                 sectionEducation,
	"formación académica":       sectionEducation,
	"formacion academica":       sectionEducation,
	"skills":                    sectionSkills,
	"core skills":               sectionSkills,
	"key skills":                sectionSkills,
	"technical skills":          sectionSkills,
	"competencies":              sectionSkills,
	"core competencies":         sectionSkills,
	"habilidades":               sectionSkills,
	"certifications":            sectionCertifications,
	"certificates":              sectionCertifications,
	"licenses":                  sectionCertifications,
	"licensure":                 sectionCertifications,
	"certificaciones":           sectionCertifications,
	"references":                sectionReferences,
	"referencias":               sectionReferences,
	"awards":                    sectionAwards,
	"honors":                    sectionAwards,
	"achievements":              sectionAwards,
	"volunteer":                 sectionVolunteer,
	"volunteer experience":      sectionVolunteer,
	"volunteering":              sectionVolunteer,
	"community involvement":     sectionVolunteer,
	"voluntariado":              sectionVolunteer,
	"training":                  sectionTraining,
	"trainings":                 sectionTraining,
	"professional development":  sectionTraining,
	"capacitación":              sectionTraining,
	"capacitacion":              sectionTraining,
	"summary":                   sectionSummary,
	"objective":                 sectionSummary,
	"profile":                   sectionSummary,
	"professional summary":      sectionSummary,
	"career summary":            sectionSummary,
	"career objective":          sectionSummary,
	"professional profile":      sectionSummary,
	"summary of qualifications": sectionSummary,
	"about me":                  sectionSummary,
	"about":                     sectionSummary,
	"resumen":                   sectionSummary,
	"resumen profesional":       sectionSummary,
	"objetivo":                  sectionSummary,
	"perfil":                    sectionSummary,
	"perfil profesional":        sectionSummary,
	"languages":                 sectionLanguages,
	"idiomas":                   sectionLanguages,
	"projects":                  sectionOther,
	"interests":                 sectionOther,
	"activities":                sectionOther,
	"publications":              sectionOther,
}

var (
	headerTrimChars    = " \t#*=_•·:|>-–—"
	headerJoinerRe     = regexp.MustCompile(`\s*(?:&|/|,|\+|\band\b|\by\b)\s*`)
	whitespaceRunRe    = regexp.MustCompile(`\s+`)
	bulletPrefixes     = []string{"•", "·", "▪", "◦", "●", "‣", "○", "■", "□", "➢", "►", "✓", "-", "*", "–", "—"}
	workExitKinds      = kindSet(sectionEducation, sectionSkills, sectionCertifications, sectionReferences, sectionAwards, sectionVolunteer, sectionTraining, sectionSummary, sectionLanguages, sectionOther)
	educationExitKinds = kindSet(sectionWork, sectionSkills, sectionCertifications, sectionReferences, sectionAwards, sectionVolunteer)
)

func kindSet(kinds ...sectionKind) map[sectionKind]bool {
	set := make(map[sectionKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

// headerKind reports the section a whole line names, if any.
// "Education & Training" takes the kind of its first phrase.
func headerKind(line string) (sectionKind, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || utf8.RuneCountInString(trimmed) >= maxHeaderLength {
		return sectionNone, false
	}

	normalized := normalizeHeader(trimmed)
	if normalized == "" {
		return sectionNone, false
	}

	if kind, ok := sectionPhrases[normalized]; ok {
		return kind, true
	}

	parts := headerJoinerRe.Split(normalized, -1)
	if len(parts) < 2 {
		return sectionNone, false
	}

	first := sectionNone
	for _, part := range parts {
		if part == "" {
			continue
		}
		kind, ok := sectionPhrases[part]
		if !ok {
			return sectionNone, false
		}
		if first == sectionNone {
			first = kind
		}
	}

	return first, first != sectionNone
}

// inlineHeader splits "Objective: text" into its section kind and trailing text
func inlineHeader(line string) (sectionKind, string, bool) {
	trimmed := strings.TrimSpace(line)
	idx := strings.Index(trimmed, ":")
	if idx <= 0 {
		return sectionNone, "", false
	}

	kind, ok := headerKind(trimmed[:idx])
	if !ok {
		return sectionNone, "", false
	}

	return kind, strings.TrimSpace(trimmed[idx+1:]), true
}

// lineSection reports the section a line opens, whether it is a bare
// header or an inline "Header: content" line that is itself short.
func lineSection(line string) (sectionKind, string, bool) {
	if isBullet(line) && !isDecorated(line) {
		return sectionNone, "", false
	}
	if kind, ok := headerKind(line); ok {
		return kind, "", true
	}
	if utf8.RuneCountInString(strings.TrimSpace(line)) >= maxHeaderLength {
		return sectionNone, "", false
	}
	return inlineHeader(line)
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.Trim(s, headerTrimChars))
	s = whitespaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func isHeader(line string) bool {
	_, _, ok := lineSection(line)
	return ok
}

func isBullet(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// isDecorated reports a line wrapped in the same ornament on both sides,
// as in "-- Experience --" or "* Skills *"
func isDecorated(line string) bool {
	trimmed := strings.TrimSpace(line)
	first, _ := utf8.DecodeRuneInString(trimmed)
	last, _ := utf8.DecodeLastRuneInString(trimmed)
	return len(trimmed) > 1 && first == last && strings.ContainsRune(headerTrimChars, first)
}

func stripBullet(line string) string {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		}
	}
	return trimmed
}

func isShort(line string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(line)) < maxHeaderLength
}
