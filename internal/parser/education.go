package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"chwresume/internal/types"
)

const maxEducationEntries = 3

// educationState is the position of the education walk
type educationState int

const (
	educationOutside educationState = iota
	educationInSection
)

var (
	// Keywords must end at a word end: "Mastered" and "Adnan" are not degrees
	degreeRe = regexp.MustCompile(`(?i)\b(?:bachelor|associate|master|mba|mph|msw|bsn|adn|doctorate|phd|certificate|diploma|degree|ged|licenciatura|maestr[ií]a|doctorado)(?:'?s)?(?:$|[^\p{L}\p{N}_])|\b(?:ph\.d|b\.s|b\.a|m\.s|m\.a|a\.a|a\.s)\.?(?:$|[^\p{L}\p{N}_])`)

	// "Fresno State" and "Cal Poly" name schools without a keyword
	institutionRe = regexp.MustCompile(`(?i)\b(?:university|college|school|institute|academy|polytechnic|universidad|colegio|escuela|instituto)\b|\b(?:UC|CSU|UCLA|USC|UCSF|SDSU|SJSU|SFSU|CSUF)\b|\b\p{L}+ (?:state|poly|tech)$`)

	yearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

	// yearPhraseRe also removes the words that usually travel with a year
	yearPhraseRe = regexp.MustCompile(fmt.Sprintf(
		`(?i)(?:\b(?:expected|anticipated|graduated|graduation|class of|grad)\b:?\s*)?(?:\b(?:%s)\.?,?\s+)?\b(?:19|20)\d{2}\b`,
		monthNamePattern))

	bareYearTokenRe = regexp.MustCompile(`^\d{4}$`)
)

// eduSegment is one separator-delimited piece of an education line
type eduSegment struct {
	text       string
	afterComma bool
}

// educationWalker carves an education section into entries
type educationWalker struct {
	lines   []string
	state   educationState
	entries []types.EducationEntry
	used    map[int]bool
}

func extractEducation(lines []string) []types.EducationEntry {
	w := &educationWalker{
		lines:   lines,
		entries: []types.EducationEntry{},
		used:    make(map[int]bool),
	}

	for i, line := range lines {
		if len(w.entries) >= maxEducationEntries {
			break
		}
		w.step(i, strings.TrimSpace(line))
	}

	return w.entries
}

func (w *educationWalker) step(i int, line string) {
	if line == "" {
		return
	}

	kind, rest, header := lineSection(line)
	if header {
		switch {
		case kind == sectionEducation:
			w.state = educationInSection
			if rest != "" {
				w.candidate(i, rest)
			}
		case w.state == educationInSection && educationExitKinds[kind]:
			w.state = educationOutside
		}
		return
	}

	if w.state != educationInSection || w.used[i] {
		return
	}

	w.candidate(i, line)
}

func (w *educationWalker) candidate(i int, line string) {
	if !degreeRe.MatchString(line) && !yearRe.MatchString(line) {
		return
	}
	w.used[i] = true

	entry := types.EducationEntry{Year: lastYear(line)}
	segments := educationSegments(line)

	switch len(segments) {
	case 0:
		return
	case 1:
		if degreeRe.MatchString(segments[0].text) {
			entry.Degree = segments[0].text
		} else if plausibleInstitution(segments[0].text) {
			entry.Institution = segments[0].text
		}
	default:
		entry.Degree, entry.Institution = classifySegments(segments)
	}

	w.fillFromNeighbor(i, &entry)

	if entry.Degree == "" && entry.Institution == "" {
		return
	}
	w.entries = append(w.entries, entry)
}

// fillFromNeighbor completes a half-filled entry from the next line, then
// the previous line.
func (w *educationWalker) fillFromNeighbor(i int, entry *types.EducationEntry) {
	if (entry.Degree == "") == (entry.Institution == "") {
		return
	}

	wantDegree := entry.Degree == ""
	for _, idx := range []int{nextNonEmpty(w.lines, i), previousNonEmpty(w.lines, i)} {
		if idx < 0 || w.used[idx] {
			continue
		}
		neighbor := strings.TrimSpace(w.lines[idx])
		if isHeader(neighbor) || degreeRe.MatchString(neighbor) != wantDegree {
			continue
		}

		segments := educationSegments(neighbor)
		if len(segments) == 0 {
			continue
		}

		if wantDegree {
			degree, _ := classifySegments(segments)
			if degree == "" {
				continue
			}
			entry.Degree = degree
		} else {
			institution := firstInstitution(segments)
			if institution == "" {
				continue
			}
			entry.Institution = institution
		}

		if entry.Year == "" {
			entry.Year = lastYear(neighbor)
		}
		w.used[idx] = true
		return
	}
}

// classifySegments picks the degree and institution out of a split line.
// A plain comma-joined segment right after the degree is its field of
// study: "Bachelor of Science, Public Health".
func classifySegments(segments []eduSegment) (string, string) {
	degreeIdx := -1
	for j, seg := range segments {
		if degreeRe.MatchString(seg.text) {
			degreeIdx = j
			break
		}
	}

	institutionIdx := -1
	for j, seg := range segments {
		if j != degreeIdx && institutionRe.MatchString(seg.text) {
			institutionIdx = j
			break
		}
	}

	degree := ""
	fieldIdx := -1
	if degreeIdx >= 0 {
		degree = segments[degreeIdx].text
		next := degreeIdx + 1
		if next < len(segments) && next != institutionIdx && segments[next].afterComma &&
			!degreeRe.MatchString(segments[next].text) && plausibleInstitution(segments[next].text) {
			degree += ", " + segments[next].text
			fieldIdx = next
		}
	}

	if institutionIdx < 0 {
		for j, seg := range segments {
			if j != degreeIdx && j != fieldIdx && plausibleInstitution(seg.text) {
				institutionIdx = j
				break
			}
		}
	}

	institution := ""
	if institutionIdx >= 0 {
		institution = segments[institutionIdx].text
	}

	return degree, institution
}

func firstInstitution(segments []eduSegment) string {
	for _, seg := range segments {
		if institutionRe.MatchString(seg.text) {
			return seg.text
		}
	}
	for _, seg := range segments {
		if plausibleInstitution(seg.text) {
			return seg.text
		}
	}
	return ""
}

// educationSegments strips years and splits a line on , | – — and spaced hyphens
func educationSegments(line string) []eduSegment {
	body := yearPhraseRe.ReplaceAllString(stripBullet(line), " ")

	var segments []eduSegment
	afterComma := false
	last := 0
	flush := func(text string, comma bool) {
		text = strings.Trim(text, segmentTrim)
		text = whitespaceRunRe.ReplaceAllString(text, " ")
		if text != "" {
			segments = append(segments, eduSegment{text: text, afterComma: comma})
		}
	}

	for _, loc := range segmentSplitRe.FindAllStringIndex(body, -1) {
		flush(body[last:loc[0]], afterComma)
		afterComma = strings.TrimSpace(body[loc[0]:loc[1]]) == ","
		last = loc[1]
	}
	flush(body[last:], afterComma)

	return segments
}

func plausibleInstitution(s string) bool {
	if institutionRe.MatchString(s) {
		return true
	}
	return utf8.RuneCountInString(s) > 3 && !bareYearTokenRe.MatchString(s)
}

func lastYear(line string) string {
	years := yearRe.FindAllString(line, -1)
	if len(years) == 0 {
		return ""
	}
	return years[len(years)-1]
}
