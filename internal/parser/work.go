package parser

import (
	"regexp"
	"strings"

	"chwresume/internal/types"
)

const maxWorkEntries = 5

// workState is the position of the work history walk
type workState int

const (
	workOutside workState = iota
	workInSection
	workInEntry
)

var (
	segmentSplitRe = regexp.MustCompile(`\s*[|,–—\t]\s*|\s+-\s*|\s*-\s+`)
	segmentTrim    = " \t()[]{}:;•·*"
)

// workWalker carves a work history section into dated entries.
// A line with a date range opens a new entry; the previous one is stored.
type workWalker struct {
	lines   []string
	state   workState
	pending types.WorkEntry
	entries []types.WorkEntry
	// used marks lines already taken as an employer by an earlier entry
	used map[int]bool
}

func extractWorkHistory(lines []string) []types.WorkEntry {
	w := &workWalker{
		lines:   lines,
		entries: []types.WorkEntry{},
		used:    make(map[int]bool),
	}

	for i, line := range lines {
		if len(w.entries) >= maxWorkEntries {
			break
		}
		w.step(i, strings.TrimSpace(line))
	}
	w.finalize()

	if len(w.entries) > maxWorkEntries {
		w.entries = w.entries[:maxWorkEntries]
	}
	return w.entries
}

func (w *workWalker) step(i int, line string) {
	if line == "" {
		return
	}

	kind, _, header := lineSection(line)

	switch w.state {
	case workOutside:
		if header && kind == sectionWork {
			w.state = workInSection
		}
		return
	case workInSection, workInEntry:
		if header && workExitKinds[kind] {
			w.finalize()
			w.state = workOutside
			return
		}
	}

	r, ok := findDateRange(line)
	if !ok {
		return
	}

	w.finalize()
	w.pending = w.newEntry(i, line, r)
	w.state = workInEntry
}

func (w *workWalker) finalize() {
	if w.state == workInEntry {
		w.entries = append(w.entries, w.pending)
		w.state = workInSection
	}
	w.pending = types.WorkEntry{}
}

func (w *workWalker) newEntry(i int, line string, r dateRange) types.WorkEntry {
	entry := types.WorkEntry{
		StartDate: r.start,
		EndDate:   r.end,
		Current:   r.current,
	}

	rest := stripBullet(strings.Replace(line, r.matched, " ", 1))
	segments := splitSegments(rest)

	switch {
	case len(segments) >= 2:
		entry.Title = segments[0]
		entry.Employer = segments[1]
	case len(segments) == 1:
		entry.Title = segments[0]
		entry.Employer = w.neighborEmployer(i)
	default:
		// Date-only line: the title/employer line sits next to it.
		idx, ok := w.neighborLine(i)
		if !ok {
			break
		}
		w.used[idx] = true
		parts := splitSegments(stripBullet(w.lines[idx]))
		switch {
		case len(parts) >= 2:
			entry.Title = parts[0]
			entry.Employer = parts[1]
		case len(parts) == 1:
			entry.Employer = parts[0]
		}
	}

	return entry
}

// neighborEmployer looks at the previous line, then the next line, for an
// employer name.
func (w *workWalker) neighborEmployer(i int) string {
	idx, ok := w.neighborLine(i)
	if !ok {
		return ""
	}
	w.used[idx] = true
	parts := splitSegments(stripBullet(w.lines[idx]))
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func (w *workWalker) neighborLine(i int) (int, bool) {
	if prev := previousNonEmpty(w.lines, i); prev >= 0 && !w.used[prev] && w.isEmployerCandidate(prev) {
		return prev, true
	}
	if next := nextNonEmpty(w.lines, i); next >= 0 && !w.used[next] && w.isEmployerCandidate(next) {
		return next, true
	}
	return -1, false
}

func (w *workWalker) isEmployerCandidate(idx int) bool {
	line := w.lines[idx]
	return isShort(line) && !hasDateRange(line) && !isHeader(line) && !isBullet(line)
}

// splitSegments splits a line on | , - – — and tabs, dropping empty pieces.
// Hyphens inside words ("Medi-Cal") are kept.
func splitSegments(s string) []string {
	var out []string
	for _, part := range segmentSplitRe.Split(s, -1) {
		part = strings.Trim(part, segmentTrim)
		part = whitespaceRunRe.ReplaceAllString(part, " ")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func previousNonEmpty(lines []string, i int) int {
	for j := i - 1; j >= 0; j-- {
		if strings.TrimSpace(lines[j]) != "" {
			return j
		}
	}
	return -1
}

func nextNonEmpty(lines []string, i int) int {
	for j := i + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) != "" {
			return j
		}
	}
	return -1
}
