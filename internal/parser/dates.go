package parser

import (
	"cmp"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// monthNumbers maps English and Spanish month names and abbreviations to 1-12
var monthNumbers = map[string]int{
	"jan": 1, "january": 1, "ene": 1, "enero": 1,
	"feb": 2, "february": 2, "febrero": 2,
	"mar": 3, "march": 3, "marzo": 3,
	"apr": 4, "april": 4, "abr": 4, "abril": 4,
	"may": 5, "mayo": 5,
	"jun": 6, "june": 6, "junio": 6,
	"jul": 7, "july": 7, "julio": 7,
	"aug": 8, "august": 8, "ago": 8, "agosto": 8,
	"sep": 9, "sept": 9, "september": 9, "septiembre": 9, "setiembre": 9,
	"oct": 10, "october": 10, "octubre": 10,
	"nov": 11, "november": 11, "noviembre": 11,
	"dec": 12, "december": 12, "dic": 12, "diciembre": 12,
}

var presentWords = []string{"present", "current", "now", "today", "presente", "actual", "actualidad"}

var (
	monthNamePattern = alternation(slices.Collect(maps.Keys(monthNumbers)))
	presentPattern   = alternation(presentWords)

	// dateTokenPattern matches one side of a range: "Jan 2020", "January, 2020",
	// "01/2020", "1/15/2020", or a bare "2020".
	dateTokenPattern = fmt.Sprintf(`(?:(?:%s)\.?,?\s+(?:19|20)\d{2}|\d{1,2}/(?:\d{1,2}/)?(?:19|20)\d{2}|(?:19|20)\d{2})`, monthNamePattern)

	dateRangeRe = regexp.MustCompile(fmt.Sprintf(
		`(?i)\b(%s)\b\s*(?:-|–|—|\bto\b|\bhasta\b)\s*\b(%s|%s)\b`,
		dateTokenPattern, dateTokenPattern, presentPattern))

	monthYearRe = regexp.MustCompile(fmt.Sprintf(`(?i)^(%s)\.?,?\s+((?:19|20)\d{2})$`, monthNamePattern))
	slashDateRe = regexp.MustCompile(`^(\d{1,2})/(?:\d{1,2}/)?((?:19|20)\d{2})$`)
	bareYearRe  = regexp.MustCompile(`^((?:19|20)\d{2})$`)
	presentRe   = regexp.MustCompile(fmt.Sprintf(`(?i)^(?:%s)$`, presentPattern))
)

// dateRange is a parsed "<start> - <end>" span
type dateRange struct {
	start   string
	end     string
	current bool
	// matched is the raw substring the range was found in
	matched string
}

// findDateRange locates the first date range on a line
func findDateRange(line string) (dateRange, bool) {
	m := dateRangeRe.FindStringSubmatch(line)
	if m == nil {
		return dateRange{}, false
	}

	r := dateRange{
		start:   normalizeDate(m[1]),
		matched: m[0],
	}

	endRaw := strings.TrimSpace(m[2])
	if presentRe.MatchString(endRaw) {
		r.current = true
	} else {
		r.end = normalizeDate(endRaw)
	}

	return r, true
}

func hasDateRange(line string) bool {
	return dateRangeRe.MatchString(line)
}

// normalizeDate turns a month+year, slash date, or bare year into "YYYY-MM".
// Anything else yields "".
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)

	if m := monthYearRe.FindStringSubmatch(raw); m != nil {
		month := monthNumbers[strings.ToLower(m[1])]
		return formatYearMonth(m[2], month)
	}

	if m := slashDateRe.FindStringSubmatch(raw); m != nil {
		month, err := strconv.Atoi(m[1])
		if err != nil {
			month = 1
		}
		return formatYearMonth(m[2], month)
	}

	if m := bareYearRe.FindStringSubmatch(raw); m != nil {
		return formatYearMonth(m[1], 1)
	}

	return ""
}

func formatYearMonth(year string, month int) string {
	if month < 1 || month > 12 {
		month = 1
	}
	return fmt.Sprintf("%s-%02d", year, month)
}

// alternation builds a regexp alternation, longest words first so that
// "september" wins over "sep".
func alternation(words []string) string {
	sorted := slices.Clone(words)
	slices.SortFunc(sorted, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	for i, w := range sorted {
		sorted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(sorted, "|")
}
