package common

import (
	"fmt"
	"slices"
	"strings"
)

// ResolveOutputFormat returns format, or defaultFormat when format is blank,
// after checking it against supportedFormats. An empty supportedFormats list
// accepts anything.
func ResolveOutputFormat(format, defaultFormat string, supportedFormats []string) (string, error) {
	format = strings.TrimSpace(format)
	if format == "" {
		format = defaultFormat
	}

	if len(supportedFormats) > 0 && !slices.Contains(supportedFormats, format) {
		return "", fmt.Errorf("unsupported output format '%s'. Supported formats: %s",
			format, strings.Join(supportedFormats, ", "))
	}

	return format, nil
}
