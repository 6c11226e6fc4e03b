package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOutputFormat(t *testing.T) {
	supported := []string{"json", "yaml", "text", "markdown"}

	tests := []struct {
		name      string
		format    string
		fallback  string
		supported []string
		expected  string
		err       string
	}{
		{name: "explicit", format: "yaml", fallback: "json", supported: supported, expected: "yaml"},
		{name: "blank uses default", format: "", fallback: "markdown", supported: supported, expected: "markdown"},
		{name: "whitespace uses default", format: "  ", fallback: "json", supported: supported, expected: "json"},
		{name: "no restrictions", format: "xml", fallback: "json", expected: "xml"},
		{
			name: "unknown", format: "xml", fallback: "json", supported: supported,
			err: "unsupported output format 'xml'. Supported formats: json, yaml, text, markdown",
		},
		{
			name: "case sensitive", format: "JSON", fallback: "json", supported: supported,
			err: "unsupported output format 'JSON'",
		},
		{
			name: "bad default", format: "", fallback: "html", supported: []string{"json"},
			err: "unsupported output format 'html'. Supported formats: json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOutputFormat(tt.format, tt.fallback, tt.supported)
			if tt.err != "" {
				assert.ErrorContains(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
