package config

import (
	"os"
	"path/filepath"
	"testing"

	"chwresume/internal/errors"
	"chwresume/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVocabFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadVocabulary_Default(t *testing.T) {
	vocab, err := LoadVocabulary(ParserConfig{})
	require.NoError(t, err)
	assert.Equal(t, parser.DefaultVocabulary(), vocab)
}

func TestLoadVocabulary_File(t *testing.T) {
	path := writeVocabFile(t, "vocab.yaml", `
regions:
  - North Valley
cityToRegion:
  Chico: North Valley
ehrSystems:
  - Medimax
certifications:
  - Navigator Badge
certificationAliases:
  navigator: Navigator Badge
`)

	vocab, err := LoadVocabulary(ParserConfig{VocabularyFile: path})
	require.NoError(t, err)

	assert.Contains(t, vocab.Regions, "North Valley")
	assert.Equal(t, "North Valley", vocab.CityToRegion["chico"])
	assert.Contains(t, vocab.EHRSystems, "Medimax")
	assert.Contains(t, vocab.EHRSystems, "Epic")
	assert.Equal(t, "Navigator Badge", vocab.CertificationAliases["navigator"])
}

func TestLoadVocabulary_JSONFile(t *testing.T) {
	path := writeVocabFile(t, "vocab.json", `{"languages": ["Tongan"]}`)

	vocab, err := LoadVocabulary(ParserConfig{VocabularyFile: path})
	require.NoError(t, err)
	assert.Contains(t, vocab.Languages, "Tongan")
}

func TestLoadVocabulary_Overlay(t *testing.T) {
	path := writeVocabFile(t, "vocab.yaml", "programs:\n  - HOPE\n")

	vocab, err := LoadVocabulary(ParserConfig{
		VocabularyFile:    path,
		VocabularyOverlay: "programs:\n  - Whole Person Care Plus\n",
	})
	require.NoError(t, err)
	assert.Contains(t, vocab.Programs, "HOPE")
	assert.Contains(t, vocab.Programs, "Whole Person Care Plus")
}

func TestLoadVocabulary_EmptyFile(t *testing.T) {
	path := writeVocabFile(t, "empty.yaml", "")

	vocab, err := LoadVocabulary(ParserConfig{VocabularyFile: path})
	require.NoError(t, err)
	assert.Equal(t, parser.DefaultVocabulary(), vocab)
}

func TestLoadVocabulary_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(t *testing.T) ParserConfig
		message string
	}{
		{
			name: "missing file",
			cfg: func(t *testing.T) ParserConfig {
				return ParserConfig{VocabularyFile: filepath.Join(t.TempDir(), "missing.yaml")}
			},
			message: "failed to read vocabulary file",
		},
		{
			name: "unknown key",
			cfg: func(t *testing.T) ParserConfig {
				return ParserConfig{VocabularyFile: writeVocabFile(t, "v.yaml", "cities:\n  - Chico\n")}
			},
			message: "failed to decode vocabulary file",
		},
		{
			name: "malformed yaml",
			cfg: func(t *testing.T) ParserConfig {
				return ParserConfig{VocabularyFile: writeVocabFile(t, "v.yaml", "regions: [unterminated\n")}
			},
			message: "failed to decode vocabulary file",
		},
		{
			name: "unknown region",
			cfg: func(t *testing.T) ParserConfig {
				return ParserConfig{VocabularyFile: writeVocabFile(t, "v.yaml", "cityToRegion:\n  chico: Shasta\n")}
			},
			message: "invalid vocabulary",
		},
		{
			name: "bad overlay",
			cfg: func(t *testing.T) ParserConfig {
				return ParserConfig{VocabularyOverlay: "regions: {"}
			},
			message: "failed to decode vocabulary from vault",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadVocabulary(tt.cfg(t))
			require.Error(t, err)

			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidVocabulary, appErr.Code)
			assert.Equal(t, errors.ErrorTypeConfig, appErr.Type)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}
