package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"os"

	"chwresume/internal/errors"
	"chwresume/internal/parser"

	"gopkg.in/yaml.v3"
)

// LoadVocabulary builds the effective vocabulary: the built-in vocabulary,
// then the vocabulary file, then the Vault overlay. The result is validated.
func LoadVocabulary(cfg ParserConfig) (parser.Vocabulary, error) {
	vocab := parser.DefaultVocabulary()

	if cfg.VocabularyFile != "" {
		ext, err := LoadVocabularyFile(cfg.VocabularyFile)
		if err != nil {
			return parser.Vocabulary{}, err
		}
		vocab = vocab.Merge(ext)
		log.Printf("[CONFIG] Merged vocabulary file: %s", cfg.VocabularyFile)
	}

	if cfg.VocabularyOverlay != "" {
		ext, err := decodeVocabulary([]byte(cfg.VocabularyOverlay))
		if err != nil {
			return parser.Vocabulary{}, errors.NewConfigError(errors.ErrCodeInvalidVocabulary,
				"failed to decode vocabulary from vault", err)
		}
		vocab = vocab.Merge(ext)
	}

	if err := vocab.Validate(); err != nil {
		return parser.Vocabulary{}, errors.NewConfigError(errors.ErrCodeInvalidVocabulary,
			"invalid vocabulary", err)
	}

	return vocab, nil
}

// LoadVocabularyFile reads a YAML (or JSON) vocabulary extension file.
// Unknown keys are rejected so typos do not silently drop entries.
func LoadVocabularyFile(path string) (parser.Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return parser.Vocabulary{}, errors.NewConfigError(errors.ErrCodeInvalidVocabulary,
			"failed to read vocabulary file", err).WithContext("file_path", path)
	}

	vocab, err := decodeVocabulary(data)
	if err != nil {
		return parser.Vocabulary{}, errors.NewConfigError(errors.ErrCodeInvalidVocabulary,
			"failed to decode vocabulary file", err).WithContext("file_path", path)
	}

	return vocab, nil
}

func decodeVocabulary(data []byte) (parser.Vocabulary, error) {
	var vocab parser.Vocabulary

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&vocab); err != nil {
		if stderrors.Is(err, io.EOF) {
			return parser.Vocabulary{}, nil
		}
		return parser.Vocabulary{}, fmt.Errorf("decode vocabulary: %w", err)
	}

	return vocab, nil
}
