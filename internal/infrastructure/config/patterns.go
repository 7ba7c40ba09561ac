package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iho/amlsynth/internal/domain"
)

// LoadPatterns reads a YAML pattern configuration file.
func LoadPatterns(path string) ([]domain.PatternSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}

	return ParsePatterns(data)
}

// ParsePatterns decodes a pattern configuration document. Unknown keys are
// rejected so typos in parameter names do not silently fall back to defaults.
func ParsePatterns(data []byte) ([]domain.PatternSpec, error) {
	var file domain.PatternFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse pattern file: %w", err)
	}

	for i, p := range file.Patterns {
		if p.Type == "" {
			return nil, fmt.Errorf("%w: pattern %d has no type", domain.ErrMissingParameter, i)
		}
	}

	return file.Patterns, nil
}
