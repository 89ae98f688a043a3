// Package config loads language settings from a YAML file.
//
// A settings file looks like:
//
//	validate: true
//	schemas:
//	  - pattern: "**/deploy/*.yaml"
//	    url: https://example.com/deploy.schema.json
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/githubnext/yamlls/pkg/schema"
	"github.com/githubnext/yamlls/pkg/validation"
	"github.com/goccy/go-yaml"
)

// DefaultFile is the settings file looked up in the working directory
const DefaultFile = ".yamlls.yaml"

// Settings are the user options
type Settings struct {
	Validate bool
	Schemas  []schema.Association
}

type fileSettings struct {
	Validate *bool                `yaml:"validate"`
	Schemas  []schema.Association `yaml:"schemas"`
}

// Default returns the settings used when no file is present
func Default() Settings {
	return Settings{Validate: true}
}

// Parse decodes settings from YAML. Omitted fields keep their defaults.
func Parse(data []byte) (Settings, error) {
	var raw fileSettings
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}

	settings := Default()
	if raw.Validate != nil {
		settings.Validate = *raw.Validate
	}
	for i, a := range raw.Schemas {
		if a.Pattern == "" || a.URL == "" {
			return Settings{}, fmt.Errorf("schema association %d needs both pattern and url", i)
		}
	}
	settings.Schemas = raw.Schemas
	return settings, nil
}

// Load reads settings from path. A missing file yields the defaults when
// optional is set.
func Load(path string, optional bool) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	settings, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

// Validation returns the part of the settings the validator consumes
func (s Settings) Validation() validation.Settings {
	return validation.Settings{Validate: s.Validate}
}
