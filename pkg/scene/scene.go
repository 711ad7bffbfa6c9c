// Package scene loads declarative scene descriptions and assembles the
// runtime objects they describe: a file source, a stage chain and the
// pipeline tying them together.
package scene

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Description is the top-level scene document.
type Description struct {
	Name   string      `yaml:"name"   validate:"required,min=3"`
	Source SourceSpec  `yaml:"source" validate:"required"`
	Stages []StageSpec `yaml:"stages" validate:"dive"`
}

// SourceSpec declares where the pipeline's input data comes from.
type SourceSpec struct {
	Path string `yaml:"path" validate:"required"`
}

// StageSpec declares one stage in the chain, in application order.
type StageSpec struct {
	Type    string         `yaml:"type" validate:"required"`
	Enabled *bool          `yaml:"enabled"`
	Config  map[string]any `yaml:"config"`
}

// Load reads and validates a scene description file.
func Load(path string) (*Description, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}

	return Parse(raw)
}

// Parse decodes and validates a scene description document.
func Parse(raw []byte) (*Description, error) {
	var desc Description
	if err := yaml.Unmarshal(raw, &desc); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&desc); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}

	return &desc, nil
}
