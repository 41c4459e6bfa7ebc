// Package config loads the analysis configuration file: the pass-mark
// policy and the report formatting options.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gradelens/gradelens/internal/domain"
)

// Defaults applied when fields are absent from the config file.
const (
	DefaultThreshold     = 40.0
	DefaultDecimalPlaces = 2
	DefaultTopStudents   = 10
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Config is the full configuration surface consumed by the CLI. Fields
// map 1:1 to the YAML file.
type Config struct {
	// DefaultThreshold is the fallback minimum passing score for
	// subjects without an override.
	DefaultThreshold float64 `yaml:"default_threshold" validate:"min=0,max=100"`

	// Overrides maps subject name to a subject-specific threshold.
	Overrides map[string]float64 `yaml:"overrides" validate:"dive,min=0,max=100"`

	// DecimalPlaces controls formatting precision in reports and
	// exports. It never affects the numeric computation itself.
	DecimalPlaces int `yaml:"decimal_places" validate:"min=0,max=6"`

	// Anonymize replaces student identities with per-export pseudonyms
	// in every rendered output.
	Anonymize bool `yaml:"anonymize"`

	// TopStudents is how many ranked students the rendered reports
	// show. The analysis always ranks everyone.
	TopStudents int `yaml:"top_students" validate:"min=1,max=1000"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		DefaultThreshold: DefaultThreshold,
		DecimalPlaces:    DefaultDecimalPlaces,
		TopStudents:      DefaultTopStudents,
	}
}

// Load reads and validates a YAML configuration file. Absent fields keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Policy builds the PassPolicy value captured by this configuration.
func (c Config) Policy() domain.PassPolicy {
	return domain.NewPassPolicy(c.DefaultThreshold, c.Overrides)
}
