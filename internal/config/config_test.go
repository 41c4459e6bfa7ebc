package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gradelens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

// TestLoad verifies YAML parsing with defaults for absent fields.
func TestLoad(t *testing.T) {
	path := writeConfig(t, `
default_threshold: 50
overrides:
  Mathematics: 60
  Workshop: 35
decimal_places: 1
anonymize: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.DefaultThreshold)
	assert.Equal(t, map[string]float64{"Mathematics": 60, "Workshop": 35}, cfg.Overrides)
	assert.Equal(t, 1, cfg.DecimalPlaces)
	assert.True(t, cfg.Anonymize)
	// Absent field keeps its default.
	assert.Equal(t, DefaultTopStudents, cfg.TopStudents)
}

// TestLoad_Defaults verifies an empty file yields the default config.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, Default(), *cfg)
}

// TestLoad_Invalid covers validation and parse failures.
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{name: "threshold above 100", contents: "default_threshold: 120\n"},
		{name: "negative threshold", contents: "default_threshold: -5\n"},
		{name: "override out of range", contents: "overrides:\n  Mathematics: 150\n"},
		{name: "decimal places out of range", contents: "decimal_places: 9\n"},
		{name: "malformed yaml", contents: "default_threshold: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.contents))
			assert.Error(t, err)
		})
	}
}

// TestConfig_Policy verifies the PassPolicy built from configuration.
func TestConfig_Policy(t *testing.T) {
	cfg := Config{DefaultThreshold: 45, Overrides: map[string]float64{"Physics": 55}}
	policy := cfg.Policy()

	assert.Equal(t, 45.0, policy.Resolve("Mathematics"))
	assert.Equal(t, 55.0, policy.Resolve("Physics"))
}
