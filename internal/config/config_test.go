package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFile tests layering of defaults, YAML file and environment
func TestLoadFile(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		yaml        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 1048576, cfg.Server.MaxHeaderBytes)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, "data", cfg.Paths.DataDir)
				assert.Equal(t, DefaultDatasetFile, cfg.Paths.DatasetFile)
				assert.Equal(t, DefaultModelFile, cfg.Paths.ModelFile)
				assert.Equal(t, []string{"-1", "Unknown"}, cfg.Dataset.Sentinels)
				assert.Contains(t, cfg.Dataset.DropColumns, "Serial Number")
				assert.Contains(t, cfg.Dataset.DropColumns, "Location")
				assert.Len(t, cfg.Dataset.DropColumns, 9)
				assert.Equal(t, map[string]string{"Family": "Family"}, cfg.Dataset.CategoryGroups)
				assert.Equal(t, 2017, cfg.Prediction.MinYear)
				assert.Equal(t, 2025, cfg.Prediction.MaxYear)
				assert.Equal(t, 10_000_000.0, cfg.Prediction.MaxAssessedValue)
			},
		},
		{
			name: "environment overrides defaults",
			env: map[string]string{
				"ESTATE_SERVER_PORT":               "9090",
				"ESTATE_SERVER_READ_TIMEOUT":       "30s",
				"ESTATE_SECURITY_ALLOWED_ORIGINS":  "http://example.com,https://example.com",
				"ESTATE_LOGGING_LEVEL":             "debug",
				"ESTATE_LOGGING_FORMAT":            "text",
				"ESTATE_DATASET_SENTINELS":         "-1,Unknown,N/A",
				"ESTATE_DATASET_CATEGORY_GROUPS":   "Family:Family,Condo:Condo",
				"ESTATE_PREDICTION_PROPERTY_TYPES": "Residential,Condo",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format, "validate forces json")
				assert.Equal(t, []string{"-1", "Unknown", "N/A"}, cfg.Dataset.Sentinels)
				assert.Equal(t, "Condo", cfg.Dataset.CategoryGroups["Condo"])
				assert.Equal(t, []string{"Residential", "Condo"}, cfg.Prediction.PropertyTypes)
			},
		},
		{
			name: "file overrides defaults",
			yaml: `
server:
  port: 7070
paths:
  dataset_file: sample.csv
dataset:
  unknown_label: Other
prediction:
  min_year: 2001
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "sample.csv", cfg.Paths.DatasetFile)
				assert.Equal(t, "Other", cfg.Dataset.UnknownLabel)
				assert.Equal(t, 2001, cfg.Prediction.MinYear)
				assert.Equal(t, 2025, cfg.Prediction.MaxYear, "untouched fields keep defaults")
			},
		},
		{
			name: "environment wins over file",
			env:  map[string]string{"ESTATE_SERVER_PORT": "6060"},
			yaml: "server:\n  port: 7070\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6060, cfg.Server.Port)
			},
		},
		{
			name:    "invalid port number",
			env:     map[string]string{"ESTATE_SERVER_PORT": "99999"},
			wantErr: true,
		},
		{
			name:    "malformed duration",
			env:     map[string]string{"ESTATE_SERVER_READ_TIMEOUT": "soon"},
			wantErr: true,
		},
		{
			name:    "empty prediction year range",
			yaml:    "prediction:\n  min_year: 2030\n  max_year: 2020\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "server: [port",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var path string
			if tt.yaml != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			}

			cfg, err := LoadFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = 0 }},
		{"cors without origins", func(c *Config) { c.Security.AllowedOrigins = nil }},
		{"no dataset file", func(c *Config) { c.Paths.DatasetFile = "" }},
		{"no model file", func(c *Config) { c.Paths.ModelFile = "" }},
		{"zero assessed bound", func(c *Config) { c.Prediction.MaxAssessedValue = 0 }},
		{"zero histogram bins", func(c *Config) { c.Dataset.HistogramBins = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestDatasetConfig_Groups(t *testing.T) {
	d := DatasetConfig{CategoryGroups: map[string]string{
		"Family": "Family",
		"Condo":  "Condominium",
	}}

	groups := d.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, CategoryGroup{Substring: "Condo", Target: "Condominium"}, groups[0])
	assert.Equal(t, CategoryGroup{Substring: "Family", Target: "Family"}, groups[1])

	assert.Empty(t, DatasetConfig{}.Groups())
}
