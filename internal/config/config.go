package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/chriserin/qmetry/internal/parser"
)

const (
	// FileName is the configuration file searched for from the working
	// directory upwards.
	FileName = ".qmetry_config.yaml"
	// TemplateName is the file written by WriteTemplate.
	TemplateName = ".qmetry_config.yaml.template"
	// CacheName is the SQLite cache stored beside the configuration file.
	CacheName = ".qmetry_cache.db"

	DefaultFolder  = "/Uncategorized"
	DefaultBaseURL = "https://qtmcloud.qmetry.com/rest/api/latest"
)

// ErrNotFound indicates no configuration file could be located.
var ErrNotFound = errors.New("config file not found")

// Config holds the settings read from .qmetry_config.yaml.
type Config struct {
	APIKey         string            `yaml:"QMETRY_API_KEY"`
	Project        string            `yaml:"QMETRY_PROJECT"`
	DefaultFolder  string            `yaml:"QMETRY_DEFAULT_FOLDER"`
	SSLVerify      *bool             `yaml:"QMETRY_SSL_VERIFY"`
	BaseURL        string            `yaml:"QMETRY_BASE_URL"`
	CustomFields   map[string]string `yaml:"CUSTOM_FIELDS"`
	OverrideFields []string          `yaml:"OVERRIDE_FIELDS"`

	// Path is the file the configuration was loaded from.
	Path string `yaml:"-"`
}

// VerifySSL reports whether TLS certificates should be verified.
func (c *Config) VerifySSL() bool {
	return c.SSLVerify == nil || *c.SSLVerify
}

// CachePath returns the cache database location beside the config file.
func (c *Config) CachePath() string {
	dir := "."
	if c.Path != "" {
		dir = filepath.Dir(c.Path)
	}
	return filepath.Join(dir, CacheName)
}

// Fields returns the override field set extended with OVERRIDE_FIELDS.
func (c *Config) Fields() parser.FieldSet {
	return parser.DefaultOverrideFields().With(c.OverrideFields...)
}

// Find walks up from dir looking for FileName, then falls back to the home
// directory.
func Find(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(current, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: create %s with your settings (see %s)", ErrNotFound, FileName, TemplateName)
}

// Load reads the configuration at path, or discovers it from the working
// directory when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine current directory: %w", err)
		}
		if path, err = Find(cwd); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.DefaultFolder == "" {
		cfg.DefaultFolder = DefaultFolder
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.CustomFields == nil {
		cfg.CustomFields = map[string]string{}
	}
	cfg.Path = path
	return cfg, nil
}

// Validate returns one message per problem. API credentials are only
// checked when requireAPI is set.
func (c *Config) Validate(requireAPI bool) []string {
	var issues []string
	if requireAPI {
		if c.APIKey == "" {
			issues = append(issues, "QMETRY_API_KEY is required for API operations")
		}
		if c.Project == "" {
			issues = append(issues, "QMETRY_PROJECT is required")
		}
	}
	return issues
}

const template = `# QMetry Configuration File
# Copy this to .qmetry_config.yaml and fill in your values
# This file should be gitignored (contains personal API key)

# Your personal QMetry API key
# Generate at: QMetry > Configuration > Open API
QMETRY_API_KEY: "your-api-key-here"

# Your Jira project id
QMETRY_PROJECT: "10001"

# Default folder for test cases (optional)
QMETRY_DEFAULT_FOLDER: "/Uncategorized"

# Set to false to skip TLS certificate verification (optional)
# QMETRY_SSL_VERIFY: true

# Custom field mapping (optional - auto-discovered if not specified)
# Format: FieldName: "qcf_xxxxx"
# CUSTOM_FIELDS:
#   Apps: "qcf_12345"
#   Platform: "qcf_12346"

# Extra tag names accepted as overrides inside @Feature_Defaults: (optional)
# OVERRIDE_FIELDS:
#   - Team
`

// WriteTemplate writes the example configuration to path, defaulting to
// TemplateName in the working directory.
func WriteTemplate(path string) (string, error) {
	if path == "" {
		path = TemplateName
	}
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
