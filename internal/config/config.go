// Package config resolves the scanner configuration from compiled-in
// defaults, an optional YAML file, and environment hints.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/agentshield/agentshield/internal/support"
)

// EnvConfigPath names the environment variable consulted when no --config
// flag is given. It is typically set through a .env file.
const EnvConfigPath = "AGENT_SHIELD_CONFIG"

// Config is the compiled-in configuration with optional overrides.
type Config struct {
	SchemaVersion string        `yaml:"schemaVersion"`
	Scan          ScanConfig    `yaml:"scan"`
	Scoring       ScoringConfig `yaml:"scoring"`
	Output        OutputConfig  `yaml:"output"`
	History       HistoryConfig `yaml:"history"`
}

type ScanConfig struct {
	// MaxFileBytes caps per-file content reads during snapshot collection.
	MaxFileBytes int64 `yaml:"maxFileBytes"`
	// SkipDirs are directory names excluded from the walk.
	SkipDirs []string `yaml:"skipDirs"`
	// ExtraSecretPatterns extend the credential scanner with
	// organisation-specific regular expressions.
	ExtraSecretPatterns []string `yaml:"extraSecretPatterns"`
}

type ScoringConfig struct {
	// PartialCredit is the weight fraction awarded for warning findings.
	PartialCredit float64 `yaml:"partialCredit"`
}

type OutputConfig struct {
	// Dir receives report.json, audit.log, and watch-mode history.
	Dir string `yaml:"dir"`
}

type HistoryConfig struct {
	MaxSnapshots int `yaml:"maxSnapshots"`
	KeepDays     int `yaml:"keepDays"`
}

type Flags struct {
	ConfigPath string
}

// Default returns the compiled-in defaults.
func Default() Config {
	return Config{
		SchemaVersion: "1.0",
		Scan: ScanConfig{
			MaxFileBytes: 262144,
			SkipDirs: []string{
				".git",
				"node_modules",
				"vendor",
				"dist",
				"build",
				"__pycache__",
				".venv",
				"venv",
				".agentshield",
				".idea",
				".vscode",
			},
		},
		Scoring: ScoringConfig{
			PartialCredit: 0.5,
		},
		Output: OutputConfig{
			Dir: ".agentshield",
		},
		History: HistoryConfig{
			MaxSnapshots: 50,
			KeepDays:     14,
		},
	}
}

// Load reads a YAML config from disk.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(support.StripBOM(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve applies defaults and optional overrides, then validates. The
// config path comes from the flag first, then the AGENT_SHIELD_CONFIG
// environment variable.
func Resolve(flags Flags) (Config, string, error) {
	cfg := Default()
	cfgPath := flags.ConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv(EnvConfigPath)
	}

	if cfgPath != "" {
		loaded, err := Load(cfgPath)
		if err != nil {
			return Config{}, "", err
		}
		mergeConfigDefaults(&loaded, &cfg)
		cfg = loaded
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, cfgPath, nil
}

// Validate checks the resolved configuration for consistency.
func (c *Config) Validate() error {
	if c.SchemaVersion != "1.0" {
		return fmt.Errorf("unsupported schemaVersion: %s (expected 1.0)", c.SchemaVersion)
	}
	if c.Scan.MaxFileBytes <= 0 {
		return fmt.Errorf("scan.maxFileBytes must be positive, got %d", c.Scan.MaxFileBytes)
	}
	if c.Scoring.PartialCredit <= 0 || c.Scoring.PartialCredit > 1 {
		return fmt.Errorf("scoring.partialCredit must be in (0, 1], got %v", c.Scoring.PartialCredit)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	if c.History.MaxSnapshots < 0 || c.History.KeepDays < 0 {
		return fmt.Errorf("history limits must not be negative")
	}
	for _, expr := range c.Scan.ExtraSecretPatterns {
		if _, err := regexp.Compile(expr); err != nil {
			return fmt.Errorf("invalid scan.extraSecretPatterns entry %q: %w", expr, err)
		}
	}
	return nil
}

func mergeConfigDefaults(cfg *Config, defaults *Config) {
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = defaults.SchemaVersion
	}
	if cfg.Scan.MaxFileBytes == 0 {
		cfg.Scan.MaxFileBytes = defaults.Scan.MaxFileBytes
	}
	if len(cfg.Scan.SkipDirs) == 0 {
		cfg.Scan.SkipDirs = defaults.Scan.SkipDirs
	}
	if cfg.Scoring.PartialCredit == 0 {
		cfg.Scoring.PartialCredit = defaults.Scoring.PartialCredit
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = defaults.Output.Dir
	}
	if cfg.History.MaxSnapshots == 0 {
		cfg.History.MaxSnapshots = defaults.History.MaxSnapshots
	}
	if cfg.History.KeepDays == 0 {
		cfg.History.KeepDays = defaults.History.KeepDays
	}
}
