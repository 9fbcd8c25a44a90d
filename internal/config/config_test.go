package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentshield.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "1.0", cfg.SchemaVersion)
	require.Equal(t, int64(262144), cfg.Scan.MaxFileBytes)
	require.Equal(t, 0.5, cfg.Scoring.PartialCredit)
	require.Equal(t, ".agentshield", cfg.Output.Dir)
	require.Contains(t, cfg.Scan.SkipDirs, "node_modules")
}

func TestResolveWithoutOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, path, err := Resolve(Flags{})
	require.NoError(t, err)
	require.Empty(t, path)
	require.Equal(t, Default(), cfg)
}

func TestResolveMergesPartialOverride(t *testing.T) {
	path := writeConfig(t, `
scoring:
  partialCredit: 0.25
scan:
  extraSecretPatterns:
    - 'corp-[0-9a-f]{24}'
`)
	cfg, resolved, err := Resolve(Flags{ConfigPath: path})
	require.NoError(t, err)
	require.Equal(t, path, resolved)

	// Overridden values stick, everything else keeps its default.
	require.Equal(t, 0.25, cfg.Scoring.PartialCredit)
	require.Equal(t, []string{"corp-[0-9a-f]{24}"}, cfg.Scan.ExtraSecretPatterns)
	require.Equal(t, int64(262144), cfg.Scan.MaxFileBytes)
	require.Equal(t, ".agentshield", cfg.Output.Dir)
	require.Equal(t, 50, cfg.History.MaxSnapshots)
}

func TestResolveFromEnv(t *testing.T) {
	path := writeConfig(t, "output:\n  dir: .shield-out\n")
	t.Setenv(EnvConfigPath, path)

	cfg, resolved, err := Resolve(Flags{})
	require.NoError(t, err)
	require.Equal(t, path, resolved)
	require.Equal(t, ".shield-out", cfg.Output.Dir)
}

func TestResolveFlagBeatsEnv(t *testing.T) {
	envPath := writeConfig(t, "output:\n  dir: .from-env\n")
	flagPath := writeConfig(t, "output:\n  dir: .from-flag\n")
	t.Setenv(EnvConfigPath, envPath)

	cfg, _, err := Resolve(Flags{ConfigPath: flagPath})
	require.NoError(t, err)
	require.Equal(t, ".from-flag", cfg.Output.Dir)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad schema", func(c *Config) { c.SchemaVersion = "2.0" }},
		{"negative max bytes", func(c *Config) { c.Scan.MaxFileBytes = -1 }},
		{"partial credit too high", func(c *Config) { c.Scoring.PartialCredit = 1.5 }},
		{"partial credit negative", func(c *Config) { c.Scoring.PartialCredit = -0.1 }},
		{"empty output dir", func(c *Config) { c.Output.Dir = "" }},
		{"negative history", func(c *Config) { c.History.KeepDays = -2 }},
		{"invalid extra pattern", func(c *Config) { c.Scan.ExtraSecretPatterns = []string{"("} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.yaml")
	body := append([]byte{0xEF, 0xBB, 0xBF}, []byte("scoring:\n  partialCredit: 0.4\n")...)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.4, cfg.Scoring.PartialCredit)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "scoring: [not a map\n")
	_, err := Load(path)
	require.Error(t, err)
}
