package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agentshield/agentshield/internal/engine"
	"github.com/agentshield/agentshield/internal/snapshot"
)

// secretPattern pairs a credential regex with the label reported in findings.
type secretPattern struct {
	re    *regexp.Regexp
	label string
}

var baselineSecretPatterns = []secretPattern{
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[=:]\s*["']?[a-zA-Z0-9_\-]{20,}`), "API key"},
	{regexp.MustCompile(`(?i)(secret|password|passwd|pwd)\s*[=:]\s*["']?[^\s"']{8,}`), "Password/Secret"},
	{regexp.MustCompile(`(?i)(token)\s*[=:]\s*["']?[a-zA-Z0-9_\-]{20,}`), "Token"},
	{regexp.MustCompile(`sk-[a-zA-Z0-9]{32,}`), "OpenAI API key"},
	{regexp.MustCompile(`sk-ant-[a-zA-Z0-9\-]{32,}`), "Anthropic API key"},
	{regexp.MustCompile(`(?i)postgres(?:ql)?://[^\s"']+`), "Database connection string"},
	{regexp.MustCompile(`(?i)mysql://[^\s"']+`), "Database connection string"},
	{regexp.MustCompile(`(?i)mongodb(\+srv)?://[^\s"']+`), "Database connection string"},
	{regexp.MustCompile(`(?i)(aws_access_key_id|aws_secret_access_key)\s*[=:]\s*[^\s"']+`), "AWS credential"},
	{regexp.MustCompile(`AKIA[0-9A-Z]{16}`), "AWS access key ID"},
	{regexp.MustCompile(`-----BEGIN (RSA |EC |DSA )?PRIVATE KEY-----`), "Private key"},
}

var sensitiveEnvFiles = map[string]bool{
	".env": true, ".env.local": true, ".env.production": true, ".env.staging": true,
}

var envTemplateFiles = map[string]bool{
	".env.example": true, ".env.template": true,
}

var envVarUsagePatterns = compileAll([]string{
	`os\.environ\.get\(`,
	`os\.getenv\(`,
	`process\.env\.`,
})

var secretManagerPatterns = compileAll([]string{
	`dotenv`,
	`vault`,
	`secret_?manager`,
	`key_?vault`,
})

// secretScanTarget reports whether a file's content should be scanned for
// literal credentials. Env files themselves are scanned too, since they are
// the most common place a key lands, but templates are exempt.
func secretScanTarget(f snapshot.File) bool {
	name := strings.ToLower(f.Name())
	if envTemplateFiles[name] {
		return false
	}
	if strings.HasPrefix(name, ".env") {
		return true
	}
	return codeAndConfigExts[fileExt(f)]
}

func detectLiteralSecrets(extra []secretPattern) engine.Detector {
	patterns := append(append([]secretPattern{}, baselineSecretPatterns...), extra...)
	return func(snap *snapshot.Snapshot) engine.Signal {
		var locs []engine.Location
		typeSet := map[string]bool{}
		for _, f := range snap.Files {
			if !f.Text || f.Unreadable || f.Oversize || !secretScanTarget(f) {
				continue
			}
			for _, p := range patterns {
				for _, idx := range p.re.FindAllStringIndex(f.Content, -1) {
					locs = append(locs, engine.Location{Path: f.Path, Line: lineAt(f.Content, idx[0])})
					typeSet[p.label] = true
				}
			}
		}
		if len(locs) == 0 {
			return pass("No literal credentials found",
				"No hardcoded API keys, passwords, tokens, or connection strings detected.")
		}
		types := make([]string, 0, len(typeSet))
		for t := range typeSet {
			types = append(types, t)
		}
		sort.Strings(types)
		total := len(locs)
		if len(locs) > maxEvidence {
			locs = locs[:maxEvidence]
		}
		return fail("Potential secrets found in code",
			fmt.Sprintf("Found %d potential secret(s) (%s).", total, joinCapped(types, 5)),
			locs...)
	}
}

func detectUnignoredEnvFiles(snap *snapshot.Snapshot) engine.Signal {
	var envFiles []string
	var locs []engine.Location
	for _, f := range snap.Files {
		if sensitiveEnvFiles[strings.ToLower(f.Name())] {
			envFiles = append(envFiles, f.Name())
			locs = append(locs, engine.Location{Path: f.Path})
		}
	}
	if len(envFiles) == 0 {
		return pass("No committed environment files",
			"No .env or variant files present in the tree.")
	}
	if gi, ok := snap.Lookup(".gitignore"); ok && strings.Contains(gi.Content, ".env") {
		return pass(".gitignore covers secret files", ".env is listed in .gitignore.")
	}
	if len(locs) > maxEvidence {
		locs = locs[:maxEvidence]
	}
	return fail(".env file not in .gitignore",
		fmt.Sprintf("Found %s but .env is not in .gitignore.", joinCapped(dedupe(envFiles), 5)),
		locs...)
}

func detectEnvVarUsage(snap *snapshot.Snapshot) engine.Signal {
	if anyMatch(snap, codeAndConfigExts, envVarUsagePatterns) {
		return pass("Environment variable usage detected",
			"Configuration is read from the environment rather than hardcoded.")
	}
	if anyMatch(snap, codeAndConfigExts, secretManagerPatterns) {
		return pass("Secret management pattern detected",
			"Found usage of vault, secret manager, or similar.")
	}
	return fail("No environment variable usage detected",
		"No patterns for os.environ, os.getenv, or process.env found.")
}

func detectIgnoreFile(snap *snapshot.Snapshot) engine.Signal {
	if _, ok := snap.Lookup(".gitignore"); ok {
		return pass("Ignore file present", "A .gitignore file exists at the project root.")
	}
	return fail("No .gitignore file found",
		"Project has no .gitignore, increasing risk of accidental secret exposure.")
}

func secretsRules(extra []secretPattern) []engine.Rule {
	return []engine.Rule{
		{
			ID:       "SEC001",
			Category: engine.SecretsAccess,
			Severity: engine.Critical,
			Weight:   5,
			Detect:   detectLiteralSecrets(extra),
			Citations: []engine.Citation{
				{Framework: "GDPR", Article: "Art. 32"},
				{Framework: "EU AI Act", Article: "Art. 15"},
			},
			Fix: "Move secrets to environment variables. Use a secrets manager for production.",
		},
		{
			ID:       "SEC002",
			Category: engine.SecretsAccess,
			Severity: engine.Critical,
			Weight:   4,
			Detect:   detectUnignoredEnvFiles,
			Citations: []engine.Citation{
				{Framework: "GDPR", Article: "Art. 32"},
			},
			Fix: "Add .env to .gitignore immediately. Check git history for previously committed secrets.",
		},
		{
			ID:       "SEC003",
			Category: engine.SecretsAccess,
			Severity: engine.Warning,
			Weight:   3,
			Detect:   detectEnvVarUsage,
			Citations: []engine.Citation{
				{Framework: "GDPR", Article: "Art. 32"},
			},
			Fix: "Use environment variables for all configuration secrets.",
		},
		{
			ID:       "SEC004",
			Category: engine.SecretsAccess,
			Severity: engine.Warning,
			Weight:   3,
			Detect:   detectIgnoreFile,
			Fix:      "Add a .gitignore file covering .env, credentials, and build artifacts.",
		},
	}
}
