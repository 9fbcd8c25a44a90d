package rules

import (
	"fmt"
	"regexp"

	"github.com/agentshield/agentshield/internal/engine"
)

// Options customize the catalog. The zero value yields the baseline rules.
type Options struct {
	// ExtraSecretPatterns are additional regular expressions scanned by the
	// literal-credential rule, typically organisation-specific key formats.
	ExtraSecretPatterns []string
}

// Catalog builds the full ordered rule set. Invalid extra patterns are a
// configuration error reported before any scan runs.
func Catalog(opts Options) ([]engine.Rule, error) {
	extra := make([]secretPattern, 0, len(opts.ExtraSecretPatterns))
	for _, expr := range opts.ExtraSecretPatterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("rules: invalid extra secret pattern %q: %w", expr, err)
		}
		extra = append(extra, secretPattern{re: re, label: "Custom pattern"})
	}

	var out []engine.Rule
	out = append(out, secretsRules(extra)...)
	out = append(out, auditRules()...)
	out = append(out, oversightRules()...)
	out = append(out, dataClassificationRules()...)
	out = append(out, errorHandlingRules()...)
	out = append(out, documentationRules()...)
	out = append(out, art14Rules()...)
	out = append(out, art22Rules()...)
	return out, nil
}
