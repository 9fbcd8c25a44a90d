package engine

import "fmt"

// Framework is a named regulatory lens selecting a subset of categories.
type Framework struct {
	Name        string
	Description string
	Categories  []Category
}

// The closed framework set. Mapping lives in one static table so the
// unknown-name check happens in exactly one place.
var frameworks = map[string]Framework{
	"all": {
		Name:        "all",
		Description: "Run every available check.",
		Categories:  Categories(),
	},
	"eu-ai-act": {
		Name:        "eu-ai-act",
		Description: "EU Artificial Intelligence Act compliance checks.",
		Categories: []Category{
			HumanOversight,
			AuditLogging,
			ErrorHandling,
			Documentation,
			DataClassification,
		},
	},
	"gdpr": {
		Name:        "gdpr",
		Description: "GDPR data-protection focused checks.",
		Categories: []Category{
			SecretsAccess,
			DataClassification,
			AuditLogging,
			Documentation,
		},
	},
	"owasp-llm": {
		Name:        "owasp-llm",
		Description: "OWASP Top 10 for LLM Applications.",
		Categories: []Category{
			SecretsAccess,
			ErrorHandling,
			HumanOversight,
			AuditLogging,
		},
	},
	"nist-ai-rmf": {
		Name:        "nist-ai-rmf",
		Description: "NIST AI Risk Management Framework.",
		Categories:  Categories(),
	},
}

// frameworkOrder keeps listings stable.
var frameworkOrder = []string{"all", "eu-ai-act", "gdpr", "owasp-llm", "nist-ai-rmf"}

// FrameworkNames returns the closed set of recognized framework names.
func FrameworkNames() []string {
	out := make([]string, len(frameworkOrder))
	copy(out, frameworkOrder)
	return out
}

// Frameworks returns every framework definition in listing order.
func Frameworks() []Framework {
	out := make([]Framework, 0, len(frameworkOrder))
	for _, name := range frameworkOrder {
		out = append(out, frameworks[name])
	}
	return out
}

// Select maps a framework name to its definition. Unknown names fail; the
// engine never defaults to "all" on a typo.
func Select(name string) (Framework, error) {
	fw, ok := frameworks[name]
	if !ok {
		return Framework{}, fmt.Errorf("%w: %q (expected one of all, eu-ai-act, gdpr, owasp-llm, nist-ai-rmf)", ErrUnknownFramework, name)
	}
	return fw, nil
}

// CategorySet returns the framework's categories as a lookup set.
func (f Framework) CategorySet() map[Category]bool {
	set := make(map[Category]bool, len(f.Categories))
	for _, c := range f.Categories {
		set[c] = true
	}
	return set
}
