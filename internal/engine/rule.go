package engine

import (
	"github.com/agentshield/agentshield/internal/snapshot"
)

// Citation ties a rule to a regulatory article, e.g. {"GDPR", "Art. 32"}.
type Citation struct {
	Framework string `json:"framework"`
	Article   string `json:"article"`
}

func (c Citation) String() string {
	return c.Framework + " " + c.Article
}

// Location points at evidence inside the scanned project. Line 0 means the
// finding is file-level. Locations never carry matched values, only places.
type Location struct {
	Path string `json:"path"`
	Line int    `json:"line,omitempty"`
}

// Signal is the outcome of one detector run. A detector reports whether the
// rule's gap was found, never a severity: the severity of a failed rule is
// fixed on the rule itself.
type Signal struct {
	Failed   bool
	Title    string
	Detail   string
	Evidence []Location
}

// Detector is a pure function of the project snapshot. Detectors are
// independent of each other; evaluation order must not affect results.
type Detector func(*snapshot.Snapshot) Signal

// Rule is an immutable declarative unit of the catalog.
type Rule struct {
	// ID is stable and unique across the catalog.
	ID string
	// Category the rule belongs to; membership is static.
	Category Category
	// Severity the produced finding carries when the detector fails.
	// Must be Warning or Critical.
	Severity Status
	// Weight is the rule's share of the category point pool.
	Weight int
	// Detect evaluates the rule against a read-only snapshot.
	Detect Detector
	// Citations list the regulatory articles behind the rule.
	Citations []Citation
	// Fix is the suggested remediation shown on failure.
	Fix string
}

// Finding is the immutable result of evaluating one rule against a project.
type Finding struct {
	RuleID    string     `json:"rule_id"`
	Category  Category   `json:"category"`
	Status    Status     `json:"status"`
	Title     string     `json:"title"`
	Detail    string     `json:"detail"`
	Evidence  []Location `json:"evidence,omitempty"`
	Citations []string   `json:"citations,omitempty"`
	Fix       string     `json:"fix,omitempty"`
}
